package alerts

// defaultPerPage matches the envDefault on Config.PerPage.
const defaultPerPage = 10

// Config carries the environment-derived engine settings.
// Parse it with the config package and apply it via WithConfig.
type Config struct {
	// PerPage is the page size used when a listing is requested with
	// limit 0.
	PerPage int `env:"ALERTKIT_PER_PAGE" envDefault:"10"`
}
