package alerttypes

// AlertType is one notification category's policy record.
// Instances are immutable once loaded; mutations go through the Registry.
type AlertType struct {
	// ID is assigned by storage. Zero means not yet persisted.
	ID int64 `json:"id"`
	// Code is the stable unique identifier, e.g. "pm" or "quoted".
	Code string `json:"code"`
	// Enabled is the global kill-switch. When false no alert of this type
	// is ever admitted, regardless of recipient preference.
	Enabled bool `json:"enabled"`
	// CanBeUserDisabled reports whether recipients may opt out. Types that
	// cannot be disabled bypass opt-out filtering entirely.
	CanBeUserDisabled bool `json:"can_be_user_disabled"`
	// DefaultUserEnabled reports whether the type is delivered to users
	// who have expressed no preference.
	DefaultUserEnabled bool `json:"default_user_enabled"`
}

// NewAlertType creates an enabled, user-disableable, default-on alert type
// with the given code, matching the defaults a freshly registered type gets.
func NewAlertType(code string) AlertType {
	return AlertType{
		Code:               code,
		Enabled:            true,
		CanBeUserDisabled:  true,
		DefaultUserEnabled: true,
	}
}
