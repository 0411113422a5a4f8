// Package logger builds configured slog loggers and provides attribute
// helpers for the fields the alert pipeline logs repeatedly.
//
// The factory returns a standard *slog.Logger so components stay decoupled
// from this package; they accept any slog logger via their options and only
// the application wiring decides format and level.
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithJSONFormatter(),
//	    logger.WithAttr(slog.String("app", "alertkit")),
//	)
package logger
