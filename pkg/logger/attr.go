package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

// AlertID records the alert identifier under the key "alert_id".
func AlertID(id int64) slog.Attr {
	return slog.Int64("alert_id", id)
}

// AlertType records an alert-type code under the key "alert_type".
func AlertType(code string) slog.Attr {
	return slog.String("alert_type", code)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
