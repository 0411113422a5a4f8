package alertformat

import (
	"context"

	"github.com/forumkit/alertkit/pkg/alerts"
)

// Formatter renders alerts of a single type into user-facing output.
// Implementations are registered on a Registry keyed by AlertTypeCode.
type Formatter interface {
	// AlertTypeCode returns the alert type code this formatter handles.
	AlertTypeCode() string

	// Init prepares the formatter for rendering (template parsing, language
	// loading). It is called once before the first FormatAlert; a failed
	// Init is retried on the next lookup.
	Init(ctx context.Context) error

	// FormatAlert renders the alert into display text.
	FormatAlert(ctx context.Context, alert *alerts.Alert, rc RenderContext) (string, error)

	// BuildShowLink returns the URL the alert points at.
	BuildShowLink(alert *alerts.Alert) (string, error)
}

// RenderContext carries presentation strings the caller has already resolved.
// The registry passes it through untouched.
type RenderContext struct {
	FromUsername        string
	FromUserProfileLink string
	FormattedDate       string
}
