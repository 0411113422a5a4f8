// Package alertformat renders stored alerts into user-facing text.
//
// Each alert type has a Formatter that turns an alert row into display
// output. Formatters are collected in a Registry which defers registration
// until the first lookup: the registration event fires exactly once, and
// listeners respond by registering their formatters on the registry carried
// in the event payload.
//
//	registry := alertformat.NewRegistry(dispatcher)
//	dispatcher.Register(alertformat.HookRegisterFormatters, func(ctx context.Context, payload any) {
//	    p := payload.(*alertformat.RegisterFormattersPayload)
//	    p.Registry.Register(&mentionFormatter{})
//	})
//
//	f, err := registry.FormatterFor(ctx, "mention")
package alertformat
