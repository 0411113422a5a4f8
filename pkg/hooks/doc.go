// Package hooks provides a minimal fire-and-forget extension point dispatcher.
//
// Core components announce interesting moments (an alert being admitted, a
// batch of alerts being marked read, formatters being registered) by running a
// named hook with a payload. External code registers handlers for those names
// and may mutate the payload it receives; the dispatcher never inspects or
// validates handler effects and consumes no return values.
//
// # Contract
//
//   - Handlers for a hook run synchronously, in registration order.
//   - A handler may mutate the payload it is handed; later handlers observe
//     those mutations.
//   - Handlers cannot short-circuit the chain or veto the operation through
//     the dispatcher itself; any veto semantics belong to the payload type.
//   - Running a hook nobody registered for is a no-op.
//
// # Usage
//
//	d := hooks.NewDispatcher()
//	d.Register(alerts.HookAddAlert, func(ctx context.Context, payload any) {
//	    p := payload.(*alerts.AddAlertPayload)
//	    p.Alert.ExtraDetails["flagged"] = true
//	})
package hooks
