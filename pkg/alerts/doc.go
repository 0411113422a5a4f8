// Package alerts implements the per-request alert queue and commit engine.
//
// Producers construct an Alert referencing a registered alert type and submit
// it to a Manager. The manager decides admission (type enabled, recipient has
// not opted out or the type is mandatory), deduplicates against the pending
// buffer by (type code, recipient, object), and holds admitted alerts until a
// single Commit flushes the whole buffer as one batch insert. Read, count,
// mark-read/unread and delete operations are always scoped to the manager's
// current recipient.
//
// # Unit of work
//
// A Manager owns the state of one request-scoped unit of work: the pending
// queue, the recipient's preference snapshot (derived once at construction),
// and the count caches. Managers are not meant to be shared across concurrent
// units of work; each request constructs its own against shared Storage and a
// shared alert-type registry.
//
// # Commit semantics
//
// Commit is at-most-once and fire-and-forget: the buffer is cleared before
// the batch insert is attempted, so a failed insert drops that batch. Callers
// needing guaranteed delivery must queue at a layer above this one.
//
// # Usage
//
//	manager, err := alerts.NewManager(ctx, storage, registry, dispatcher, user)
//	if err != nil {
//	    return err
//	}
//
//	quoted, _ := registry.GetByCode("quoted")
//	if err := manager.AddAlert(ctx, alerts.NewAlert(recipientID, quoted, postID)); err != nil {
//	    return err
//	}
//
//	// ... more AddAlert calls during the request ...
//
//	if err := manager.Commit(ctx); err != nil {
//	    // the batch is gone; resubmit if delivery matters
//	}
package alerts
