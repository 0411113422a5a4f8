package alerts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/forumkit/alertkit/pkg/alerttypes"
)

// User is the recipient/sender snapshot the engine works with. It mirrors the
// columns the storage layer selects from the host application's user table.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Avatar       string `json:"avatar"`
	UserGroup    int64  `json:"usergroup"`
	DisplayGroup int64  `json:"displaygroup"`
	// DisabledAlertTypes is the user's stored opt-out list: a JSON array of
	// alert-type IDs, kept as raw text. Absent or unparseable text is
	// treated as an empty set.
	DisabledAlertTypes string `json:"disabled_alert_types"`
}

// Alert is one notification instance addressed to a recipient.
type Alert struct {
	// ID is assigned by storage on commit. Zero until committed.
	ID int64 `json:"id"`
	// UserID identifies the recipient.
	UserID int64 `json:"user_id"`
	// FromUserID identifies the sender; kept consistent with FromUser.
	FromUserID int64 `json:"from_user_id"`
	// FromUser is the sender snapshot, when known.
	FromUser *User `json:"from_user,omitempty"`
	// Type is the alert's policy record. The persisted type ID is always
	// derived from this field, never stored separately.
	Type alerttypes.AlertType `json:"type"`
	// ObjectID identifies the content the alert refers to.
	ObjectID int64 `json:"object_id"`
	// CreatedAt defaults to construction time.
	CreatedAt time.Time `json:"created_at"`
	// Unread defaults to true.
	Unread bool `json:"unread"`
	// Forced bypasses recipient opt-out filtering at read time.
	Forced bool `json:"forced"`
	// ExtraDetails is an opaque payload serialized to JSON text on commit.
	ExtraDetails map[string]any `json:"extra_details,omitempty"`
}

// NewAlert creates an unread alert for the given recipient, type and object,
// stamped with the current time.
func NewAlert(userID int64, t alerttypes.AlertType, objectID int64) *Alert {
	return &Alert{
		UserID:    userID,
		Type:      t,
		ObjectID:  objectID,
		CreatedAt: time.Now(),
		Unread:    true,
	}
}

// NewAlertWithDetails creates an alert carrying an extra-details payload.
func NewAlertWithDetails(userID int64, t alerttypes.AlertType, objectID int64, details map[string]any) *Alert {
	a := NewAlert(userID, t, objectID)
	a.ExtraDetails = details
	return a
}

// TypeID returns the ID of the attached alert type.
func (a *Alert) TypeID() int64 {
	return a.Type.ID
}

// SetFromUser attaches the sender snapshot and keeps FromUserID consistent.
func (a *Alert) SetFromUser(u *User) {
	a.FromUser = u
	if u != nil {
		a.FromUserID = u.ID
	}
}

// DedupKey is the uniqueness boundary for the pending buffer: at most one
// queued alert per (type code, recipient, object).
func (a *Alert) DedupKey() string {
	return dedupKey(a.Type.Code, a.UserID, a.ObjectID)
}

func dedupKey(code string, userID, objectID int64) string {
	return fmt.Sprintf("%s_%d_%d", code, userID, objectID)
}

// record converts the alert into its storage representation, serializing the
// extra-details payload. A payload that cannot be serialized degrades to an
// empty document rather than failing the batch.
func (a *Alert) record() AlertRecord {
	details := "{}"
	if len(a.ExtraDetails) > 0 {
		if raw, err := json.Marshal(a.ExtraDetails); err == nil {
			details = string(raw)
		}
	}

	return AlertRecord{
		UserID:       a.UserID,
		FromUserID:   a.FromUserID,
		TypeID:       a.TypeID(),
		ObjectID:     a.ObjectID,
		CreatedAt:    a.CreatedAt,
		ExtraDetails: details,
		Unread:       a.Unread,
		Forced:       a.Forced,
	}
}

// detailInt64 coerces an extra-details value into an int64. JSON round trips
// turn numbers into float64 and producers may hand over strings, so all of
// those are accepted.
func detailInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// parseDisabledTypes decodes a stored opt-out list. Malformed data is treated
// as "no opt-outs" so delivery fails open rather than silently dropping
// alerts for everyone with a corrupt preference row.
func parseDisabledTypes(raw string) []int64 {
	if raw == "" {
		return nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}

	return ids
}
