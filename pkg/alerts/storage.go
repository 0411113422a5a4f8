package alerts

import (
	"context"
	"time"
)

// LookupMode selects the column users are found by in FindUsers.
type LookupMode int

const (
	LookupByID LookupMode = iota
	LookupByUsername
)

// UserSelector identifies a set of users either by ID or by username.
type UserSelector struct {
	Mode      LookupMode
	IDs       []int64
	Usernames []string
}

// ByID selects users by their IDs.
func ByID(ids ...int64) UserSelector {
	return UserSelector{Mode: LookupByID, IDs: ids}
}

// ByUsername selects users by their usernames.
func ByUsername(names ...string) UserSelector {
	return UserSelector{Mode: LookupByUsername, Usernames: names}
}

// AlertRecord is the write-side representation of an alert: what one row of
// the batch insert carries. Extra details are already serialized to text.
type AlertRecord struct {
	UserID       int64
	FromUserID   int64
	TypeID       int64
	ObjectID     int64
	CreatedAt    time.Time
	ExtraDetails string
	Unread       bool
	Forced       bool
}

// AlertRow is the read-side representation: an alert row joined against its
// type code and the sender snapshot. FromUser is nil when the sender is gone.
type AlertRow struct {
	ID           int64
	UserID       int64
	FromUserID   int64
	TypeID       int64
	TypeCode     string
	ObjectID     int64
	CreatedAt    time.Time
	ExtraDetails string
	Unread       bool
	Forced       bool
	FromUser     *User
}

// ListQuery filters the recipient-scoped alert listing. The policy filter
// admits a row when its type is enabled AND (its type ID is in
// EnabledTypeIDs, OR the row is forced, OR the type cannot be user-disabled).
type ListQuery struct {
	UserID         int64
	EnabledTypeIDs []int64
	UnreadOnly     bool
	// Limit of 0 means no limit; used by the unread listing.
	Limit  int
	Offset int
}

// CountQuery filters the recipient-scoped alert counts with the same policy
// filter as ListQuery.
type CountQuery struct {
	UserID         int64
	EnabledTypeIDs []int64
	UnreadOnly     bool
}

// Storage is the relational store the engine reads and writes alerts through.
type Storage interface {
	// InsertAlerts persists a batch of alerts in one call.
	InsertAlerts(ctx context.Context, records []AlertRecord) error

	// ListAlerts returns policy-filtered alert rows, newest first by ID.
	ListAlerts(ctx context.Context, q ListQuery) ([]AlertRow, error)

	// GetAlert returns the row with the given ID belonging to the given
	// recipient, or ErrAlertNotFound.
	GetAlert(ctx context.Context, userID, id int64) (*AlertRow, error)

	// CountAlerts returns the number of policy-filtered rows.
	CountAlerts(ctx context.Context, q CountQuery) (int, error)

	// SetUnread flips the unread flag on the given rows, scoped to the
	// recipient, and reports the number of affected rows.
	SetUnread(ctx context.Context, userID int64, ids []int64, unread bool) (int64, error)

	// MarkAllRead marks every alert of the recipient as read and reports
	// the number of affected rows.
	MarkAllRead(ctx context.Context, userID int64) (int64, error)

	// DeleteAlerts removes the given rows, scoped to the recipient, and
	// reports the number of affected rows.
	DeleteAlerts(ctx context.Context, userID int64, ids []int64) (int64, error)

	// FindUsers returns the user rows matching the selector, including the
	// raw opt-out column.
	FindUsers(ctx context.Context, sel UserSelector) ([]User, error)
}
