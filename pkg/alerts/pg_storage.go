package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStorage is the Postgres implementation of Storage, backed by a pgx pool.
// The batch insert uses a single CopyFrom so a commit is one storage
// operation regardless of batch size.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates alert storage on top of the given connection pool.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

func (s *PGStorage) InsertAlerts(ctx context.Context, records []AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.UserID, r.FromUserID, r.TypeID, r.ObjectID,
			r.CreatedAt, r.ExtraDetails, r.Unread, r.Forced,
		})
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"alerts"},
		[]string{"uid", "from_user_id", "alert_type_id", "object_id", "created_at", "extra_details", "unread", "forced"},
		pgx.CopyFromRows(rows),
	)

	return err
}

const alertSelect = `
SELECT a.id, a.uid, a.from_user_id, a.alert_type_id, t.code, a.object_id,
       a.created_at, a.extra_details, a.unread, a.forced,
       u.id, u.username, u.avatar, u.usergroup, u.displaygroup, u.disabled_alert_types
FROM alerts a
INNER JOIN alert_types t ON t.id = a.alert_type_id
LEFT JOIN users u ON u.id = a.from_user_id`

func scanAlertRow(rows pgx.Rows) (AlertRow, error) {
	var (
		row       AlertRow
		uID       *int64
		uName     *string
		uAvatar   *string
		uGroup    *int64
		uDisplay  *int64
		uDisabled *string
	)

	err := rows.Scan(
		&row.ID, &row.UserID, &row.FromUserID, &row.TypeID, &row.TypeCode, &row.ObjectID,
		&row.CreatedAt, &row.ExtraDetails, &row.Unread, &row.Forced,
		&uID, &uName, &uAvatar, &uGroup, &uDisplay, &uDisabled,
	)
	if err != nil {
		return AlertRow{}, err
	}

	if uID != nil {
		u := User{ID: *uID}
		if uName != nil {
			u.Username = *uName
		}
		if uAvatar != nil {
			u.Avatar = *uAvatar
		}
		if uGroup != nil {
			u.UserGroup = *uGroup
		}
		if uDisplay != nil {
			u.DisplayGroup = *uDisplay
		}
		if uDisabled != nil {
			u.DisabledAlertTypes = *uDisabled
		}
		row.FromUser = &u
	}

	return row, nil
}

func (s *PGStorage) ListAlerts(ctx context.Context, q ListQuery) ([]AlertRow, error) {
	var sb strings.Builder
	sb.WriteString(alertSelect)
	sb.WriteString(`
WHERE a.uid = $1 AND t.enabled
  AND (a.alert_type_id = ANY($2) OR a.forced OR NOT t.can_be_user_disabled)`)

	args := []any{q.UserID, q.EnabledTypeIDs}

	if q.UnreadOnly {
		sb.WriteString(" AND a.unread")
	}

	sb.WriteString(" ORDER BY a.id DESC")

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AlertRow
	for rows.Next() {
		row, err := scanAlertRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func (s *PGStorage) GetAlert(ctx context.Context, userID, id int64) (*AlertRow, error) {
	rows, err := s.pool.Query(ctx, alertSelect+" WHERE a.uid = $1 AND a.id = $2", userID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrAlertNotFound
	}

	row, err := scanAlertRow(rows)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (s *PGStorage) CountAlerts(ctx context.Context, q CountQuery) (int, error) {
	var sb strings.Builder
	sb.WriteString(`
SELECT COUNT(*)
FROM alerts a
INNER JOIN alert_types t ON t.id = a.alert_type_id
WHERE a.uid = $1 AND t.enabled
  AND (a.alert_type_id = ANY($2) OR a.forced OR NOT t.can_be_user_disabled)`)

	if q.UnreadOnly {
		sb.WriteString(" AND a.unread")
	}

	var count int
	if err := s.pool.QueryRow(ctx, sb.String(), q.UserID, q.EnabledTypeIDs).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (s *PGStorage) SetUnread(ctx context.Context, userID int64, ids []int64, unread bool) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE alerts SET unread = $3 WHERE uid = $1 AND id = ANY($2)`,
		userID, ids, unread)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (s *PGStorage) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE alerts SET unread = FALSE WHERE uid = $1 AND unread`, userID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (s *PGStorage) DeleteAlerts(ctx context.Context, userID int64, ids []int64) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM alerts WHERE uid = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (s *PGStorage) FindUsers(ctx context.Context, sel UserSelector) ([]User, error) {
	const userSelect = `
SELECT id, username, avatar, usergroup, displaygroup, disabled_alert_types
FROM users`

	var (
		rows pgx.Rows
		err  error
	)

	switch sel.Mode {
	case LookupByUsername:
		rows, err = s.pool.Query(ctx, userSelect+` WHERE username = ANY($1)`, sel.Usernames)
	default:
		rows, err = s.pool.Query(ctx, userSelect+` WHERE id = ANY($1)`, sel.IDs)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Avatar, &u.UserGroup, &u.DisplayGroup, &u.DisabledAlertTypes); err != nil {
			return nil, err
		}
		out = append(out, u)
	}

	return out, rows.Err()
}

// IsNotFound reports whether the error represents a missing alert, from
// either the storage layer or an underlying pgx no-rows result.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAlertNotFound) || errors.Is(err, pgx.ErrNoRows)
}
