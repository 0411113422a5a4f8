package alerts

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/forumkit/alertkit/pkg/alerttypes"
)

// MemoryStorage is an in-memory implementation of Storage holding its own
// alert, alert-type and user tables, mirroring the relational schema closely
// enough to exercise the read-time policy filter. Suitable for development
// and testing.
type MemoryStorage struct {
	mu     sync.RWMutex
	alerts []storedAlert
	types  map[int64]alerttypes.AlertType
	users  map[int64]User
	nextID int64
}

type storedAlert struct {
	AlertRecord
	ID int64
}

// NewMemoryStorage creates an empty in-memory alert store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		types:  make(map[int64]alerttypes.AlertType),
		users:  make(map[int64]User),
		nextID: 1,
	}
}

// SeedTypes loads alert-type rows so the read-time policy filter can join
// against them, the way the SQL implementation joins alert_types.
func (s *MemoryStorage) SeedTypes(types ...alerttypes.AlertType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range types {
		s.types[t.ID] = t
	}
}

// AddUser loads a user row for FindUsers and sender-snapshot joins.
func (s *MemoryStorage) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
}

func (s *MemoryStorage) InsertAlerts(ctx context.Context, records []AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.alerts = append(s.alerts, storedAlert{AlertRecord: r, ID: s.nextID})
		s.nextID++
	}

	return nil
}

// matchesPolicy applies the same filter as the SQL read queries: type enabled
// AND (type in the recipient's enabled set OR forced OR mandatory).
func (s *MemoryStorage) matchesPolicy(a storedAlert, enabledTypeIDs []int64) bool {
	t, ok := s.types[a.TypeID]
	if !ok || !t.Enabled {
		return false
	}

	return slices.Contains(enabledTypeIDs, a.TypeID) || a.Forced || !t.CanBeUserDisabled
}

func (s *MemoryStorage) row(a storedAlert) AlertRow {
	row := AlertRow{
		ID:           a.ID,
		UserID:       a.UserID,
		FromUserID:   a.FromUserID,
		TypeID:       a.TypeID,
		ObjectID:     a.ObjectID,
		CreatedAt:    a.CreatedAt,
		ExtraDetails: a.ExtraDetails,
		Unread:       a.Unread,
		Forced:       a.Forced,
	}

	if t, ok := s.types[a.TypeID]; ok {
		row.TypeCode = t.Code
	}
	if u, ok := s.users[a.FromUserID]; ok {
		row.FromUser = &u
	}

	return row
}

func (s *MemoryStorage) ListAlerts(ctx context.Context, q ListQuery) ([]AlertRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []AlertRow
	for _, a := range s.alerts {
		if a.UserID != q.UserID {
			continue
		}
		if q.UnreadOnly && !a.Unread {
			continue
		}
		if !s.matchesPolicy(a, q.EnabledTypeIDs) {
			continue
		}
		rows = append(rows, s.row(a))
	}

	// Newest first by ID.
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })

	if q.Offset >= len(rows) {
		return []AlertRow{}, nil
	}
	rows = rows[q.Offset:]

	if q.Limit > 0 && q.Limit < len(rows) {
		rows = rows[:q.Limit]
	}

	return rows, nil
}

func (s *MemoryStorage) GetAlert(ctx context.Context, userID, id int64) (*AlertRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alerts {
		if a.ID == id && a.UserID == userID {
			row := s.row(a)
			return &row, nil
		}
	}

	return nil, ErrAlertNotFound
}

func (s *MemoryStorage) CountAlerts(ctx context.Context, q CountQuery) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, a := range s.alerts {
		if a.UserID != q.UserID {
			continue
		}
		if q.UnreadOnly && !a.Unread {
			continue
		}
		if !s.matchesPolicy(a, q.EnabledTypeIDs) {
			continue
		}
		count++
	}

	return count, nil
}

func (s *MemoryStorage) SetUnread(ctx context.Context, userID int64, ids []int64, unread bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for i := range s.alerts {
		if s.alerts[i].UserID != userID || !slices.Contains(ids, s.alerts[i].ID) {
			continue
		}
		if s.alerts[i].Unread != unread {
			s.alerts[i].Unread = unread
			affected++
		}
	}

	return affected, nil
}

func (s *MemoryStorage) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for i := range s.alerts {
		if s.alerts[i].UserID == userID && s.alerts[i].Unread {
			s.alerts[i].Unread = false
			affected++
		}
	}

	return affected, nil
}

func (s *MemoryStorage) DeleteAlerts(ctx context.Context, userID int64, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []storedAlert
	var affected int64
	for _, a := range s.alerts {
		if a.UserID == userID && slices.Contains(ids, a.ID) {
			affected++
			continue
		}
		kept = append(kept, a)
	}
	s.alerts = kept

	return affected, nil
}

func (s *MemoryStorage) FindUsers(ctx context.Context, sel UserSelector) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []User
	switch sel.Mode {
	case LookupByUsername:
		for _, name := range sel.Usernames {
			for _, u := range s.users {
				if u.Username == name {
					out = append(out, u)
					break
				}
			}
		}
	default:
		for _, id := range sel.IDs {
			if u, ok := s.users[id]; ok {
				out = append(out, u)
			}
		}
	}

	return out, nil
}
