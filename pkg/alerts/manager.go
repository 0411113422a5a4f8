package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/forumkit/alertkit/pkg/alerttypes"
	"github.com/forumkit/alertkit/pkg/hooks"
	"github.com/forumkit/alertkit/pkg/logger"
)

// Hook names dispatched by the Manager. Handlers receive the payload types
// declared below and may mutate them in place; the manager does not
// re-validate admitted state after HookAddAlert runs.
const (
	HookAddAlert    hooks.Hook = "alerts.add_alert"
	HookMarkRead    hooks.Hook = "alerts.mark_read"
	HookMarkUnread  hooks.Hook = "alerts.mark_unread"
	HookMarkAllRead hooks.Hook = "alerts.mark_all_read"
)

// AddAlertPayload is handed to HookAddAlert handlers right before an admitted
// alert is buffered.
type AddAlertPayload struct {
	Manager *Manager
	Alert   *Alert
}

// MarkReadPayload is handed to HookMarkRead and HookMarkUnread handlers after
// the storage call.
type MarkReadPayload struct {
	Manager      *Manager
	AlertIDs     []int64
	AffectedRows int64
}

// MarkAllReadPayload is handed to HookMarkAllRead handlers after the storage
// call.
type MarkAllReadPayload struct {
	Manager      *Manager
	AffectedRows int64
}

// Manager buffers, deduplicates and commits alerts for one unit of work, and
// answers read queries scoped to its current recipient.
type Manager struct {
	storage    Storage
	types      *alerttypes.Registry
	dispatcher *hooks.Dispatcher
	logger     *slog.Logger

	user    User
	perPage int

	// enabledTypeIDs is the per-request preference snapshot: every type ID
	// the recipient has not opted out of, plus every mandatory type.
	// Derived once at construction and immutable afterwards.
	enabledTypeIDs []int64

	mu    sync.Mutex
	queue map[string]*Alert
	order []string

	numAlerts *int
	numUnread *int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithPerPage sets the default page size used when a listing is requested
// with limit 0.
func WithPerPage(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.perPage = n
		}
	}
}

// WithConfig applies an environment-derived configuration.
func WithConfig(cfg Config) ManagerOption {
	return func(m *Manager) {
		if cfg.PerPage > 0 {
			m.perPage = cfg.PerPage
		}
	}
}

// NewManager creates the engine for one unit of work acting as the given
// user. The recipient preference snapshot is derived here, once: a type ID is
// included when the user has no opt-out entry for it or the type is
// mandatory. A malformed opt-out list counts as no opt-outs.
func NewManager(ctx context.Context, storage Storage, types *alerttypes.Registry, dispatcher *hooks.Dispatcher, user User, opts ...ManagerOption) (*Manager, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}
	if types == nil {
		return nil, ErrTypeRegistryRequired
	}
	if dispatcher == nil {
		dispatcher = hooks.NewDispatcher()
	}

	m := &Manager{
		storage:    storage,
		types:      types,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		user:       user,
		perPage:    defaultPerPage,
		queue:      make(map[string]*Alert),
	}

	for _, opt := range opts {
		opt(m)
	}

	snapshot, err := types.GetAlertTypes(ctx, false)
	if err != nil {
		return nil, err
	}

	disabled := parseDisabledTypes(user.DisabledAlertTypes)
	for _, t := range snapshot {
		if !slices.Contains(disabled, t.ID) || !t.CanBeUserDisabled {
			m.enabledTypeIDs = append(m.enabledTypeIDs, t.ID)
		}
	}
	slices.Sort(m.enabledTypeIDs)

	return m, nil
}

// User returns the recipient this manager acts as.
func (m *Manager) User() User {
	return m.user
}

// EnabledAlertTypeIDs returns the per-request preference snapshot.
func (m *Manager) EnabledAlertTypeIDs() []int64 {
	return slices.Clone(m.enabledTypeIDs)
}

// TypeRegistry returns the alert-type registry the manager consults.
func (m *Manager) TypeRegistry() *alerttypes.Registry {
	return m.types
}

// AddAlerts submits a list of alerts, stopping at the first failure.
func (m *Manager) AddAlerts(ctx context.Context, alerts []*Alert) error {
	for _, a := range alerts {
		if err := m.AddAlert(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// AddAlert decides admission for one alert and, if admitted, upserts it into
// the pending buffer under its dedup key. A second alert with the same key
// before commit silently replaces the first. Alerts that fail admission are
// dropped silently; only storage failures surface as errors.
func (m *Manager) AddAlert(ctx context.Context, a *Alert) error {
	if a == nil {
		return nil
	}

	if a.FromUser == nil && a.FromUserID == 0 {
		acting := m.user
		a.SetFromUser(&acting)
	}

	t := a.Type

	wantingUsers, err := m.DoUsersWantAlert(ctx, t, ByID(a.UserID))
	if err != nil {
		return errors.Join(ErrAddAlertFailed, err)
	}

	if !t.Enabled || (len(wantingUsers) == 0 && t.CanBeUserDisabled) {
		return nil
	}

	// A quoted alert is redundant when the thread author is already being
	// told about the same thread; drop it on that cross-type collision.
	if t.Code == "quoted" {
		if tid, ok := detailInt64(a.ExtraDetails["tid"]); ok {
			m.mu.Lock()
			_, queued := m.queue[dedupKey("post_threadauthor", a.UserID, tid)]
			m.mu.Unlock()
			if queued {
				return nil
			}
		}
	}

	m.dispatcher.Run(ctx, HookAddAlert, &AddAlertPayload{Manager: m, Alert: a})

	m.mu.Lock()
	defer m.mu.Unlock()

	key := a.DedupKey()
	if _, exists := m.queue[key]; !exists {
		m.order = append(m.order, key)
	}
	m.queue[key] = a

	return nil
}

// DoUsersWantAlert returns the users among the selected ones who should
// receive alerts of the given type: those with no opt-out entry for it, or
// everyone when the type is mandatory. Users with unparseable opt-out data
// are included (delivery fails open).
func (m *Manager) DoUsersWantAlert(ctx context.Context, t alerttypes.AlertType, sel UserSelector) ([]User, error) {
	users, err := m.storage.FindUsers(ctx, sel)
	if err != nil {
		return nil, err
	}

	wanting := make([]User, 0, len(users))
	for _, u := range users {
		disabled := parseDisabledTypes(u.DisabledAlertTypes)
		if len(disabled) == 0 || !slices.Contains(disabled, t.ID) || !t.CanBeUserDisabled {
			wanting = append(wanting, u)
		}
	}

	return wanting, nil
}

// QueuedAlerts returns the pending buffer in insertion order.
func (m *Manager) QueuedAlerts() []*Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Alert, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.queue[key])
	}

	return out
}

// ClearQueue discards every pending alert without committing.
func (m *Manager) ClearQueue() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = make(map[string]*Alert)
	m.order = nil
}

// Commit flushes the pending buffer as a single batch insert. The buffer is
// cleared before the insert is attempted, so a failed insert drops the batch:
// the cause is logged and joined into ErrCommitFailed, but nothing is
// retried. An empty buffer commits successfully without a storage call.
func (m *Manager) Commit(ctx context.Context) error {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return nil
	}

	records := make([]AlertRecord, 0, len(m.order))
	for _, key := range m.order {
		records = append(records, m.queue[key].record())
	}

	m.queue = make(map[string]*Alert)
	m.order = nil
	m.mu.Unlock()

	if err := m.storage.InsertAlerts(ctx, records); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "alert batch commit failed, batch dropped",
			slog.Int("alerts", len(records)),
			logger.UserID(m.user.ID),
			logger.Error(err),
		)
		return errors.Join(ErrCommitFailed, err)
	}

	return nil
}

// GetAlerts returns a page of the recipient's alerts, newest first. A limit
// of 0 uses the configured page size. A recipient with an empty preference
// snapshot has no visible alerts and no query is issued.
func (m *Manager) GetAlerts(ctx context.Context, offset, limit int, unreadOnly bool) ([]*Alert, error) {
	if len(m.enabledTypeIDs) == 0 {
		return []*Alert{}, nil
	}

	if limit <= 0 {
		limit = m.perPage
	}

	rows, err := m.storage.ListAlerts(ctx, ListQuery{
		UserID:         m.user.ID,
		EnabledTypeIDs: m.enabledTypeIDs,
		UnreadOnly:     unreadOnly,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	return m.hydrateRows(ctx, rows), nil
}

// GetUnreadAlerts returns every unread alert of the recipient, newest first.
func (m *Manager) GetUnreadAlerts(ctx context.Context) ([]*Alert, error) {
	if len(m.enabledTypeIDs) == 0 {
		return []*Alert{}, nil
	}

	rows, err := m.storage.ListAlerts(ctx, ListQuery{
		UserID:         m.user.ID,
		EnabledTypeIDs: m.enabledTypeIDs,
		UnreadOnly:     true,
	})
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	return m.hydrateRows(ctx, rows), nil
}

// GetAlert returns a single alert by ID, scoped to the recipient. Rows whose
// type is no longer registered resolve to ErrAlertNotFound.
func (m *Manager) GetAlert(ctx context.Context, id int64) (*Alert, error) {
	row, err := m.storage.GetAlert(ctx, m.user.ID, id)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}

	a, ok := m.hydrate(row)
	if !ok {
		return nil, ErrAlertNotFound
	}

	return a, nil
}

// NumAlerts returns the recipient's policy-filtered alert count, computed at
// most once per unit of work.
func (m *Manager) NumAlerts(ctx context.Context) (int, error) {
	m.mu.Lock()
	if m.numAlerts != nil {
		n := *m.numAlerts
		m.mu.Unlock()
		return n, nil
	}
	m.mu.Unlock()

	n := 0
	if len(m.enabledTypeIDs) > 0 {
		var err error
		n, err = m.storage.CountAlerts(ctx, CountQuery{
			UserID:         m.user.ID,
			EnabledTypeIDs: m.enabledTypeIDs,
		})
		if err != nil {
			return 0, errors.Join(ErrQueryFailed, err)
		}
	}

	m.mu.Lock()
	m.numAlerts = &n
	m.mu.Unlock()

	return n, nil
}

// NumUnreadAlerts returns the recipient's unread count, cached for the unit
// of work unless forceRecount bypasses the cache.
func (m *Manager) NumUnreadAlerts(ctx context.Context, forceRecount bool) (int, error) {
	m.mu.Lock()
	if m.numUnread != nil && !forceRecount {
		n := *m.numUnread
		m.mu.Unlock()
		return n, nil
	}
	m.mu.Unlock()

	n := 0
	if len(m.enabledTypeIDs) > 0 {
		var err error
		n, err = m.storage.CountAlerts(ctx, CountQuery{
			UserID:         m.user.ID,
			EnabledTypeIDs: m.enabledTypeIDs,
			UnreadOnly:     true,
		})
		if err != nil {
			return 0, errors.Join(ErrQueryFailed, err)
		}
	}

	m.mu.Lock()
	m.numUnread = &n
	m.mu.Unlock()

	return n, nil
}

// MarkRead marks the given alerts as read, scoped to the recipient, and
// reports the affected-row count to HookMarkRead. An empty ID list is a
// no-op success.
func (m *Manager) MarkRead(ctx context.Context, ids ...int64) error {
	return m.markReadOrUnread(ctx, ids, true)
}

// MarkUnread marks the given alerts as unread, scoped to the recipient, and
// reports the affected-row count to HookMarkUnread.
func (m *Manager) MarkUnread(ctx context.Context, ids ...int64) error {
	return m.markReadOrUnread(ctx, ids, false)
}

func (m *Manager) markReadOrUnread(ctx context.Context, ids []int64, markRead bool) error {
	if len(ids) == 0 {
		return nil
	}

	affected, err := m.storage.SetUnread(ctx, m.user.ID, ids, !markRead)

	hook := HookMarkRead
	if !markRead {
		hook = HookMarkUnread
	}
	m.dispatcher.Run(ctx, hook, &MarkReadPayload{
		Manager:      m,
		AlertIDs:     ids,
		AffectedRows: affected,
	})

	if err != nil {
		return errors.Join(ErrUpdateFailed, err)
	}

	return nil
}

// MarkAllRead marks every alert of the recipient as read and reports the
// affected-row count to HookMarkAllRead.
func (m *Manager) MarkAllRead(ctx context.Context) error {
	affected, err := m.storage.MarkAllRead(ctx, m.user.ID)

	m.dispatcher.Run(ctx, HookMarkAllRead, &MarkAllReadPayload{
		Manager:      m,
		AffectedRows: affected,
	})

	if err != nil {
		return errors.Join(ErrUpdateFailed, err)
	}

	return nil
}

// DeleteAlerts removes the given alerts, scoped to the recipient. An empty
// ID list is a no-op success.
func (m *Manager) DeleteAlerts(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := m.storage.DeleteAlerts(ctx, m.user.ID, ids); err != nil {
		return errors.Join(ErrUpdateFailed, err)
	}

	return nil
}

func (m *Manager) hydrateRows(ctx context.Context, rows []AlertRow) []*Alert {
	out := make([]*Alert, 0, len(rows))
	for i := range rows {
		a, ok := m.hydrate(&rows[i])
		if !ok {
			// The row's type has been deleted since the alert was
			// written; skip it rather than failing the whole page.
			m.logger.LogAttrs(ctx, slog.LevelDebug, "skipping alert with unknown type",
				logger.AlertID(rows[i].ID),
				logger.AlertType(rows[i].TypeCode),
			)
			continue
		}
		out = append(out, a)
	}

	return out
}

func (m *Manager) hydrate(row *AlertRow) (*Alert, bool) {
	t, err := m.types.GetByCode(row.TypeCode)
	if err != nil {
		return nil, false
	}

	details := make(map[string]any)
	if row.ExtraDetails != "" {
		// Malformed payloads degrade to an empty document.
		_ = json.Unmarshal([]byte(row.ExtraDetails), &details)
	}

	return &Alert{
		ID:           row.ID,
		UserID:       row.UserID,
		FromUserID:   row.FromUserID,
		FromUser:     row.FromUser,
		Type:         t,
		ObjectID:     row.ObjectID,
		CreatedAt:    row.CreatedAt,
		Unread:       row.Unread,
		Forced:       row.Forced,
		ExtraDetails: details,
	}, true
}
