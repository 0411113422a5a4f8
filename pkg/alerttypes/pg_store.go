package alerttypes

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres implementation of Store, backed by a pgx pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates an alert-type store on top of the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) ListTypes(ctx context.Context) ([]AlertType, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, code, enabled, can_be_user_disabled, default_user_enabled
		 FROM alert_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []AlertType
	for rows.Next() {
		var t AlertType
		if err := rows.Scan(&t.ID, &t.Code, &t.Enabled, &t.CanBeUserDisabled, &t.DefaultUserEnabled); err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	return types, rows.Err()
}

func (s *PGStore) Insert(ctx context.Context, t AlertType) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO alert_types (code, enabled, can_be_user_disabled, default_user_enabled)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		t.Code, t.Enabled, t.CanBeUserDisabled, t.DefaultUserEnabled,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (s *PGStore) InsertMany(ctx context.Context, types []AlertType) error {
	if len(types) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(types))
	for _, t := range types {
		rows = append(rows, []any{t.Code, t.Enabled, t.CanBeUserDisabled, t.DefaultUserEnabled})
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"alert_types"},
		[]string{"code", "enabled", "can_be_user_disabled", "default_user_enabled"},
		pgx.CopyFromRows(rows),
	)

	return err
}

func (s *PGStore) Update(ctx context.Context, t AlertType) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE alert_types
		 SET enabled = $2, can_be_user_disabled = $3, default_user_enabled = $4
		 WHERE id = $1`,
		t.ID, t.Enabled, t.CanBeUserDisabled, t.DefaultUserEnabled)

	return err
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM alert_types WHERE id = $1`, id)
	return err
}
