package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS dashgrid_layouts (
	topology   TEXT NOT NULL,
	grp        TEXT NOT NULL,
	sizes      JSONB NOT NULL,
	revision   TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (topology, grp)
)`

// PostgresStore keeps records in the dashgrid_layouts table. Sizes are
// stored as a JSONB array.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens databaseURL with the pgx driver, pings it and
// creates the table if needed.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(8)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create layouts table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, topology, group string) (*Record, error) {
	rec := Record{Topology: topology, Group: group}
	var sizes []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT sizes, revision, updated_at FROM dashgrid_layouts WHERE topology = $1 AND grp = $2`,
		topology, group).Scan(&sizes, &rec.Revision, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	if err := json.Unmarshal(sizes, &rec.Sizes); err != nil {
		return nil, fmt.Errorf("decode sizes: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Put(ctx context.Context, rec *Record) error {
	if err := stamp(rec); err != nil {
		return err
	}
	sizes, err := json.Marshal(rec.Sizes)
	if err != nil {
		return fmt.Errorf("encode sizes: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dashgrid_layouts (topology, grp, sizes, revision, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (topology, grp) DO UPDATE
		 SET sizes = EXCLUDED.sizes, revision = EXCLUDED.revision, updated_at = EXCLUDED.updated_at`,
		rec.Topology, rec.Group, string(sizes), rec.Revision, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, topology, group string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM dashgrid_layouts WHERE topology = $1 AND grp = $2`, topology, group)
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, topology string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT grp, sizes, revision, updated_at FROM dashgrid_layouts WHERE topology = $1 ORDER BY grp`, topology)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec := Record{Topology: topology}
		var sizes []byte
		if err := rows.Scan(&rec.Group, &sizes, &rec.Revision, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		if err := json.Unmarshal(sizes, &rec.Sizes); err != nil {
			return nil, fmt.Errorf("decode sizes: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)
