package store

import (
	"context"
	"database/sql"
	"fmt"

	"zkvault/internal/permission/models"
	"zkvault/pkg/domain"
)

// Schema creates the grants table. Safe to run on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS permission_grants (
    origin     TEXT        NOT NULL,
    claim_type TEXT        NOT NULL,
    granted_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (origin, claim_type)
)`

// PostgresStore persists grants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed grant store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate permission_grants: %w", err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, grant models.Grant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO permission_grants (origin, claim_type, granted_at) VALUES ($1, $2, $3)
		 ON CONFLICT (origin, claim_type) DO NOTHING`,
		string(grant.Origin), string(grant.ClaimType), grant.GrantedAt)
	if err != nil {
		return fmt.Errorf("put grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, origin domain.Origin, claim domain.ClaimType) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM permission_grants WHERE origin = $1 AND claim_type = $2`,
		string(origin), string(claim))
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, origin domain.Origin, claim domain.ClaimType) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM permission_grants WHERE origin = $1 AND claim_type = $2)`,
		string(origin), string(claim)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check grant: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListByOrigin(ctx context.Context, origin domain.Origin) ([]models.Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT claim_type, granted_at FROM permission_grants WHERE origin = $1 ORDER BY claim_type`,
		string(origin))
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var out []models.Grant
	for rows.Next() {
		g := models.Grant{Origin: origin}
		var claim string
		if err := rows.Scan(&claim, &g.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.ClaimType = domain.ClaimType(claim)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListOrigins(ctx context.Context) ([]domain.Origin, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT origin FROM permission_grants ORDER BY origin`)
	if err != nil {
		return nil, fmt.Errorf("list origins: %w", err)
	}
	defer rows.Close()

	var out []domain.Origin
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, fmt.Errorf("scan origin: %w", err)
		}
		out = append(out, domain.Origin(o))
	}
	return out, rows.Err()
}
