// Package pg implements the profile store and account lookup over PostgreSQL,
// for deployments that keep creator profiles in their own database instead of
// the hosted document backend.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cherrizbox/socialverify/internal/account"
	"github.com/cherrizbox/socialverify/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects the pool and pings it once. minConns mapea el clásico
// "max idle" a MinConns de pgxpool.
func Open(ctx context.Context, dsn string, maxConns, minConns int32, connLifetime time.Duration) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}
	if connLifetime > 0 {
		cfg.MaxConnLifetime = connLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) FindByAccountID(ctx context.Context, accountID string) ([]store.ProfileDocument, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, social_media, social_media_username,
		       COALESCE(social_media_number, ''), social_media_number_correct
		FROM creator_profiles
		WHERE account_id = $1
		ORDER BY created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []store.ProfileDocument
	for rows.Next() {
		var d store.ProfileDocument
		if err := rows.Scan(&d.ID, &d.AccountID, &d.SocialMedia,
			&d.SocialMediaUsername, &d.VerificationCode, &d.CodeConfirmed); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) SetVerificationCode(ctx context.Context, documentID, code string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE creator_profiles
		SET social_media_number = $2,
		    social_media_number_correct = FALSE,
		    updated_at = now()
		WHERE id = $1`, documentID, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Get resolves the account row, so the postgres driver does not need the
// external account service at all.
func (s *Store) Get(ctx context.Context, userID string) (*account.Account, error) {
	var a account.Account
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email FROM accounts WHERE id = $1`, userID).
		Scan(&a.ID, &a.Name, &a.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
