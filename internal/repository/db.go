package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// NewDB creates a PostgreSQL connection pool, retrying the initial ping with
// exponential backoff so the server can start alongside the database.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 30 * time.Second

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		logrus.WithError(err).WithField("retry_in", wait.String()).Warn("database not ready")
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations creates the schema if it does not exist.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT,
			phone      TEXT,
			password   TEXT NOT NULL DEFAULT '',
			google_id  TEXT,
			about      TEXT NOT NULL DEFAULT '',
			tags       TEXT[] NOT NULL DEFAULT '{}',
			friends    TEXT[] NOT NULL DEFAULT '{}',
			joined_on  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT users_email_key UNIQUE (email),
			CONSTRAINT users_phone_key UNIQUE (phone),
			CONSTRAINT users_google_id_key UNIQUE (google_id)
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id                   TEXT PRIMARY KEY,
			user_id              TEXT NOT NULL,
			plan_type            TEXT NOT NULL DEFAULT 'free',
			plan_price           BIGINT NOT NULL DEFAULT 0,
			questions_per_day    INTEGER NOT NULL DEFAULT 1,
			questions_used_today INTEGER NOT NULL DEFAULT 0,
			last_reset_date      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			start_date           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			end_date             TIMESTAMPTZ,
			is_active            BOOLEAN NOT NULL DEFAULT TRUE,
			order_id             TEXT NOT NULL DEFAULT '',
			payment_id           TEXT NOT NULL DEFAULT '',
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT subscriptions_user_id_key UNIQUE (user_id)
		);

		CREATE TABLE IF NOT EXISTS payments (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			order_id       TEXT NOT NULL,
			payment_id     TEXT NOT NULL DEFAULT '',
			signature      TEXT NOT NULL DEFAULT '',
			amount         BIGINT NOT NULL,
			currency       TEXT NOT NULL DEFAULT 'INR',
			plan_type      TEXT NOT NULL,
			status         TEXT NOT NULL DEFAULT 'pending',
			invoice_number TEXT,
			email          TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at   TIMESTAMPTZ,
			CONSTRAINT payments_order_id_key UNIQUE (order_id),
			CONSTRAINT payments_invoice_number_key UNIQUE (invoice_number)
		);
		CREATE INDEX IF NOT EXISTS idx_payments_user_created ON payments(user_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS login_events (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			email       TEXT NOT NULL DEFAULT '',
			phone       TEXT NOT NULL DEFAULT '',
			browser     TEXT NOT NULL,
			os          TEXT NOT NULL,
			device_type TEXT NOT NULL,
			ip_address  TEXT NOT NULL DEFAULT '',
			method      TEXT NOT NULL,
			require_otp BOOLEAN NOT NULL DEFAULT FALSE,
			success     BOOLEAN NOT NULL DEFAULT TRUE,
			login_time  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_login_events_user_time ON login_events(user_id, login_time DESC);

		CREATE TABLE IF NOT EXISTS otp_codes (
			identifier TEXT PRIMARY KEY,
			code       TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS friend_requests (
			id           TEXT PRIMARY KEY,
			from_user    TEXT NOT NULL,
			to_user      TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'pending',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			responded_at TIMESTAMPTZ
		);
		CREATE UNIQUE INDEX IF NOT EXISTS friend_requests_pair_key
			ON friend_requests(LEAST(from_user, to_user), GREATEST(from_user, to_user));
		CREATE INDEX IF NOT EXISTS idx_friend_requests_to ON friend_requests(to_user, status);

		CREATE TABLE IF NOT EXISTS public_posts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			user_name  TEXT NOT NULL DEFAULT '',
			caption    TEXT NOT NULL DEFAULT '',
			media_url  TEXT NOT NULL DEFAULT '',
			media_type TEXT NOT NULL DEFAULT 'none',
			likes      TEXT[] NOT NULL DEFAULT '{}',
			comments   JSONB NOT NULL DEFAULT '[]',
			shares     INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_public_posts_user_created ON public_posts(user_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_public_posts_created ON public_posts(created_at DESC);

		CREATE TABLE IF NOT EXISTS questions (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			body        TEXT NOT NULL,
			tags        TEXT[] NOT NULL DEFAULT '{}',
			user_posted TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			has_video   BOOLEAN NOT NULL DEFAULT FALSE,
			video_url   TEXT NOT NULL DEFAULT '',
			up_votes    TEXT[] NOT NULL DEFAULT '{}',
			down_votes  TEXT[] NOT NULL DEFAULT '{}',
			asked_on    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_questions_asked_on ON questions(asked_on DESC);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
