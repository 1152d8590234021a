package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const createSSHUsersTable = `
CREATE TABLE IF NOT EXISTS ssh_users (
    id              BIGSERIAL   PRIMARY KEY,
    username        TEXT        NOT NULL UNIQUE,
    key_fingerprint TEXT        NOT NULL UNIQUE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login_at   TIMESTAMPTZ
);
`

// SSHUser is an authorized public key for the terminal dashboard.
type SSHUser struct {
	ID          int64
	Username    string
	Fingerprint string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

type SSHUserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSSHUserRepository(pool PgxPool, tracer trace.Tracer) *SSHUserRepository {
	return &SSHUserRepository{pool: pool, tracer: tracer}
}

func (r *SSHUserRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "sshuser-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createSSHUsersTable)
	return err
}

// FindByFingerprint returns the user owning the key, or nil when unknown.
func (r *SSHUserRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*SSHUser, error) {
	_, span := r.tracer.Start(ctx, "sshuser-repo.find-by-fingerprint")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, username, key_fingerprint, created_at, last_login_at
		 FROM ssh_users WHERE key_fingerprint = $1`,
		fingerprint,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var u SSHUser
	if err := rows.Scan(&u.ID, &u.Username, &u.Fingerprint, &u.CreatedAt, &u.LastLoginAt); err != nil {
		return nil, err
	}
	return &u, rows.Err()
}

func (r *SSHUserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, span := r.tracer.Start(ctx, "sshuser-repo.update-last-login")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE ssh_users SET last_login_at = NOW() WHERE id = $1`,
		userID,
	)
	return err
}

// Upsert registers or renames a key, used by the provisioning CLI path.
func (r *SSHUserRepository) Upsert(ctx context.Context, username, fingerprint string) error {
	_, span := r.tracer.Start(ctx, "sshuser-repo.upsert")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO ssh_users (username, key_fingerprint)
		 VALUES ($1, $2)
		 ON CONFLICT (key_fingerprint) DO UPDATE SET username = EXCLUDED.username`,
		username, fingerprint,
	)
	return err
}
