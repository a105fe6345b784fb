// Package credstore persists the signed-in user and the authentication
// history in a local SQLite database.
package credstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/marcus/habitchain/internal/auth"
	"github.com/marcus/habitchain/internal/identity"
	_ "modernc.org/sqlite"
)

// FileName is the database file created under the data directory.
const FileName = "habitchain.db"

// timeLayout is fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements identity.Persistence and auth.Journal.
type Store struct {
	conn *sql.DB
	path string
}

var (
	_ identity.Persistence = (*Store)(nil)
	_ auth.Journal         = (*Store)(nil)
)

// Open opens (creating if needed) the database in dir and applies any
// pending migrations.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, FileName)

	if err := migrateUp(path); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.SetMaxOpenConns(1)

	return &Store{conn: conn, path: path}, nil
}

// migrateUp runs on its own connection; closing the migrator closes it.
func migrateUp(path string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// LoadUser returns the stored user, or nil when nobody is signed in.
func (s *Store) LoadUser(ctx context.Context) (*identity.User, error) {
	var (
		u       identity.User
		expires string
	)
	err := s.conn.QueryRowContext(ctx, `
		SELECT uid, email, display_name, provider_id, id_token, refresh_token, expires_at
		FROM session WHERE id = 1`).
		Scan(&u.UID, &u.Email, &u.DisplayName, &u.ProviderID, &u.IDToken, &u.RefreshToken, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if expires != "" {
		if u.ExpiresAt, err = time.Parse(timeLayout, expires); err != nil {
			return nil, fmt.Errorf("parse session expiry: %w", err)
		}
	}
	return &u, nil
}

// SaveUser replaces the stored user.
func (s *Store) SaveUser(ctx context.Context, u *identity.User) error {
	if u == nil {
		return s.ClearUser(ctx)
	}
	var expires string
	if !u.ExpiresAt.IsZero() {
		expires = u.ExpiresAt.UTC().Format(timeLayout)
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO session (id, uid, email, display_name, provider_id, id_token, refresh_token, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uid = excluded.uid,
			email = excluded.email,
			display_name = excluded.display_name,
			provider_id = excluded.provider_id,
			id_token = excluded.id_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at`,
		u.UID, u.Email, u.DisplayName, u.ProviderID, u.IDToken, u.RefreshToken, expires,
		time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearUser removes the stored user.
func (s *Store) ClearUser(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Record appends an authentication event. A missing ID or time is filled in.
func (s *Store) Record(ctx context.Context, e auth.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO auth_events (id, event, email, uid, provider_id, ok, reason, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Event, e.Email, e.UID, e.Provider, e.OK, string(e.Reason),
		e.At.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}
	return nil
}

// History returns the most recent events, newest first. limit <= 0
// returns every event.
func (s *Store) History(ctx context.Context, limit int) ([]auth.Entry, error) {
	query := `SELECT id, event, email, uid, provider_id, ok, reason, at
		FROM auth_events ORDER BY at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query auth history: %w", err)
	}
	defer rows.Close()

	var out []auth.Entry
	for rows.Next() {
		var (
			e      auth.Entry
			reason string
			at     string
		)
		if err := rows.Scan(&e.ID, &e.Event, &e.Email, &e.UID, &e.Provider, &e.OK, &reason, &at); err != nil {
			return nil, fmt.Errorf("scan auth event: %w", err)
		}
		e.Reason = auth.Reason(reason)
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse auth event time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
