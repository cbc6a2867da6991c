package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"funnel-bot/internal/domain"
)

// SQLite persists funnel state across restarts. One row per user; the
// state column is only ever increased, mirroring Memory.Advance.
type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS funnel (
	user_id  INTEGER PRIMARY KEY,
	campaign TEXT,
	state    INTEGER NOT NULL DEFAULT 0
);`

// OpenSQLite opens (creating if needed) the funnel database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) SetAttribution(ctx context.Context, user domain.UserID, tag domain.CampaignTag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO funnel (user_id, campaign) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET campaign = excluded.campaign`,
		int64(user), string(tag))
	if err != nil {
		return fmt.Errorf("set attribution: %w", err)
	}
	return nil
}

func (s *SQLite) Attribution(ctx context.Context, user domain.UserID) (domain.CampaignTag, error) {
	var tag sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT campaign FROM funnel WHERE user_id = ?`, int64(user)).Scan(&tag)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get attribution: %w", err)
	}
	if !tag.Valid {
		return "", ErrNotFound
	}
	return domain.CampaignTag(tag.String), nil
}

func (s *SQLite) Advance(ctx context.Context, user domain.UserID, to domain.FunnelState) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO funnel (user_id, state) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET state = excluded.state
		WHERE excluded.state > funnel.state`,
		int64(user), int(to))
	if err != nil {
		return false, fmt.Errorf("advance state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLite) State(ctx context.Context, user domain.UserID) (domain.FunnelState, error) {
	var state int
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM funnel WHERE user_id = ?`, int64(user)).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StateNone, nil
	}
	if err != nil {
		return domain.StateNone, fmt.Errorf("get state: %w", err)
	}
	return domain.FunnelState(state), nil
}
