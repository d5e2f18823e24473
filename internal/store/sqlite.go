package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// UpsertProfile stores p, replacing every field of an existing profile.
func (r *SQLiteRepo) UpsertProfile(ctx context.Context, p *domain.UserProfile) error {
	if p == nil {
		return errors.New("nil profile")
	}
	registered := p.RegisteredAt
	if registered.IsZero() {
		registered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, chat_id, display_name, registered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			chat_id       = excluded.chat_id,
			display_name  = excluded.display_name,
			registered_at = excluded.registered_at`,
		p.UserID, p.ChatID, p.DisplayName, toUnix(registered),
	)
	return err
}

// GetProfile returns a profile by Telegram user id or ErrNotFound.
func (r *SQLiteRepo) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, chat_id, display_name, registered_at
		FROM profiles
		WHERE user_id = ?`,
		userID,
	)

	var (
		p          domain.UserProfile
		registered int64
	)
	if err := row.Scan(&p.UserID, &p.ChatID, &p.DisplayName, &registered); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.RegisteredAt = fromUnix(registered)
	return &p, nil
}

// RecordRun marks day (YYYY-MM-DD) as a run day. Repeats are ignored.
func (r *SQLiteRepo) RecordRun(ctx context.Context, userID int64, day string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (user_id, day, logged_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, day) DO NOTHING`,
		userID, day, time.Now().UTC().Unix(),
	)
	return err
}

// RunDays returns up to limit run days, newest first.
func (r *SQLiteRepo) RunDays(ctx context.Context, userID int64, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day
		FROM runs
		WHERE user_id = ?
		ORDER BY day DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// RecordCycle appends a resolved morning cycle.
func (r *SQLiteRepo) RecordCycle(ctx context.Context, rec domain.CycleRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cycles (
			prompt_id, user_id, chat_id, status, mood,
			created_at, resolved_at, text_delivered, voice_delivered
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.PromptID, rec.UserID, rec.ChatID, string(rec.Status), rec.Mood,
		toUnix(rec.CreatedAt), toUnix(rec.ResolvedAt),
		boolToInt(rec.TextDelivered), boolToInt(rec.VoiceDelivered),
	)
	return err
}

// LastCycle returns the most recently resolved cycle or ErrNotFound.
func (r *SQLiteRepo) LastCycle(ctx context.Context, userID int64) (*domain.CycleRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT prompt_id, user_id, chat_id, status, mood,
		       created_at, resolved_at, text_delivered, voice_delivered
		FROM cycles
		WHERE user_id = ?
		ORDER BY resolved_at DESC
		LIMIT 1`,
		userID,
	)

	var (
		rec               domain.CycleRecord
		status            string
		created, resolved int64
		textInt, voiceInt int
	)
	if err := row.Scan(
		&rec.PromptID, &rec.UserID, &rec.ChatID, &status, &rec.Mood,
		&created, &resolved, &textInt, &voiceInt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.Status = domain.PromptStatus(status)
	rec.CreatedAt = fromUnix(created)
	rec.ResolvedAt = fromUnix(resolved)
	rec.TextDelivered = textInt != 0
	rec.VoiceDelivered = voiceInt != 0
	return &rec, nil
}
