package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
)

// PostgresRepo implements Repo on a pgx connection pool.
type PostgresRepo struct{ pool *pgxpool.Pool }

// OpenPostgres connects to dsn, runs migrations and returns a repository.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := migratePostgres(stdlib.OpenDBFromPool(pool)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepo) UpsertProfile(ctx context.Context, p *domain.UserProfile) error {
	if p == nil {
		return errors.New("nil profile")
	}
	registered := p.RegisteredAt
	if registered.IsZero() {
		registered = time.Now()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, chat_id, display_name, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			chat_id       = EXCLUDED.chat_id,
			display_name  = EXCLUDED.display_name,
			registered_at = EXCLUDED.registered_at`,
		p.UserID, p.ChatID, p.DisplayName, registered.UTC(),
	)
	return err
}

func (r *PostgresRepo) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, chat_id, display_name, registered_at
		FROM profiles
		WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.ChatID, &p.DisplayName, &p.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.RegisteredAt = p.RegisteredAt.UTC()
	return &p, nil
}

func (r *PostgresRepo) RecordRun(ctx context.Context, userID int64, day string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO runs (user_id, day)
		VALUES ($1, $2::date)
		ON CONFLICT (user_id, day) DO NOTHING`,
		userID, day,
	)
	return err
}

func (r *PostgresRepo) RunDays(ctx context.Context, userID int64, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(day, 'YYYY-MM-DD')
		FROM runs
		WHERE user_id = $1
		ORDER BY day DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PostgresRepo) RecordCycle(ctx context.Context, rec domain.CycleRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cycles (
			prompt_id, user_id, chat_id, status, mood,
			created_at, resolved_at, text_delivered, voice_delivered
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.PromptID, rec.UserID, rec.ChatID, string(rec.Status), rec.Mood,
		rec.CreatedAt.UTC(), rec.ResolvedAt.UTC(), rec.TextDelivered, rec.VoiceDelivered,
	)
	return err
}

func (r *PostgresRepo) LastCycle(ctx context.Context, userID int64) (*domain.CycleRecord, error) {
	var (
		rec    domain.CycleRecord
		status string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT prompt_id::text, user_id, chat_id, status, mood,
		       created_at, resolved_at, text_delivered, voice_delivered
		FROM cycles
		WHERE user_id = $1
		ORDER BY resolved_at DESC
		LIMIT 1`,
		userID,
	).Scan(
		&rec.PromptID, &rec.UserID, &rec.ChatID, &status, &rec.Mood,
		&rec.CreatedAt, &rec.ResolvedAt, &rec.TextDelivered, &rec.VoiceDelivered,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Status = domain.PromptStatus(status)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ResolvedAt = rec.ResolvedAt.UTC()
	return &rec, nil
}
