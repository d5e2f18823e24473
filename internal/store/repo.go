package store

import (
	"context"
	"errors"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repo is the journal: who registered, which days they ran and how each
// morning cycle ended. Scheduler state is never rebuilt from it.
type Repo interface {
	UpsertProfile(ctx context.Context, p *domain.UserProfile) error
	GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error)
	RecordRun(ctx context.Context, userID int64, day string) error
	RunDays(ctx context.Context, userID int64, limit int) ([]string, error)
	RecordCycle(ctx context.Context, rec domain.CycleRecord) error
	LastCycle(ctx context.Context, userID int64) (*domain.CycleRecord, error)
	Close() error
}

// Open picks Postgres when databaseURL is set, SQLite at sqlitePath otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Repo, error) {
	if databaseURL != "" {
		return OpenPostgres(ctx, databaseURL)
	}
	return OpenSQLite(ctx, sqlitePath)
}
