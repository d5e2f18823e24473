package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "journal.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteProfileUpsert(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	if _, err := repo.GetProfile(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProfile on empty db: want ErrNotFound, got %v", err)
	}

	at := time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)
	if err := repo.UpsertProfile(ctx, &domain.UserProfile{UserID: 7, ChatID: 70, DisplayName: "Ann", RegisteredAt: at}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if err := repo.UpsertProfile(ctx, &domain.UserProfile{UserID: 7, ChatID: 71, DisplayName: "Anna", RegisteredAt: at}); err != nil {
		t.Fatalf("UpsertProfile again: %v", err)
	}

	p, err := repo.GetProfile(ctx, 7)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.ChatID != 71 || p.DisplayName != "Anna" || !p.RegisteredAt.Equal(at) {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestSQLiteRunDays(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	for _, d := range []string{"2025-05-08", "2025-05-10", "2025-05-09", "2025-05-10"} {
		if err := repo.RecordRun(ctx, 1, d); err != nil {
			t.Fatalf("RecordRun(%s): %v", d, err)
		}
	}
	if err := repo.RecordRun(ctx, 2, "2025-05-10"); err != nil {
		t.Fatalf("RecordRun other user: %v", err)
	}

	days, err := repo.RunDays(ctx, 1, 10)
	if err != nil {
		t.Fatalf("RunDays: %v", err)
	}
	want := []string{"2025-05-10", "2025-05-09", "2025-05-08"}
	if len(days) != len(want) {
		t.Fatalf("got %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("got %v, want %v", days, want)
		}
	}

	days, err = repo.RunDays(ctx, 1, 1)
	if err != nil || len(days) != 1 || days[0] != "2025-05-10" {
		t.Fatalf("limited RunDays = %v, %v", days, err)
	}
}

func TestSQLiteLastCycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	if _, err := repo.LastCycle(ctx, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LastCycle on empty db: want ErrNotFound, got %v", err)
	}

	base := time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)
	older := domain.CycleRecord{
		PromptID: "a", UserID: 3, ChatID: 30, Status: domain.StatusTimedOut, Mood: domain.FallbackMood,
		CreatedAt: base, ResolvedAt: base.Add(15 * time.Minute), TextDelivered: true,
	}
	newer := domain.CycleRecord{
		PromptID: "b", UserID: 3, ChatID: 30, Status: domain.StatusAnswered, Mood: "great",
		CreatedAt: base.Add(24 * time.Hour), ResolvedAt: base.Add(24*time.Hour + 2*time.Minute),
		TextDelivered: true, VoiceDelivered: true,
	}
	for _, rec := range []domain.CycleRecord{newer, older} {
		if err := repo.RecordCycle(ctx, rec); err != nil {
			t.Fatalf("RecordCycle(%s): %v", rec.PromptID, err)
		}
	}

	got, err := repo.LastCycle(ctx, 3)
	if err != nil {
		t.Fatalf("LastCycle: %v", err)
	}
	if *got != newer {
		t.Fatalf("LastCycle = %+v, want %+v", *got, newer)
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	repo, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.RecordRun(ctx, 9, "2025-05-11"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	repo, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	days, err := repo.RunDays(ctx, 9, 5)
	if err != nil || len(days) != 1 {
		t.Fatalf("RunDays after reopen = %v, %v", days, err)
	}
}

var _ Repo = (*SQLiteRepo)(nil)
var _ Repo = (*PostgresRepo)(nil)

func TestMigratePostgres_ClosesHandleOnError(t *testing.T) {
	// A SQLite handle has no CURRENT_DATABASE(), so the Postgres migrate
	// driver cannot be created on it.
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "not-postgres.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := migratePostgres(db); err == nil {
		t.Fatal("expected an error migrating a non-Postgres database")
	}
	if err := db.Ping(); err == nil || !strings.Contains(err.Error(), "database is closed") {
		t.Fatalf("handle left open: ping error %v", err)
	}
}
