package study_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/onyx-team/studymate/internal/study"
)

func TestPostgresHistoryLogger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("studymate"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	logger := study.NewPostgresHistoryLogger(pool)
	if err := logger.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	first := study.HistoryEntry{
		Timestamp:   time.Now().Add(-time.Minute),
		Subject:     "Mathematics",
		Chapter:     "Calculus",
		EngineLabel: "Deepseek 3.1",
		HelpTypes:   []study.HelpType{study.HelpSummarize, study.HelpQuizzes},
	}
	second := study.HistoryEntry{
		Timestamp:   time.Now(),
		Subject:     "Physics",
		Chapter:     "Optics",
		EngineLabel: "Gemini 3.1",
		HelpTypes:   []study.HelpType{study.HelpVideos},
	}

	if err := logger.LogRun("session-1", first); err != nil {
		t.Fatalf("LogRun() error = %v", err)
	}
	if err := logger.LogRun("session-1", second); err != nil {
		t.Fatalf("LogRun() error = %v", err)
	}
	if err := logger.LogRun("session-2", second); err != nil {
		t.Fatalf("LogRun() error = %v", err)
	}

	runs, err := logger.Runs(ctx, "session-1")
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].Subject != "Mathematics" || runs[1].Subject != "Physics" {
		t.Errorf("runs out of order: %+v", runs)
	}
	if len(runs[0].HelpTypes) != 2 || runs[0].HelpTypes[0] != study.HelpSummarize {
		t.Errorf("help types = %v", runs[0].HelpTypes)
	}
}

func TestPostgresHistoryLogger_Validation(t *testing.T) {
	logger := study.NewPostgresHistoryLogger(nil)

	if err := logger.LogRun("session", study.HistoryEntry{Subject: "s", Chapter: "c"}); err == nil {
		t.Error("LogRun() should fail with nil pool")
	}
}
