package study

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresHistoryLogger inserts runs into the study_runs table.
type PostgresHistoryLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresHistoryLogger(pool *pgxpool.Pool) *PostgresHistoryLogger {
	return &PostgresHistoryLogger{pool: pool}
}

// EnsureSchema creates the study_runs table if it does not exist.
func (l *PostgresHistoryLogger) EnsureSchema(ctx context.Context) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("history logger pool is nil")
	}
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS study_runs (
			id         BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			subject    TEXT NOT NULL,
			chapter    TEXT NOT NULL,
			engine     TEXT NOT NULL,
			help_types JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensure study_runs schema: %w", err)
	}
	return nil
}

func (l *PostgresHistoryLogger) LogRun(sessionID string, entry HistoryEntry) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("history logger pool is nil")
	}
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if entry.Subject == "" || entry.Chapter == "" {
		return fmt.Errorf("subject and chapter are required")
	}

	helpTypes := entry.HelpTypes
	if helpTypes == nil {
		helpTypes = []HelpType{}
	}
	data, err := json.Marshal(helpTypes)
	if err != nil {
		return fmt.Errorf("marshal help types: %w", err)
	}

	createdAt := entry.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO study_runs (session_id, subject, chapter, engine, help_types, created_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		sessionID,
		entry.Subject,
		entry.Chapter,
		entry.EngineLabel,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert study run: %w", err)
	}

	slog.Debug("study run logged",
		"session_id", sessionID,
		"subject", entry.Subject,
		"chapter", entry.Chapter,
	)
	return nil
}

// Runs returns the logged runs for one session, oldest first.
func (l *PostgresHistoryLogger) Runs(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	if l == nil || l.pool == nil {
		return nil, fmt.Errorf("history logger pool is nil")
	}

	rows, err := l.pool.Query(ctx,
		`SELECT subject, chapter, engine, help_types, created_at
		 FROM study_runs
		 WHERE session_id = $1
		 ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query study runs: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var helpTypes []byte
		if err := rows.Scan(
			&entry.Subject,
			&entry.Chapter,
			&entry.EngineLabel,
			&helpTypes,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan study run: %w", err)
		}
		if err := json.Unmarshal(helpTypes, &entry.HelpTypes); err != nil {
			return nil, fmt.Errorf("unmarshal help types: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study runs: %w", err)
	}

	return entries, nil
}
