package study

import (
	"fmt"
	"sync"
	"time"
)

// HistoryEntry is one immutable record of a completed pipeline run.
type HistoryEntry struct {
	Timestamp   time.Time  `json:"timestamp"`
	Subject     string     `json:"subject"`
	Chapter     string     `json:"chapter"`
	EngineLabel string     `json:"engine_label"`
	HelpTypes   []HelpType `json:"help_types"`
}

// HistoryLogger records completed runs outside the session, for analytics.
type HistoryLogger interface {
	LogRun(sessionID string, entry HistoryEntry) error
}

// NopHistoryLogger ignores all runs.
type NopHistoryLogger struct{}

func (NopHistoryLogger) LogRun(string, HistoryEntry) error {
	return nil
}

// MemoryHistoryLogger stores runs in memory for tests.
type MemoryHistoryLogger struct {
	mu      sync.Mutex
	entries []HistoryEntry
}

func NewMemoryHistoryLogger() *MemoryHistoryLogger {
	return &MemoryHistoryLogger{
		entries: []HistoryEntry{},
	}
}

func (l *MemoryHistoryLogger) LogRun(sessionID string, entry HistoryEntry) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	return nil
}

func (l *MemoryHistoryLogger) Entries() []HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]HistoryEntry{}, l.entries...)
}
