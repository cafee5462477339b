package study

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onyx-team/studymate/internal/ai"
	"github.com/onyx-team/studymate/internal/study/parse"
)

// Session holds everything one user accumulates: the last pipeline output,
// quiz progress, roadmap and run history. A successful run replaces the
// output and resets the quiz; history only ever grows.
type Session struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Engine    ai.Engine      `json:"engine"`
	HelpTypes []HelpType     `json:"help_types"`
	Output    *Result        `json:"output,omitempty"`
	Quiz      QuizSession    `json:"quiz"`
	Roadmap   string         `json:"roadmap,omitempty"`
	History   []HistoryEntry `json:"history"`
}

// newSession returns a session with the documented defaults.
func newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Engine:    ai.DefaultEngine,
		HelpTypes: DefaultHelpTypes(),
		Quiz:      NewQuizSession(parse.QuizDoc{}),
	}
}

// applyRun replaces the session's outputs with a fresh pipeline result,
// resets the quiz to the answering state and appends a history entry.
func (s *Session) applyRun(req Request, res Result) {
	s.Engine = res.Engine
	s.HelpTypes = req.HelpTypes
	s.Output = &res
	s.Quiz = NewQuizSession(parse.Quiz(res.Quizzes))
	s.Roadmap = ""
	s.History = append(s.History, HistoryEntry{
		Timestamp:   time.Now(),
		Subject:     req.Subject,
		Chapter:     req.Chapter,
		EngineLabel: res.Engine.Label(),
		HelpTypes:   req.HelpTypes,
	})
}

func (s *Session) clone() *Session {
	out := *s
	out.HelpTypes = append([]HelpType(nil), s.HelpTypes...)
	out.History = append([]HistoryEntry(nil), s.History...)
	if s.Output != nil {
		res := *s.Output
		out.Output = &res
	}
	out.Quiz.Questions = append([]parse.Question(nil), s.Quiz.Questions...)
	out.Quiz.Exercises = append([]parse.Exercise(nil), s.Quiz.Exercises...)
	out.Quiz.Answers = make(map[int]string, len(s.Quiz.Answers))
	for k, v := range s.Quiz.Answers {
		out.Quiz.Answers[k] = v
	}
	return &out
}

// SessionStore persists sessions and serializes their mutations.
type SessionStore interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// CompleteRun stores a successful pipeline result: outputs replaced,
	// quiz reset, one history entry appended.
	CompleteRun(ctx context.Context, id string, req Request, res Result) (*Session, error)
	SelectAnswer(ctx context.Context, id string, number int, letter string) error
	SubmitQuiz(ctx context.Context, id string) (float64, error)
	RetakeQuiz(ctx context.Context, id string) error
	SetRoadmap(ctx context.Context, id, roadmap string) error
}

// MemoryStore is an in-memory SessionStore. All mutations run under one
// lock, which satisfies the per-session serialization requirement.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Create(_ context.Context) (*Session, error) {
	s := newSession()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s.clone(), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.clone(), nil
}

func (m *MemoryStore) CompleteRun(_ context.Context, id string, req Request, res Result) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.applyRun(req, res)
	return s.clone(), nil
}

func (m *MemoryStore) SelectAnswer(_ context.Context, id string, number int, letter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return s.Quiz.SelectAnswer(number, letter)
}

func (m *MemoryStore) SubmitQuiz(_ context.Context, id string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return 0, ErrSessionNotFound
	}
	return s.Quiz.Submit()
}

func (m *MemoryStore) RetakeQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return s.Quiz.Retake()
}

func (m *MemoryStore) SetRoadmap(_ context.Context, id, roadmap string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Roadmap = roadmap
	return nil
}
