package study

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound reports an unknown session ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuizSubmitted rejects answer changes and re-submission after grading.
	ErrQuizSubmitted = errors.New("quiz already submitted")
	// ErrQuizNotSubmitted rejects a retake before grading.
	ErrQuizNotSubmitted = errors.New("quiz not submitted yet")
	// ErrNoSummary reports a roadmap request before any pipeline run.
	ErrNoSummary = errors.New("no summary available, run the pipeline first")
)

// AgentError wraps a failed agent call with the pipeline step it belongs to.
// A run aborts on the first AgentError; no partial result is stored.
type AgentError struct {
	Step Step
	Err  error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent step %s: %v", e.Step, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}
