// Package study implements the study-pack pipeline: orchestration of the
// agent sequence, quiz grading, session state and run history.
package study

import (
	"fmt"

	"github.com/onyx-team/studymate/internal/ai"
)

// HelpType is a user-selectable category of supplementary output. Each help
// type gates whether its corresponding agent runs.
type HelpType string

const (
	HelpSummarize HelpType = "summarize"
	HelpVideos    HelpType = "videos"
	HelpProjects  HelpType = "projects"
	HelpQuizzes   HelpType = "quizzes"
	HelpExams     HelpType = "exams"
)

// HelpTypes lists all help types in display order.
func HelpTypes() []HelpType {
	return []HelpType{HelpSummarize, HelpVideos, HelpProjects, HelpQuizzes, HelpExams}
}

// DefaultHelpTypes is the selection a fresh session starts with.
func DefaultHelpTypes() []HelpType {
	return []HelpType{HelpSummarize, HelpQuizzes}
}

// ParseHelpType converts a wire string into a HelpType.
func ParseHelpType(s string) (HelpType, error) {
	switch HelpType(s) {
	case HelpSummarize, HelpVideos, HelpProjects, HelpQuizzes, HelpExams:
		return HelpType(s), nil
	}
	return "", fmt.Errorf("unknown help type: %q", s)
}

// Request is the input to one pipeline run.
type Request struct {
	Subject      string
	Chapter      string
	HelpTypes    []HelpType
	GuideMode    bool
	Engine       ai.Engine
	Document     []byte
	DocumentName string
}

// Validate checks the invariants a run requires.
func (r Request) Validate() error {
	if r.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if r.Chapter == "" {
		return fmt.Errorf("chapter is required")
	}
	for _, ht := range r.HelpTypes {
		if _, err := ParseHelpType(string(ht)); err != nil {
			return err
		}
	}
	if len(r.Document) > 0 && r.DocumentName == "" {
		return fmt.Errorf("document filename is required when a document is uploaded")
	}
	return nil
}

func (r Request) wants(ht HelpType) bool {
	for _, h := range r.HelpTypes {
		if h == ht {
			return true
		}
	}
	return false
}

// Result is the output of one pipeline run. Text fields hold agent output;
// an empty string means the agent did not run. Exactly one of
// RawSearch+CleanedSearch or DocumentText is populated, per the ingestion
// branch taken. Requested records which help types gated the run, since an
// empty field alone cannot distinguish "not requested" from "returned
// nothing".
type Result struct {
	Engine        ai.Engine  `json:"engine"`
	Requested     []HelpType `json:"requested"`
	RawSearch     string     `json:"raw_search"`
	CleanedSearch string     `json:"cleaned_search"`
	DocumentText  string     `json:"document_text"`
	Summary       string     `json:"summary"`
	Videos        string     `json:"videos"`
	Projects      string     `json:"projects"`
	Quizzes       string     `json:"quizzes"`
	Exams         string     `json:"exams"`
}
