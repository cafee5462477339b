package study

import (
	"fmt"
	"math"

	"github.com/onyx-team/studymate/internal/study/parse"
)

const (
	// MaxQuizScore is the fixed maximum a fully correct quiz yields.
	MaxQuizScore = 20.0
	// RoadmapTotalQuestions is the scale the roadmap self-assessment uses.
	RoadmapTotalQuestions = 3
)

// QuizSession is the grading state for one parsed quiz. It moves between two
// states: answering (initial) and submitted. Answers may only change while
// answering; submit grades exactly once; retake returns to answering.
type QuizSession struct {
	Questions []parse.Question `json:"questions"`
	Exercises []parse.Exercise `json:"exercises"`
	Answers   map[int]string   `json:"answers"`
	Submitted bool             `json:"submitted"`
	Score     float64          `json:"score"`
}

// NewQuizSession starts an answering-state session for a parsed quiz.
func NewQuizSession(doc parse.QuizDoc) QuizSession {
	return QuizSession{
		Questions: doc.Questions,
		Exercises: doc.Exercises,
		Answers:   make(map[int]string),
	}
}

// SelectAnswer records the chosen letter for a question. Repeated identical
// selections are idempotent; selections after submit are rejected without
// touching the answer map.
func (q *QuizSession) SelectAnswer(number int, letter string) error {
	if q.Submitted {
		return ErrQuizSubmitted
	}
	if letter != "A" && letter != "B" && letter != "C" && letter != "D" {
		return fmt.Errorf("invalid answer letter %q", letter)
	}
	if !q.hasQuestion(number) {
		return fmt.Errorf("no question numbered %d", number)
	}
	if q.Answers == nil {
		q.Answers = make(map[int]string)
	}
	q.Answers[number] = letter
	return nil
}

// Submit grades the quiz and transitions to the submitted state. Each
// question is worth MaxQuizScore / len(Questions); the total is rounded to
// one decimal place. An empty quiz scores 0.
func (q *QuizSession) Submit() (float64, error) {
	if q.Submitted {
		return 0, ErrQuizSubmitted
	}

	if len(q.Questions) > 0 {
		weight := MaxQuizScore / float64(len(q.Questions))
		var score float64
		for _, question := range q.Questions {
			if q.Answers[question.Number] == question.Correct {
				score += weight
			}
		}
		q.Score = math.Round(score*10) / 10
	}

	q.Submitted = true
	return q.Score, nil
}

// Retake clears all answers and the score and returns to the answering
// state. Valid only after submit.
func (q *QuizSession) Retake() error {
	if !q.Submitted {
		return ErrQuizNotSubmitted
	}
	q.Answers = make(map[int]string)
	q.Score = 0
	q.Submitted = false
	return nil
}

// SelfScore maps the quiz score onto the 0..RoadmapTotalQuestions scale the
// roadmap agent expects.
func (q *QuizSession) SelfScore() int {
	return int(math.Round(q.Score / MaxQuizScore * RoadmapTotalQuestions))
}

func (q *QuizSession) hasQuestion(number int) bool {
	for _, question := range q.Questions {
		if question.Number == number {
			return true
		}
	}
	return false
}
