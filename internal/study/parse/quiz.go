package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Question is one multiple-choice quiz question.
type Question struct {
	Number   int               `json:"number"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
	Correct  string            `json:"correct"`
}

// Exercise is one open-ended exercise. It has no correctness field.
type Exercise struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// QuizDoc is the parsed output of the quiz-generator agent.
type QuizDoc struct {
	Questions []Question `json:"questions"`
	Exercises []Exercise `json:"exercises"`
}

var (
	questionPattern = regexp.MustCompile(`(?s)Q(\d+):\s*(.*?)\nA\)(.*?)\nB\)(.*?)\nC\)(.*?)\nD\)(.*?)\nCorrect answer:\s*([A-D])`)
	exerciseMarker  = regexp.MustCompile(`E(\d+):`)
)

// Quiz parses quiz-generator output. The text splits on a literal
// "[EXERCISES]" marker into a quiz part and an exercises part. Questions
// and exercises are collected in match order, not re-sorted by number, so
// out-of-order agent output is preserved as returned.
func Quiz(text string) QuizDoc {
	var doc QuizDoc

	quizPart, exercisesPart, _ := strings.Cut(text, "[EXERCISES]")
	quizPart = strings.TrimSpace(strings.ReplaceAll(quizPart, "[QUIZ]", ""))
	exercisesPart = strings.TrimSpace(exercisesPart)

	for _, m := range questionPattern.FindAllStringSubmatch(quizPart, -1) {
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		doc.Questions = append(doc.Questions, Question{
			Number:   number,
			Question: strings.TrimSpace(m[2]),
			Options: map[string]string{
				"A": strings.TrimSpace(m[3]),
				"B": strings.TrimSpace(m[4]),
				"C": strings.TrimSpace(m[5]),
				"D": strings.TrimSpace(m[6]),
			},
			Correct: strings.TrimSpace(m[7]),
		})
	}

	// Each exercise spans from its marker to the next marker or end of text.
	markers := exerciseMarker.FindAllStringSubmatchIndex(exercisesPart, -1)
	for i, m := range markers {
		number, err := strconv.Atoi(exercisesPart[m[2]:m[3]])
		if err != nil {
			continue
		}
		end := len(exercisesPart)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		doc.Exercises = append(doc.Exercises, Exercise{
			Number: number,
			Text:   strings.TrimSpace(exercisesPart[m[1]:end]),
		})
	}

	return doc
}
