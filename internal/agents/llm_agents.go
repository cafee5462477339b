package agents

import (
	"context"
	"fmt"

	"github.com/onyx-team/studymate/internal/ai"
)

// LLMToolkit implements Toolkit by prompting a single AI provider. Prompts
// pin the output formats the parsers expect.
type LLMToolkit struct {
	provider    ai.Provider
	maxTokens   int
	temperature float64
}

// LLMOption configures an LLMToolkit.
type LLMOption func(*LLMToolkit)

// WithMaxTokens caps completion length per agent call.
func WithMaxTokens(n int) LLMOption {
	return func(t *LLMToolkit) {
		t.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature for agent calls.
func WithTemperature(temp float64) LLMOption {
	return func(t *LLMToolkit) {
		t.temperature = temp
	}
}

// NewLLMToolkit creates a toolkit backed by the given provider.
func NewLLMToolkit(provider ai.Provider, opts ...LLMOption) *LLMToolkit {
	t := &LLMToolkit{
		provider:    provider,
		maxTokens:   4096,
		temperature: 0.4,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *LLMToolkit) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := t.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   t.maxTokens,
		Temperature: t.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (t *LLMToolkit) Search(ctx context.Context, subject, chapter string) (string, error) {
	system := "You are a research assistant gathering study material. " +
		"Collect everything relevant: definitions, explanations, worked examples and reference links. " +
		"Include the source URL for every external resource you mention."
	user := fmt.Sprintf("Gather comprehensive study material for the chapter %q of the subject %q.", chapter, subject)
	return t.complete(ctx, system, user)
}

func (t *LLMToolkit) Clean(ctx context.Context, subject, raw string) (string, error) {
	system := "You clean raw research output. Remove duplicates, advertising, navigation fragments " +
		"and anything unrelated to the subject. Keep all URLs that point to real resources. " +
		"Return only the cleaned text."
	user := fmt.Sprintf("Subject: %s\n\nRaw material:\n%s", subject, raw)
	return t.complete(ctx, system, user)
}

func (t *LLMToolkit) Summarize(ctx context.Context, content string, guideMode bool) (string, error) {
	system := "You write structured study notes: headed sections, key definitions, " +
		"core formulas and short worked examples."
	if guideMode {
		system = "You write step-by-step study guides for beginners: assume no prior knowledge, " +
			"explain each concept before using it, and order sections from fundamentals upward."
	}
	user := "Summarize the following material into study notes:\n\n" + content
	return t.complete(ctx, system, user)
}

func (t *LLMToolkit) CollectVideos(ctx context.Context, subject, chapter string) (string, error) {
	system := "You recommend educational videos. Output each entry in exactly this format, " +
		"with nothing before the first marker:\n" +
		"[1]\n<video title>\n<video url>\n[2]\n<video title>\n<video url>\n" +
		"Prefer YouTube links. Do not add commentary."
	user := fmt.Sprintf("Recommend up to 5 videos for the chapter %q of the subject %q.", chapter, subject)
	return t.complete(ctx, system, user)
}

func (t *LLMToolkit) FindProjects(ctx context.Context, subject, chapter string) (string, error) {
	system := "You find hands-on projects. Output two sections separated by a line of exactly 21 dashes " +
		"(---------------------). The first section is headed 'GitHub Projects' and lists GitHub repositories, " +
		"the second is headed 'DockerHub Images' and lists DockerHub images. Each entry uses exactly this format:\n" +
		"[1]\n<project title>\nURL: <project url>\nNote: <one-line description>\n" +
		"Do not add commentary."
	user := fmt.Sprintf("Find practice projects for the chapter %q of the subject %q.", chapter, subject)
	return t.complete(ctx, system, user)
}

func (t *LLMToolkit) GenerateQuiz(ctx context.Context, summary string) (string, error) {
	system := "You generate quizzes from study notes. Output exactly this format and nothing else:\n" +
		"[QUIZ]\n" +
		"Q1: <question text>\n" +
		"A)<option>\nB)<option>\nC)<option>\nD)<option>\n" +
		"Correct answer: <A, B, C or D>\n" +
		"(repeat for each question)\n" +
		"[EXERCISES]\n" +
		"E1: <open-ended exercise>\n" +
		"(repeat for each exercise)\n" +
		"Produce 5 questions and 3 exercises."
	user := "Generate a quiz from these study notes:\n\n" + summary
	return t.complete(ctx, system, user)
}

func (t *LLMToolkit) FindExams(ctx context.Context, subject, chapter string) (string, error) {
	system := "You locate past exams and exam-style problem sets. For each resource give a short " +
		"description and its URL."
	user := fmt.Sprintf("Find past exams covering the chapter %q of the subject %q.", chapter, subject)
	return t.complete(ctx, system, user)
}

func (t *LLMToolkit) BuildRoadmap(ctx context.Context, summary string, selfScore, totalQuestions int) (string, error) {
	system := "You are a study coach. Given study notes and the learner's quiz self-assessment, " +
		"produce a personalized study roadmap: what to revisit, what to practice and in which order."
	user := fmt.Sprintf("Self-assessment: %d out of %d.\n\nStudy notes:\n%s", selfScore, totalQuestions, summary)
	return t.complete(ctx, system, user)
}
