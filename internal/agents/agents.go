// Package agents implements the study-pack agents: model-backed research,
// cleaning, summarization and generation steps plus document ingestion.
// The orchestrator sees them only through the Toolkit interface.
package agents

import "context"

// Toolkit is the full set of agents a pipeline run may invoke. Each agent
// returns free-form or semi-structured text; output formats consumed by
// downstream parsers are documented on the LLMToolkit methods.
type Toolkit interface {
	// Search gathers raw study material with embedded source URLs.
	Search(ctx context.Context, subject, chapter string) (string, error)
	// Clean strips noise and duplicates from raw search output.
	Clean(ctx context.Context, subject, raw string) (string, error)
	// IngestDocument extracts text from an uploaded file.
	IngestDocument(ctx context.Context, filename string, data []byte) (string, error)
	// Summarize produces structured study notes from context text.
	Summarize(ctx context.Context, content string, guideMode bool) (string, error)
	// CollectVideos returns video recommendations as "[n]\ntitle\nurl" blocks.
	CollectVideos(ctx context.Context, subject, chapter string) (string, error)
	// FindProjects returns GitHub/DockerHub project sections.
	FindProjects(ctx context.Context, subject, chapter string) (string, error)
	// GenerateQuiz returns a "[QUIZ]...[EXERCISES]..." document from a summary.
	GenerateQuiz(ctx context.Context, summary string) (string, error)
	// FindExams returns past-exam references with URLs.
	FindExams(ctx context.Context, subject, chapter string) (string, error)
	// BuildRoadmap returns a personalized study roadmap from the summary and
	// the learner's self-assessment score.
	BuildRoadmap(ctx context.Context, summary string, selfScore, totalQuestions int) (string, error)
}
