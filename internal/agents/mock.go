package agents

import "context"

// MockToolkit is a test double. Unset function fields return the
// corresponding Default* value with a nil error.
type MockToolkit struct {
	SearchFn        func(ctx context.Context, subject, chapter string) (string, error)
	CleanFn         func(ctx context.Context, subject, raw string) (string, error)
	IngestFn        func(ctx context.Context, filename string, data []byte) (string, error)
	SummarizeFn     func(ctx context.Context, content string, guideMode bool) (string, error)
	CollectVideosFn func(ctx context.Context, subject, chapter string) (string, error)
	FindProjectsFn  func(ctx context.Context, subject, chapter string) (string, error)
	GenerateQuizFn  func(ctx context.Context, summary string) (string, error)
	FindExamsFn     func(ctx context.Context, subject, chapter string) (string, error)
	BuildRoadmapFn  func(ctx context.Context, summary string, selfScore, totalQuestions int) (string, error)

	DefaultSearch   string
	DefaultClean    string
	DefaultIngest   string
	DefaultSummary  string
	DefaultVideos   string
	DefaultProjects string
	DefaultQuiz     string
	DefaultExams    string
	DefaultRoadmap  string
}

func (m *MockToolkit) Search(ctx context.Context, subject, chapter string) (string, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, subject, chapter)
	}
	return m.DefaultSearch, nil
}

func (m *MockToolkit) Clean(ctx context.Context, subject, raw string) (string, error) {
	if m.CleanFn != nil {
		return m.CleanFn(ctx, subject, raw)
	}
	return m.DefaultClean, nil
}

func (m *MockToolkit) IngestDocument(ctx context.Context, filename string, data []byte) (string, error) {
	if m.IngestFn != nil {
		return m.IngestFn(ctx, filename, data)
	}
	return m.DefaultIngest, nil
}

func (m *MockToolkit) Summarize(ctx context.Context, content string, guideMode bool) (string, error) {
	if m.SummarizeFn != nil {
		return m.SummarizeFn(ctx, content, guideMode)
	}
	return m.DefaultSummary, nil
}

func (m *MockToolkit) CollectVideos(ctx context.Context, subject, chapter string) (string, error) {
	if m.CollectVideosFn != nil {
		return m.CollectVideosFn(ctx, subject, chapter)
	}
	return m.DefaultVideos, nil
}

func (m *MockToolkit) FindProjects(ctx context.Context, subject, chapter string) (string, error) {
	if m.FindProjectsFn != nil {
		return m.FindProjectsFn(ctx, subject, chapter)
	}
	return m.DefaultProjects, nil
}

func (m *MockToolkit) GenerateQuiz(ctx context.Context, summary string) (string, error) {
	if m.GenerateQuizFn != nil {
		return m.GenerateQuizFn(ctx, summary)
	}
	return m.DefaultQuiz, nil
}

func (m *MockToolkit) FindExams(ctx context.Context, subject, chapter string) (string, error) {
	if m.FindExamsFn != nil {
		return m.FindExamsFn(ctx, subject, chapter)
	}
	return m.DefaultExams, nil
}

func (m *MockToolkit) BuildRoadmap(ctx context.Context, summary string, selfScore, totalQuestions int) (string, error) {
	if m.BuildRoadmapFn != nil {
		return m.BuildRoadmapFn(ctx, summary, selfScore, totalQuestions)
	}
	return m.DefaultRoadmap, nil
}
