package study

import (
	"context"
	"log/slog"
	"time"

	"github.com/onyx-team/studymate/internal/agents"
	"github.com/onyx-team/studymate/internal/ai"
	"github.com/onyx-team/studymate/internal/study/parse"
)

// Step identifies one stage of a pipeline run.
type Step string

const (
	StepIngest    Step = "ingest"
	StepSearch    Step = "search"
	StepClean     Step = "clean"
	StepSummarize Step = "summarize"
	StepVideos    Step = "videos"
	StepProjects  Step = "projects"
	StepQuiz      Step = "quiz"
	StepExams     Step = "exams"
	StepRoadmap   Step = "roadmap"
)

// StepState is reported to observers as a step progresses.
type StepState string

const (
	StepRunning StepState = "running"
	StepDone    StepState = "done"
	StepFailed  StepState = "failed"
)

// Observer receives step progress during a run. May be nil.
type Observer func(step Step, state StepState)

// ToolkitFactory builds the agent toolkit for a resolved provider.
type ToolkitFactory func(ai.Provider) agents.Toolkit

// Pipeline orchestrates the agent sequence for one study request: ingestion
// or search+clean, then summarization, then the independent help-type
// agents. All invocations within a run are sequential.
type Pipeline struct {
	registry    *ai.Registry
	toolkit     ToolkitFactory
	logger      *slog.Logger
	stepTimeout time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStepTimeout bounds each individual agent call.
func WithStepTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.stepTimeout = d
	}
}

// NewPipeline creates a pipeline over the given engine registry.
func NewPipeline(registry *ai.Registry, toolkit ToolkitFactory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		registry:    registry,
		toolkit:     toolkit,
		logger:      slog.Default(),
		stepTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline for one request. It fails with
// *ai.CredentialError when the selected engine has no credential and with
// *AgentError when any agent call fails; on failure no partial result is
// returned.
func (p *Pipeline) Run(ctx context.Context, req Request, observe Observer) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	engine := req.Engine
	if engine == "" {
		engine = ai.DefaultEngine
	}

	provider, err := p.registry.Resolve(engine)
	if err != nil {
		return Result{}, err
	}
	toolkit := p.toolkit(provider)

	result := Result{Engine: engine, Requested: req.HelpTypes}
	start := time.Now()
	p.logger.Info("pipeline run started",
		"subject", req.Subject,
		"chapter", req.Chapter,
		"engine", engine,
		"uploaded", len(req.Document) > 0,
	)

	// Ingestion branch: an uploaded document replaces the search+clean pair.
	var studyContext string
	if len(req.Document) > 0 {
		result.DocumentText, err = p.runStep(ctx, StepIngest, observe, func(ctx context.Context) (string, error) {
			return toolkit.IngestDocument(ctx, req.DocumentName, req.Document)
		})
		if err != nil {
			return Result{}, err
		}
		studyContext = result.DocumentText
	} else {
		result.RawSearch, err = p.runStep(ctx, StepSearch, observe, func(ctx context.Context) (string, error) {
			return toolkit.Search(ctx, req.Subject, req.Chapter)
		})
		if err != nil {
			return Result{}, err
		}
		result.CleanedSearch, err = p.runStep(ctx, StepClean, observe, func(ctx context.Context) (string, error) {
			return toolkit.Clean(ctx, req.Subject, result.RawSearch)
		})
		if err != nil {
			return Result{}, err
		}
		studyContext = result.CleanedSearch
	}

	// Summarization always runs; the help-type agents depend on it or on the
	// subject/chapter pair only.
	result.Summary, err = p.runStep(ctx, StepSummarize, observe, func(ctx context.Context) (string, error) {
		return toolkit.Summarize(ctx, studyContext, req.GuideMode)
	})
	if err != nil {
		return Result{}, err
	}

	if req.wants(HelpVideos) {
		result.Videos, err = p.runStep(ctx, StepVideos, observe, func(ctx context.Context) (string, error) {
			return toolkit.CollectVideos(ctx, req.Subject, req.Chapter)
		})
		if err != nil {
			return Result{}, err
		}
		if _, dropped := parse.Videos(result.Videos); dropped > 0 {
			p.logger.Debug("malformed video entries dropped", "count", dropped)
		}
	}

	if req.wants(HelpProjects) {
		result.Projects, err = p.runStep(ctx, StepProjects, observe, func(ctx context.Context) (string, error) {
			return toolkit.FindProjects(ctx, req.Subject, req.Chapter)
		})
		if err != nil {
			return Result{}, err
		}
		if _, dropped := parse.Projects(result.Projects); dropped > 0 {
			p.logger.Debug("malformed project entries dropped", "count", dropped)
		}
	}

	if req.wants(HelpQuizzes) {
		result.Quizzes, err = p.runStep(ctx, StepQuiz, observe, func(ctx context.Context) (string, error) {
			return toolkit.GenerateQuiz(ctx, result.Summary)
		})
		if err != nil {
			return Result{}, err
		}
	}

	if req.wants(HelpExams) {
		result.Exams, err = p.runStep(ctx, StepExams, observe, func(ctx context.Context) (string, error) {
			return toolkit.FindExams(ctx, req.Subject, req.Chapter)
		})
		if err != nil {
			return Result{}, err
		}
	}

	p.logger.Info("pipeline run finished", "duration", time.Since(start))
	return result, nil
}

// Roadmap invokes the roadmap agent from a stored summary and the learner's
// quiz self-assessment.
func (p *Pipeline) Roadmap(ctx context.Context, engine ai.Engine, summary string, selfScore int) (string, error) {
	if engine == "" {
		engine = ai.DefaultEngine
	}
	provider, err := p.registry.Resolve(engine)
	if err != nil {
		return "", err
	}
	toolkit := p.toolkit(provider)

	return p.runStep(ctx, StepRoadmap, nil, func(ctx context.Context) (string, error) {
		return toolkit.BuildRoadmap(ctx, summary, selfScore, RoadmapTotalQuestions)
	})
}

func (p *Pipeline) runStep(ctx context.Context, step Step, observe Observer, fn func(context.Context) (string, error)) (string, error) {
	if observe != nil {
		observe(step, StepRunning)
	}

	stepCtx := ctx
	if p.stepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, p.stepTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := fn(stepCtx)
	if err != nil {
		if observe != nil {
			observe(step, StepFailed)
		}
		p.logger.Error("pipeline step failed", "step", step, "error", err)
		return "", &AgentError{Step: step, Err: err}
	}

	if observe != nil {
		observe(step, StepDone)
	}
	p.logger.Debug("pipeline step finished", "step", step, "duration", time.Since(start))
	return out, nil
}
