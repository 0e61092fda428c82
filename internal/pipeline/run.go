// Package pipeline provides the high-level orchestration for deliverable
// generation: load a task and its sources, optionally aggregate more, rank,
// detect the format, generate, render and persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/aggregate"
	"github.com/jonathan/research-analyst/internal/deliverables"
	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/llm"
	"github.com/jonathan/research-analyst/internal/pipeline/steps"
	"github.com/jonathan/research-analyst/internal/ranking"
	"github.com/jonathan/research-analyst/internal/rendering"
	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/types"
)

// MethodEnhanced is the generation method reported for the template engine
// path with source aggregation.
const MethodEnhanced = "enhanced_engine"

// TaskSourceLimit is the number of ranked source IDs written back to a task.
const TaskSourceLimit = 10

// ErrTaskNotFound is returned when the requested task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds the parameters of a single run.
type Options struct {
	TaskID            string
	FormatType        string // Overrides format detection when set
	UseLLM            bool
	UseEnhancedEngine bool
	OnProgress        ProgressCallback
}

// Result is the outcome of a run.
type Result struct {
	Deliverable      types.Deliverable `json:"deliverable"`
	Content          string            `json:"content"`
	FormatType       string            `json:"format_type"`
	GenerationMethod string            `json:"generation_method"`
}

// Pipeline wires the components a run needs. Aggregator and LLM are
// optional.
type Pipeline struct {
	Store      store.Store
	Ranker     *ranking.Ranker
	Engine     *deliverables.Engine
	Aggregator *aggregate.Aggregator
	LLM        *deliverables.LLMGenerator
	Logger     *zap.Logger
	Now        func() time.Time
}

// New creates a Pipeline. A nil logger is replaced by a no-op logger.
func New(st store.Store, ranker *ranking.Ranker, engine *deliverables.Engine, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ranker == nil {
		ranker = ranking.NewRanker(ranking.DefaultRecency())
	}
	return &Pipeline{Store: st, Ranker: ranker, Engine: engine, Logger: logger, Now: time.Now}
}

// run tracks completed steps for a single invocation.
type run struct {
	p         *Pipeline
	opts      Options
	completed map[string]bool
}

func (r *run) start(step string) error {
	if err := steps.ValidateDependencies(r.completed, step); err != nil {
		return fmt.Errorf("pipeline out of order: %w", err)
	}
	return nil
}

func (r *run) done(step, message string, content any) {
	r.completed[step] = true
	r.p.Logger.Debug("pipeline step finished",
		zap.String("step", step),
		zap.String("task_id", r.opts.TaskID))
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
			Content:  content,
		})
	}
}

// Run generates and stores a deliverable for opts.TaskID.
//
// With UseLLM the deliverable is drafted by the language model from the
// sources assigned to the task, through the whole prompt chain when
// UseEnhancedEngine is also set. Without an LLM generator the run falls
// back to the template engine. With only UseEnhancedEngine every stored
// source (plus aggregated ones when an Aggregator is configured) is ranked
// and the top ten IDs are written back to the task. Otherwise the task's
// own source list feeds the template engine.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	r := &run{p: p, opts: opts, completed: make(map[string]bool)}

	if err := r.start(steps.LoadInputs); err != nil {
		return nil, err
	}
	task, err := p.Store.GetTask(ctx, opts.TaskID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	all, err := p.Store.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	r.done(steps.LoadInputs, fmt.Sprintf("Loaded task %s and %d sources", task.ID, len(all)), nil)

	useLLM := opts.UseLLM
	if useLLM && p.LLM == nil {
		p.Logger.Warn("LLM generation requested but no client is configured, using template engine",
			zap.String("task_id", task.ID))
		useLLM = false
	}

	switch {
	case useLLM:
		return r.generateWithLLM(ctx, task, store.SourcesAssignedTo(all, task.ID))
	case opts.UseEnhancedEngine:
		return r.generateEnhanced(ctx, task, all)
	default:
		return r.generateBasic(ctx, task, store.SourcesByID(all, task.Sources))
	}
}

func (r *run) generateWithLLM(ctx context.Context, task *types.Task, sources []types.Source) (*Result, error) {
	p := r.p
	detection, err := r.detect(task)
	if err != nil {
		return nil, err
	}

	if err := r.start(steps.GenerateContent); err != nil {
		return nil, err
	}
	var resp *llm.Response
	if r.opts.UseEnhancedEngine {
		profile, _ := formats.Profile(p.Engine.Profiles, detection.Format)
		resp, err = p.LLM.GenerateChain(ctx, task, sources, profile)
	} else {
		resp, err = p.LLM.Generate(ctx, task, sources)
	}
	if err != nil {
		return nil, err
	}
	d := deliverables.LLMDeliverable(task, sources, r.opts.FormatType, resp, p.now())
	r.done(steps.GenerateContent, fmt.Sprintf("Drafted deliverable with %d sources", len(sources)), nil)

	if err := r.persist(ctx, &d, nil); err != nil {
		return nil, err
	}
	return &Result{
		Deliverable:      d,
		Content:          d.Content,
		FormatType:       d.FormatType,
		GenerationMethod: types.GenerationLLM,
	}, nil
}

func (r *run) generateEnhanced(ctx context.Context, task *types.Task, all []types.Source) (*Result, error) {
	p := r.p
	candidates := all
	if p.Aggregator != nil {
		if err := r.start(steps.AggregateSources); err != nil {
			return nil, err
		}
		aggregated, err := p.Aggregator.Aggregate(ctx, task, all)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate sources: %w", err)
		}
		candidates = aggregated
		r.done(steps.AggregateSources, fmt.Sprintf("Aggregated %d candidate sources", len(aggregated)), nil)
	}

	ranked, err := r.rank(task, candidates)
	if err != nil {
		return nil, err
	}

	res, err := r.generateTemplate(task, ranked, MethodEnhanced)
	if err != nil {
		return nil, err
	}

	if err := r.storeNewSources(ctx, all, ranked); err != nil {
		return nil, err
	}
	task.Sources = topIDs(ranked, TaskSourceLimit)
	if err := r.persist(ctx, &res.Deliverable, task); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *run) generateBasic(ctx context.Context, task *types.Task, sources []types.Source) (*Result, error) {
	res, err := r.generateTemplate(task, sources, types.GenerationBasic)
	if err != nil {
		return nil, err
	}
	res.Deliverable.Metadata.GenerationMethod = types.GenerationBasic
	if err := r.persist(ctx, &res.Deliverable, nil); err != nil {
		return nil, err
	}
	return res, nil
}

// generateTemplate runs the engine and the renderer over sources.
func (r *run) generateTemplate(task *types.Task, sources []types.Source, method string) (*Result, error) {
	p := r.p
	if _, err := r.detect(task); err != nil {
		return nil, err
	}

	if err := r.start(steps.GenerateContent); err != nil {
		return nil, err
	}
	d := p.Engine.Generate(task, sources, r.opts.FormatType)
	r.done(steps.GenerateContent, fmt.Sprintf("Generated %s sections", d.FormatType), d.Sections)

	if err := r.start(steps.RenderDeliverable); err != nil {
		return nil, err
	}
	content, err := rendering.Render(&d, task, sources, p.now())
	if err != nil {
		return nil, fmt.Errorf("failed to render deliverable: %w", err)
	}
	d.Content = content
	r.done(steps.RenderDeliverable, "Rendered deliverable", nil)

	return &Result{
		Deliverable:      d,
		Content:          content,
		FormatType:       d.FormatType,
		GenerationMethod: method,
	}, nil
}

func (r *run) rank(task *types.Task, sources []types.Source) ([]types.Source, error) {
	if err := r.start(steps.RankSources); err != nil {
		return nil, err
	}
	ranked := r.p.Ranker.Rank(task, sources)
	r.done(steps.RankSources, fmt.Sprintf("Ranked %d sources", len(ranked)), topIDs(ranked, TaskSourceLimit))
	return ranked, nil
}

func (r *run) detect(task *types.Task) (types.FormatDetection, error) {
	if err := r.start(steps.DetectFormat); err != nil {
		return types.FormatDetection{}, err
	}
	detection := r.p.Engine.Classifier.Detect(task, r.opts.FormatType)
	r.done(steps.DetectFormat,
		fmt.Sprintf("Detected %s (confidence %.2f)", detection.Format, detection.Confidence),
		detection)
	return detection, nil
}

// storeNewSources saves ranked sources that are not yet in the store.
func (r *run) storeNewSources(ctx context.Context, existing, ranked []types.Source) error {
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[s.ID] = true
	}
	for _, s := range ranked {
		if known[s.ID] {
			continue
		}
		if err := r.p.Store.SaveSource(ctx, s); err != nil {
			return fmt.Errorf("failed to save source %s: %w", s.ID, err)
		}
	}
	return nil
}

// persist saves the deliverable and, when task is non-nil, the task.
func (r *run) persist(ctx context.Context, d *types.Deliverable, task *types.Task) error {
	if err := r.start(steps.PersistResults); err != nil {
		return err
	}
	if err := r.p.Store.SaveDeliverable(ctx, *d); err != nil {
		return fmt.Errorf("failed to save deliverable: %w", err)
	}
	if task != nil {
		task.LastUpdated = types.FormatTimestamp(r.p.now())
		if err := r.p.Store.SaveTask(ctx, *task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
	}
	r.done(steps.PersistResults, fmt.Sprintf("Saved %s", d.ID), nil)
	return nil
}

func topIDs(sources []types.Source, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < len(sources) && i < n; i++ {
		ids = append(ids, sources[i].ID)
	}
	return ids
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
