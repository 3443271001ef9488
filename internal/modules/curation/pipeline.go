package curation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/langbridge-backend/internal/config"
	"github.com/yungbote/langbridge-backend/internal/llm"
	"github.com/yungbote/langbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/langbridge-backend/internal/platform/logger"
)

// MaxSearchResults caps resource-search output whatever the configuration says.
const MaxSearchResults = 15

type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int

	MaxConcurrency int
	ItemTimeout    time.Duration
	BatchDeadline  time.Duration
	SearchLimit    int
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		MaxConcurrency: cfg.Curation.MaxConcurrency,
		ItemTimeout:    cfg.Curation.ItemTimeout.Duration,
		BatchDeadline:  cfg.Curation.BatchDeadline.Duration,
		SearchLimit:    cfg.Curation.SearchLimit,
	}
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1500
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 4
	}
	if c.ItemTimeout <= 0 {
		c.ItemTimeout = 30 * time.Second
	}
	if c.BatchDeadline <= 0 {
		c.BatchDeadline = 90 * time.Second
	}
	if c.SearchLimit <= 0 || c.SearchLimit > MaxSearchResults {
		c.SearchLimit = MaxSearchResults
	}
	return c
}

// ItemState tracks one unit of work through the pipeline.
type ItemState string

const (
	StatePending     ItemState = "pending"
	StateCalling     ItemState = "calling"
	StateExtracted   ItemState = "extracted"
	StateCallFailed  ItemState = "call_failed"
	StateParseFailed ItemState = "parse_failed"
	StateNormalized  ItemState = "normalized"
)

// UpstreamError wraps a failed model call. It is absorbed by the fallback path and only ever logged.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "upstream call failed: " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ItemObserver is told about every item that leaves the model round trip.
type ItemObserver interface {
	ObserveCurationItem(stage, state string)
}

type Option func(*Pipeline)

func WithObserver(o ItemObserver) Option {
	return func(p *Pipeline) { p.observer = o }
}

// Pipeline turns requests into resource lists, preferring model output and falling back to the Synthesizer.
// A well-formed request never yields an error.
type Pipeline struct {
	cfg    Config
	engine llm.Engine
	synth  *Synthesizer
	log    *logger.Logger
	tracer trace.Tracer

	observer ItemObserver
}

func NewPipeline(cfg Config, engine llm.Engine, synth *Synthesizer, log *logger.Logger, opts ...Option) *Pipeline {
	if engine == nil {
		engine = llm.Disabled()
	}
	if synth == nil {
		synth = NewSynthesizer(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{
		cfg:    cfg.withDefaults(),
		engine: engine,
		synth:  synth,
		log:    log.With("component", "curation"),
		tracer: otel.Tracer("langbridge/curation"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Synthesizer() *Synthesizer { return p.synth }

// outcome is the result of one model round trip before normalization.
type outcome[T any] struct {
	Value T
	State ItemState
	Err   error
}

// runItem drives a single item from Pending to Extracted, CallFailed or ParseFailed.
func runItem[T any](ctx context.Context, p *Pipeline, stage, item, system, user string, parse func(string) Result[T]) outcome[T] {
	ctx, span := p.tracer.Start(ctx, "curation."+stage, trace.WithAttributes(
		attribute.String("curation.item", item),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.ItemTimeout)
	defer cancel()

	out := outcome[T]{State: StatePending}
	out.State = StateCalling
	span.AddEvent(string(out.State))
	reply, err := p.engine.GenerateText(ctx, llm.SystemUser(system, user), llm.GenerateOptions{
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	})
	if err != nil {
		out.State, out.Err = StateCallFailed, &UpstreamError{Err: err}
	} else if res := parse(reply); !res.OK() {
		out.State, out.Err = StateParseFailed, res.Err
	} else {
		out.State, out.Value = StateExtracted, res.Value
	}

	span.SetAttributes(attribute.String("curation.state", string(out.State)))
	if p.observer != nil {
		p.observer.ObserveCurationItem(stage, string(out.State))
	}
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, string(out.State))
		// llm.ErrDisabled is the normal state of a keyless deployment; keep it out of warn logs.
		logFn := p.log.Warn
		if errors.Is(out.Err, llm.ErrDisabled) {
			logFn = p.log.Debug
		}
		logFn("curation item fell back",
			"stage", stage,
			"item", item,
			"state", string(out.State),
			"request_id", ctxutil.RequestID(ctx),
			"error", out.Err,
		)
	}
	return out
}

func itemName(i int) string { return strconv.Itoa(i) }
