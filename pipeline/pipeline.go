// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/poiesic/peerscout/pipeline"

// Pipeline runs the search stage followed by the extraction stage.
// It is wired once and holds no per-invocation data, so a single Pipeline
// may serve concurrent invocations.
type Pipeline struct {
	search     ai.SearchClient
	extractor  ai.CompanyExtractor
	maxResults int
	depth      string
	monitor    Monitor
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMaxResults bounds the number of search results requested.
// Default is 8.
func WithMaxResults(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return ErrInvalidMaxResults
		}
		p.maxResults = n
		return nil
	}
}

// WithSearchDepth sets the depth passed to the search provider.
// Default is "advanced".
func WithSearchDepth(depth string) Option {
	return func(p *Pipeline) error {
		p.depth = depth
		return nil
	}
}

// WithMonitor installs a Monitor. A nil monitor restores the no-op default.
func WithMonitor(m Monitor) Option {
	return func(p *Pipeline) error {
		if m == nil {
			m = &noopMonitor{}
		}
		p.monitor = m
		return nil
	}
}

// WithTracerProvider sets the provider spans are created from.
// Default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) error {
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		p.tracer = tp.Tracer(tracerName)
		return nil
	}
}

// New creates a pipeline from its two stage dependencies.
func New(search ai.SearchClient, extractor ai.CompanyExtractor, opts ...Option) (*Pipeline, error) {
	if search == nil {
		return nil, ErrSearchClientRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	p := &Pipeline{
		search:     search,
		extractor:  extractor,
		maxResults: ai.DefaultMaxResults,
		depth:      ai.SearchDepthAdvanced,
		monitor:    &noopMonitor{},
		tracer:     otel.Tracer(tracerName),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// BuildQuery renders the web search query for in.
func BuildQuery(in core.SearchQueryInput) string {
	return "companies " + ai.SimilarityCriteria(in)
}

// Run executes one invocation and returns the extracted companies.
func (p *Pipeline) Run(ctx context.Context, company core.Company, concept core.Concept) ([]core.CandidateCompany, error) {
	state, err := p.Invoke(ctx, company, concept)
	if err != nil {
		return nil, err
	}
	return state.Companies, nil
}

// Invoke executes one invocation and returns its final state. On failure the
// state is in core.PhaseErrored, carries the error, and holds no companies.
// The first error ends the invocation; nothing is retried.
func (p *Pipeline) Invoke(ctx context.Context, company core.Company, concept core.Concept) (*core.PipelineState, error) {
	state := core.NewPipelineState(uuid.NewString(), company, concept)
	input := state.Input()

	ctx, span := p.tracer.Start(ctx, "pipeline.invoke", trace.WithAttributes(
		attribute.String("invocation.id", state.ID),
		attribute.String("company.name", input.Name),
	))
	defer span.End()

	logger := p.logger.With("invocation", state.ID)
	p.monitor.Start(state.ID, input)

	fail := func(err error) (*core.PipelineState, error) {
		phase := state.Phase
		state.Fail(err)
		p.monitor.Transition(state.ID, phase, core.PhaseErrored)
		p.monitor.Fail(state.ID, phase, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("invocation failed", "phase", phase.String(), "err", err)
		return state, err
	}

	if err := core.ValidateCompany(&company); err != nil {
		return fail(err)
	}
	if err := core.ValidateConcept(&concept); err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if err := p.advance(state, core.PhaseSearching); err != nil {
		return fail(err)
	}
	if err := p.searchStage(ctx, state, input); err != nil {
		return fail(err)
	}

	if err := p.advance(state, core.PhaseExtracting); err != nil {
		return fail(err)
	}
	if err := p.extractStage(ctx, state, input); err != nil {
		return fail(err)
	}

	if err := p.advance(state, core.PhaseDone); err != nil {
		return fail(err)
	}

	span.SetAttributes(attribute.Int("companies.count", len(state.Companies)))
	p.monitor.Finish(state.ID, state.Companies)
	logger.Info("invocation complete",
		"results", len(state.SearchResults),
		"companies", len(state.Companies))
	return state, nil
}

func (p *Pipeline) advance(state *core.PipelineState, next core.Phase) error {
	from := state.Phase
	if err := state.Advance(next); err != nil {
		return err
	}
	p.monitor.Transition(state.ID, from, next)
	return nil
}

func (p *Pipeline) searchStage(ctx context.Context, state *core.PipelineState, input core.SearchQueryInput) error {
	query := BuildQuery(input)

	ctx, span := p.tracer.Start(ctx, "pipeline.search", trace.WithAttributes(
		attribute.String("search.query", query),
		attribute.Int("search.max_results", p.maxResults),
		attribute.String("search.depth", p.depth),
	))
	defer span.End()

	raw, err := p.search.Search(ctx, ai.SearchRequest{
		Query:      query,
		MaxResults: p.maxResults,
		Depth:      p.depth,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return fmt.Errorf("search stage: %w", err)
	}

	if len(raw) > p.maxResults {
		raw = raw[:p.maxResults]
	}
	results := core.NormalizeSearchResults(raw)
	state.ApplySearch(results)

	span.SetAttributes(attribute.Int("search.results", len(results)))
	p.monitor.AfterSearch(state.ID, query, results)
	return nil
}

func (p *Pipeline) extractStage(ctx context.Context, state *core.PipelineState, input core.SearchQueryInput) error {
	ctx, span := p.tracer.Start(ctx, "pipeline.extract", trace.WithAttributes(
		attribute.Int("extract.results", len(state.SearchResults)),
	))
	defer span.End()

	companies, err := p.extractor.ExtractCompanies(ctx, ai.ExtractionRequest{
		Input:         input,
		SearchResults: state.SearchResults,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return fmt.Errorf("extraction stage: %w", err)
	}
	if err := state.ApplyExtraction(companies); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("extract.companies", len(state.Companies)))
	p.monitor.AfterExtraction(state.ID, state.Companies)
	return nil
}
