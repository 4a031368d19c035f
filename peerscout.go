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


// Package peerscout finds companies similar to a given company and product
// concept. It searches the web with Tavily and asks a language model to
// extract candidate companies from the results.
package peerscout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/ai/gemini"
	"github.com/poiesic/peerscout/ai/openai"
	"github.com/poiesic/peerscout/batch"
	"github.com/poiesic/peerscout/core"
	"github.com/poiesic/peerscout/pipeline"
)

// Scout owns a provider and the pipeline built on it.
type Scout struct {
	provider ai.AIProvider
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// Option configures a Scout.
type Option func(*scoutOptions)

type scoutOptions struct {
	provider     ai.AIProvider
	pipelineOpts []pipeline.Option
	logger       *slog.Logger
}

// WithProvider supplies the AI provider instead of building one from the
// config. The Scout takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *scoutOptions) {
		o.provider = provider
	}
}

// WithPipelineOptions appends options applied when building the pipeline.
// They run after the config-derived result limit and search depth.
func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(o *scoutOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithLogger sets the logger for the Scout and its pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(o *scoutOptions) {
		o.logger = logger
	}
}

// New creates a Scout. A nil cfg means ai.DefaultConfig(), which only works
// together with WithProvider since it carries no credentials.
func New(cfg *ai.Config, opts ...Option) (*Scout, error) {
	options := &scoutOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if cfg == nil {
		cfg = ai.DefaultConfig()
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = newProvider(cfg)
		if err != nil {
			return nil, err
		}
	} else {
		cfg.Normalize()
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(options.logger),
		pipeline.WithMaxResults(cfg.MaxResults),
		pipeline.WithSearchDepth(cfg.SearchDepth),
	}
	pipelineOpts = append(pipelineOpts, options.pipelineOpts...)

	p, err := pipeline.New(provider.SearchClient(), provider.CompanyExtractor(), pipelineOpts...)
	if err != nil {
		if cerr := provider.Close(); cerr != nil {
			options.logger.Error("error closing AI provider", "err", cerr)
		}
		return nil, err
	}

	return &Scout{
		provider: provider,
		pipeline: p,
		logger:   options.logger,
	}, nil
}

func newProvider(cfg *ai.Config) (ai.AIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.ModelProvider {
	case ai.ProviderGroq, ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	case ai.ProviderGemini:
		return gemini.NewProvider(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("%w: unknown model provider %q", core.ErrConfiguration, cfg.ModelProvider)
	}
}

// Find returns candidate companies similar to company in concept's industries.
func (s *Scout) Find(ctx context.Context, company core.Company, concept core.Concept) ([]core.CandidateCompany, error) {
	return s.pipeline.Run(ctx, company, concept)
}

// Invoke runs one invocation and returns its final state, including the
// normalized search results.
func (s *Scout) Invoke(ctx context.Context, company core.Company, concept core.Concept) (*core.PipelineState, error) {
	return s.pipeline.Invoke(ctx, company, concept)
}

// Batch runs every request on a worker pool. Results are in request order.
func (s *Scout) Batch(ctx context.Context, requests []batch.Request, opts ...batch.Option) ([]batch.Result, error) {
	opts = append([]batch.Option{batch.WithLogger(s.logger)}, opts...)
	runner, err := batch.New(s.pipeline, opts...)
	if err != nil {
		return nil, err
	}
	defer runner.Release()
	return runner.Run(ctx, requests)
}

// Pipeline returns the underlying pipeline.
func (s *Scout) Pipeline() *pipeline.Pipeline {
	return s.pipeline
}

// Close releases the provider.
func (s *Scout) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}
