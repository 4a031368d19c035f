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


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/core"
	"github.com/poiesic/peerscout/schema"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// CompanyExtractor implements ai.CompanyExtractor using OpenAI-compatible chat APIs.
type CompanyExtractor struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

var _ ai.CompanyExtractor = (*CompanyExtractor)(nil)

// newCompanyExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompanyExtractor(config *ai.Config) (*CompanyExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []openai.Option{
		openai.WithToken(config.ModelAPIKey),
		openai.WithModel(config.ModelName),
	}
	if config.ModelBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.ModelBaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	return newCompanyExtractorWithModel(client, config.ModelName), nil
}

func newCompanyExtractorWithModel(client llms.Model, model string) *CompanyExtractor {
	return &CompanyExtractor{
		client: client,
		model:  model,
		logger: slog.Default().With("component", "openai-extractor", "model", model),
	}
}

// NewCompanyExtractor creates a company extractor using the provided configuration.
//
// Returns ai.CompanyExtractor interface to enforce abstraction.
func NewCompanyExtractor(config *ai.Config) (ai.CompanyExtractor, error) {
	return newCompanyExtractor(config)
}

// ExtractCompanies sends the shared extraction prompt with the search results
// as the user message and decodes the reply against the output schema.
// There is exactly one model call and no repair of malformed output.
func (e *CompanyExtractor) ExtractCompanies(ctx context.Context, req ai.ExtractionRequest) ([]core.CandidateCompany, error) {
	userContent, err := ai.BuildUserContent(req.SearchResults)
	if err != nil {
		return nil, fmt.Errorf("%w: encode search results: %w", core.ErrModelProvider, err)
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(ai.BuildSystemPrompt(req.Input)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userContent),
			},
		},
	}

	response, err := e.client.GenerateContent(ctx, content,
		llms.WithTemperature(ai.ExtractionTemperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		e.logger.Error("failed to generate content", "err", core.RedactSecrets(err.Error()))
		return nil, classifyErr(err)
	}
	if response == nil || len(response.Choices) < 1 {
		return nil, fmt.Errorf("%w: no choices returned from model", core.ErrModelProvider)
	}

	companies, err := schema.Decode([]byte(response.Choices[0].Content))
	if err != nil {
		e.logger.Warn("model output rejected", "err", err)
		return nil, err
	}

	e.logger.Debug("extracted companies",
		"results", len(req.SearchResults),
		"companies", len(companies))
	return companies, nil
}

// classifyErr wraps a client failure as a model provider error, adding
// core.ErrAuthentication when the endpoint rejected the credentials.
// langchaingo reports HTTP failures as text, so the status is matched there.
func classifyErr(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"status code: 401", "status code: 403", "invalid_api_key", "invalid api key", "unauthorized", "incorrect api key"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %w: %s", core.ErrModelProvider, core.ErrAuthentication, core.RedactSecrets(err.Error()))
		}
	}
	return fmt.Errorf("%w: %w", core.ErrModelProvider, err)
}
