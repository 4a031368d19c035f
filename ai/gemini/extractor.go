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


// Package gemini implements ai.CompanyExtractor using Gemini structured output.
//
// The output contract is sent both in the system instruction and as a native
// response schema; the reply is still decoded with schema.Decode so every
// backend enforces the same rules.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/ai/tavily"
	"github.com/poiesic/peerscout/core"
	"github.com/poiesic/peerscout/schema"
	"google.golang.org/genai"
)

// CompanyExtractor implements ai.CompanyExtractor with the Gemini API.
type CompanyExtractor struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ ai.CompanyExtractor = (*CompanyExtractor)(nil)

func newCompanyExtractor(ctx context.Context, config *ai.Config) (*CompanyExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cc := &genai.ClientConfig{
		APIKey:  config.ModelAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.ModelBaseURL != "" {
		cc.HTTPOptions.BaseURL = config.ModelBaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	return &CompanyExtractor{
		client: client,
		model:  config.ModelName,
		logger: slog.Default().With("component", "gemini-extractor", "model", config.ModelName),
	}, nil
}

// NewCompanyExtractor creates a Gemini-backed extractor.
func NewCompanyExtractor(ctx context.Context, config *ai.Config) (ai.CompanyExtractor, error) {
	return newCompanyExtractor(ctx, config)
}

var nullable = genai.Ptr(true)

func nullableString() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Nullable: nullable}
}

// responseSchema mirrors schema.Companies in Gemini's schema dialect.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		schema.ContainerKey: {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":            {Type: genai.TypeString, MinLength: genai.Ptr[int64](1)},
					"websiteUrl":      nullableString(),
					"wikipediaUrl":    nullableString(),
					"linkedinUrl":     nullableString(),
					"logoUrl":         nullableString(),
					"description":     nullableString(),
					"industry":        nullableString(),
					"tags":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"stillInBusiness": {Type: genai.TypeBoolean, Nullable: nullable},
				},
				Required: []string{"name"},
				PropertyOrdering: []string{
					"name", "websiteUrl", "wikipediaUrl", "linkedinUrl", "logoUrl",
					"description", "industry", "tags", "stillInBusiness",
				},
			},
		},
	},
	Required: []string{schema.ContainerKey},
}

// ExtractCompanies issues one GenerateContent call and decodes the reply.
func (e *CompanyExtractor) ExtractCompanies(ctx context.Context, req ai.ExtractionRequest) ([]core.CandidateCompany, error) {
	userContent, err := ai.BuildUserContent(req.SearchResults)
	if err != nil {
		return nil, fmt.Errorf("%w: encode search results: %w", core.ErrModelProvider, err)
	}

	resp, err := e.client.Models.GenerateContent(
		ctx,
		e.model,
		genai.Text(userContent),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(ai.BuildSystemPrompt(req.Input), genai.RoleUser),
			Temperature:       genai.Ptr[float32](ai.ExtractionTemperature),
			CandidateCount:    1,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    responseSchema,
		},
	)
	if err != nil {
		e.logger.Error("failed to generate content", "err", core.RedactSecrets(err.Error()))
		return nil, classifyErr(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response from model", core.ErrModelProvider)
	}

	companies, err := schema.Decode([]byte(text))
	if err != nil {
		e.logger.Warn("model output rejected", "err", err)
		return nil, err
	}
	e.logger.Debug("extracted companies",
		"results", len(req.SearchResults),
		"companies", len(companies))
	return companies, nil
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %w: %w", core.ErrModelProvider, core.ErrAuthentication, err)
		}
	}
	return fmt.Errorf("%w: %w", core.ErrModelProvider, err)
}

// Provider implements ai.AIProvider with Tavily search and Gemini extraction.
type Provider struct {
	search    ai.SearchClient
	extractor *CompanyExtractor
	logger    *slog.Logger
}

// NewProvider creates a provider for the "gemini" model provider.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	search, err := tavily.NewClient(config)
	if err != nil {
		return nil, err
	}
	extractor, err := newCompanyExtractor(ctx, config)
	if err != nil {
		return nil, err
	}
	return &Provider{
		search:    search,
		extractor: extractor,
		logger:    slog.Default().With("component", "gemini-provider"),
	}, nil
}

func (p *Provider) SearchClient() ai.SearchClient         { return p.search }
func (p *Provider) CompanyExtractor() ai.CompanyExtractor { return p.extractor }

// Close is a no-op; the genai client holds no resources that need releasing.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return nil
}
