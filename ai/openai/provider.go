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
	"log/slog"

	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/ai/tavily"
)

// Provider implements ai.AIProvider with Tavily search and an
// OpenAI-compatible extraction model.
type Provider struct {
	config    *ai.Config
	search    ai.SearchClient
	extractor *CompanyExtractor
	logger    *slog.Logger
}

// NewProvider creates a provider for the "groq" and "openai" model providers.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	search, err := tavily.NewClient(config)
	if err != nil {
		return nil, err
	}

	extractor, err := newCompanyExtractor(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		search:    search,
		extractor: extractor,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// SearchClient returns the web search service.
func (p *Provider) SearchClient() ai.SearchClient {
	return p.search
}

// CompanyExtractor returns the extraction service.
func (p *Provider) CompanyExtractor() ai.CompanyExtractor {
	return p.extractor
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
