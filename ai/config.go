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


package ai

import (
	"fmt"
	"strings"

	"github.com/poiesic/peerscout/core"
)

// Supported model providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Search depths accepted by the search provider.
const (
	SearchDepthBasic    = "basic"
	SearchDepthAdvanced = "advanced"
)

const (
	DefaultSearchBaseURL  = "https://api.tavily.com"
	DefaultMaxResults     = 8
	DefaultGroqBaseURL    = "https://api.groq.com/openai/v1"
	DefaultGroqModel      = "llama-3.3-70b-versatile"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.5-flash"
	maxSearchResultsLimit = 20
)

// Config holds configuration for the search and model providers.
type Config struct {
	// SearchAPIKey authenticates against the web search provider.
	SearchAPIKey string

	// SearchBaseURL is the root URL of the search API.
	// Example: "https://api.tavily.com"
	SearchBaseURL string

	// MaxResults bounds the number of search results requested. Default: 8
	MaxResults int

	// SearchDepth is passed through to the search provider ("basic" or "advanced").
	// Default: "advanced"
	SearchDepth string

	// ModelProvider selects the extraction backend: "groq", "openai" or "gemini".
	ModelProvider string

	// ModelAPIKey authenticates against the model provider.
	ModelAPIKey string

	// ModelBaseURL overrides the provider's API endpoint. Empty selects the
	// provider default.
	ModelBaseURL string

	// ModelName is the model identifier.
	// Example: "llama-3.3-70b-versatile", "gpt-4o-mini", "gemini-2.5-flash"
	ModelName string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithSearchAPIKey sets the search provider API key.
func WithSearchAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.SearchAPIKey = key
	}
}

// WithSearchBaseURL sets the search provider base URL.
func WithSearchBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.SearchBaseURL = url
	}
}

// WithMaxResults sets the maximum number of search results.
func WithMaxResults(n int) ConfigOption {
	return func(c *Config) {
		c.MaxResults = n
	}
}

// WithSearchDepth sets the search depth.
func WithSearchDepth(depth string) ConfigOption {
	return func(c *Config) {
		c.SearchDepth = depth
	}
}

// WithModelProvider selects the extraction backend.
func WithModelProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.ModelProvider = provider
	}
}

// WithModelAPIKey sets the model provider API key.
func WithModelAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.ModelAPIKey = key
	}
}

// WithModelBaseURL sets the model provider base URL.
func WithModelBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.ModelBaseURL = url
	}
}

// WithModelName sets the model identifier.
func WithModelName(name string) ConfigOption {
	return func(c *Config) {
		c.ModelName = name
	}
}

// DefaultConfig returns a Config targeting Tavily and Groq with no credentials.
func DefaultConfig() *Config {
	return &Config{
		SearchBaseURL: DefaultSearchBaseURL,
		MaxResults:    DefaultMaxResults,
		SearchDepth:   SearchDepthAdvanced,
		ModelProvider: ProviderGroq,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithSearchAPIKey(os.Getenv("TAVILY_API_KEY")),
//       WithModelAPIKey(os.Getenv("GROQ_API_KEY")),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims values and fills provider-specific defaults for the
// model name and base URL.
func (c *Config) Normalize() {
	c.SearchAPIKey = strings.TrimSpace(c.SearchAPIKey)
	c.ModelAPIKey = strings.TrimSpace(c.ModelAPIKey)
	c.SearchBaseURL = strings.TrimSuffix(strings.TrimSpace(c.SearchBaseURL), "/")
	c.ModelBaseURL = strings.TrimSuffix(strings.TrimSpace(c.ModelBaseURL), "/")
	c.ModelProvider = strings.ToLower(strings.TrimSpace(c.ModelProvider))
	c.SearchDepth = strings.ToLower(strings.TrimSpace(c.SearchDepth))
	c.ModelName = strings.TrimSpace(c.ModelName)

	if c.ModelProvider == "" {
		c.ModelProvider = ProviderGroq
	}
	if c.ModelName == "" {
		switch c.ModelProvider {
		case ProviderGroq:
			c.ModelName = DefaultGroqModel
		case ProviderOpenAI:
			c.ModelName = DefaultOpenAIModel
		case ProviderGemini:
			c.ModelName = DefaultGeminiModel
		}
	}
	if c.ModelBaseURL == "" && c.ModelProvider == ProviderGroq {
		c.ModelBaseURL = DefaultGroqBaseURL
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes first. All failures wrap core.ErrConfiguration.
func (c *Config) Validate() error {
	c.Normalize()

	if c.SearchAPIKey == "" {
		return fmt.Errorf("%w: ai config: SearchAPIKey is required", core.ErrConfiguration)
	}
	if c.SearchBaseURL == "" {
		return fmt.Errorf("%w: ai config: SearchBaseURL is required", core.ErrConfiguration)
	}
	if c.MaxResults < 1 || c.MaxResults > maxSearchResultsLimit {
		return fmt.Errorf("%w: ai config: MaxResults must be between 1 and %d", core.ErrConfiguration, maxSearchResultsLimit)
	}
	if c.SearchDepth != SearchDepthBasic && c.SearchDepth != SearchDepthAdvanced {
		return fmt.Errorf("%w: ai config: SearchDepth must be %q or %q", core.ErrConfiguration, SearchDepthBasic, SearchDepthAdvanced)
	}
	switch c.ModelProvider {
	case ProviderGroq, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: ai config: unknown ModelProvider %q", core.ErrConfiguration, c.ModelProvider)
	}
	if c.ModelAPIKey == "" {
		return fmt.Errorf("%w: ai config: ModelAPIKey is required", core.ErrConfiguration)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: ai config: ModelName is required", core.ErrConfiguration)
	}
	return nil
}
