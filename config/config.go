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


// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/netflix/go-env"
	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/core"
	"github.com/poiesic/peerscout/observability"
)

// Config is the process configuration.
type Config struct {
	SearchAPIKey     string `env:"TAVILY_API_KEY"`
	SearchBaseURL    string `env:"TAVILY_BASE_URL,default=https://api.tavily.com"`
	SearchMaxResults int    `env:"SEARCH_MAX_RESULTS,default=8"`
	SearchDepth      string `env:"SEARCH_DEPTH,default=advanced"`

	ModelProvider string `env:"MODEL_PROVIDER,default=groq"`
	ModelName     string `env:"MODEL_NAME"`
	ModelBaseURL  string `env:"MODEL_BASE_URL"`
	GroqAPIKey    string `env:"GROQ_API_KEY"`
	GroqModel     string `env:"GROQ_MODEL"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`

	APIKey         string        `env:"API_KEY"`
	Port           int           `env:"PORT,default=8080"`
	CORSOrigins    string        `env:"CORS_ORIGINS,default=*"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=60s"`

	OTelEnabled     bool    `env:"OTEL_ENABLED,default=false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=http://localhost:4318"`
	OTelServiceName string  `env:"OTEL_SERVICE_NAME,default=peerscout"`
	OTelSampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}

// Load reads the configuration from environment variables. It does not
// require credentials; use AIConfig().Validate to check those.
func Load() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse environment variables: %w", core.ErrConfiguration, err)
	}
	cfg.ModelProvider = strings.ToLower(strings.TrimSpace(cfg.ModelProvider))

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: PORT must be between 1 and 65535", core.ErrConfiguration)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("%w: REQUEST_TIMEOUT must be positive", core.ErrConfiguration)
	}
	return &cfg, nil
}

// ModelAPIKey returns the key for the selected model provider.
func (c *Config) ModelAPIKey() string {
	switch c.ModelProvider {
	case ai.ProviderOpenAI:
		return c.OpenAIAPIKey
	case ai.ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.GroqAPIKey
	}
}

// ModelNameOrDefault returns MODEL_NAME, falling back to GROQ_MODEL for the
// groq provider.
func (c *Config) ModelNameOrDefault() string {
	if c.ModelName != "" {
		return c.ModelName
	}
	if c.ModelProvider == ai.ProviderGroq || c.ModelProvider == "" {
		return c.GroqModel
	}
	return ""
}

// AIConfig converts the settings into an ai.Config. The result is not validated.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithSearchAPIKey(c.SearchAPIKey),
		ai.WithSearchBaseURL(c.SearchBaseURL),
		ai.WithMaxResults(c.SearchMaxResults),
		ai.WithSearchDepth(c.SearchDepth),
		ai.WithModelProvider(c.ModelProvider),
		ai.WithModelAPIKey(c.ModelAPIKey()),
		ai.WithModelBaseURL(c.ModelBaseURL),
		ai.WithModelName(c.ModelNameOrDefault()),
	)
}

// Observability converts the OTEL_* settings.
func (c *Config) Observability(version string) observability.Config {
	return observability.Config{
		Enabled:        c.OTelEnabled,
		Endpoint:       c.OTelEndpoint,
		ServiceName:    c.OTelServiceName,
		ServiceVersion: version,
		SampleRatio:    c.OTelSampleRatio,
	}
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
