package config

import (
	"os"
	"testing"
	"time"

	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"TAVILY_API_KEY", "TAVILY_BASE_URL", "SEARCH_MAX_RESULTS", "SEARCH_DEPTH",
	"MODEL_PROVIDER", "MODEL_NAME", "MODEL_BASE_URL",
	"GROQ_API_KEY", "GROQ_MODEL", "OPENAI_API_KEY", "GEMINI_API_KEY",
	"API_KEY", "PORT", "CORS_ORIGINS", "REQUEST_TIMEOUT",
	"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range allVars {
		// Setenv registers restoration of the original value.
		t.Setenv(v, "")
		require.NoError(t, os.Unsetenv(v))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.tavily.com", cfg.SearchBaseURL)
	assert.Equal(t, 8, cfg.SearchMaxResults)
	assert.Equal(t, "advanced", cfg.SearchDepth)
	assert.Equal(t, "groq", cfg.ModelProvider)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_GroqCompatibility(t *testing.T) {
	clearEnv(t)
	t.Setenv("TAVILY_API_KEY", "tvly-k")
	t.Setenv("GROQ_API_KEY", "gsk-k")
	t.Setenv("GROQ_MODEL", "llama-3.1-8b-instant")

	cfg, err := Load()
	require.NoError(t, err)

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "tvly-k", aiCfg.SearchAPIKey)
	assert.Equal(t, "gsk-k", aiCfg.ModelAPIKey)
	assert.Equal(t, "llama-3.1-8b-instant", aiCfg.ModelName)
	assert.Equal(t, ai.DefaultGroqBaseURL, aiCfg.ModelBaseURL)
}

func TestLoad_ProviderSelection(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-k")
	t.Setenv("GROQ_API_KEY", "gsk-k")
	t.Setenv("GROQ_MODEL", "ignored")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.ModelProvider)
	assert.Equal(t, "g-k", cfg.ModelAPIKey())
	assert.Equal(t, "", cfg.ModelNameOrDefault())

	aiCfg := cfg.AIConfig()
	aiCfg.Normalize()
	assert.Equal(t, ai.DefaultGeminiModel, aiCfg.ModelName)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())

	obs := cfg.Observability("1.2.3")
	assert.True(t, obs.Enabled)
	assert.Equal(t, 0.5, obs.SampleRatio)
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.Equal(t, "peerscout", obs.ServiceName)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "70000")
		_, err := Load()
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})

	t.Run("unparseable timeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REQUEST_TIMEOUT", "soon")
		_, err := Load()
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})
}

func TestAIConfig_MissingKeys(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.AIConfig().Validate()
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
