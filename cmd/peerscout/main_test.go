package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/peerscout/batch"
	"github.com/poiesic/peerscout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func findFlag(t *testing.T, flags []cli.Flag, name string) cli.Flag {
	t.Helper()
	for _, f := range flags {
		for _, n := range f.Names() {
			if n == name {
				return f
			}
		}
	}
	t.Fatalf("flag %q not found", name)
	return nil
}

func TestAppCommands(t *testing.T) {
	app := newApp()
	assert.Equal(t, "peerscout", app.Name)
	for _, name := range []string{"serve", "search", "batch"} {
		assert.NotNil(t, findCommand(t, app, name))
	}
}

func TestGlobalFlagDefaults(t *testing.T) {
	app := newApp()

	level := findFlag(t, app.Flags, "log-level").(*cli.StringFlag)
	assert.Equal(t, "info", level.Value)
	assert.Equal(t, []string{"l"}, level.Aliases)

	format := findFlag(t, app.Flags, "log-format").(*cli.StringFlag)
	assert.Equal(t, "text", format.Value)

	envFile := findFlag(t, app.Flags, "env-file").(*cli.StringFlag)
	assert.Equal(t, ".env", envFile.Value)
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "search")

	timeout := findFlag(t, cmd.Flags, "timeout").(*cli.DurationFlag)
	assert.Equal(t, 60*time.Second, timeout.Value)

	request := findFlag(t, cmd.Flags, "request").(*cli.StringFlag)
	assert.False(t, request.Required)
	assert.Empty(t, request.EnvVars)
}

func TestBatchCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "batch")

	input := findFlag(t, cmd.Flags, "input").(*cli.StringFlag)
	assert.True(t, input.Required)

	workers := findFlag(t, cmd.Flags, "workers").(*cli.IntFlag)
	assert.Equal(t, 4, workers.Value)

	rps := findFlag(t, cmd.Flags, "rate-limit-rps").(*cli.Float64Flag)
	assert.Equal(t, 0.0, rps.Value)

	interval := findFlag(t, cmd.Flags, "report-interval").(*cli.IntFlag)
	assert.Equal(t, 10, interval.Value)
}

func TestBatchCommandValidation(t *testing.T) {
	t.Run("input is required", func(t *testing.T) {
		err := newApp().Run([]string{"peerscout", "batch"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input")
	})

	t.Run("workers must be positive", func(t *testing.T) {
		err := newApp().Run([]string{"peerscout", "batch", "--input", "x.json", "--workers", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workers")
	})

	t.Run("report-interval must be positive", func(t *testing.T) {
		err := newApp().Run([]string{"peerscout", "batch", "--input", "x.json", "--report-interval", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report-interval")
	})

	t.Run("missing input file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.json")
		err := newApp().Run([]string{"peerscout", "batch", "--input", path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load batch")
	})
}

func TestSearchCommandRequiresInput(t *testing.T) {
	err := newApp().Run([]string{"peerscout", "search"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--request")
}

func TestSetupLogger(t *testing.T) {
	run := func(args ...string) error {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info"},
				&cli.StringFlag{Name: "log-format", Value: "text"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
		return app.Run(append([]string{"test"}, args...))
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, run("--log-level", level))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := run("-l", "verbose")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "verbose")
	})

	t.Run("json format", func(t *testing.T) {
		require.NoError(t, run("--log-format", "json"))
	})

	t.Run("invalid log format returns error", func(t *testing.T) {
		err := run("--log-format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("empty path is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(""))
	})

	t.Run("values are loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PEERSCOUT_TEST_VALUE=from-file\n"), 0o600))
		t.Setenv("PEERSCOUT_TEST_VALUE", "")
		require.NoError(t, os.Unsetenv("PEERSCOUT_TEST_VALUE"))

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "from-file", os.Getenv("PEERSCOUT_TEST_VALUE"))
	})
}

func TestReadSearchRequest(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}
	requestPath := write("request.json", `{
		"company": {"name": "Acme Robotics", "tags": ["robotics"]},
		"concept": {"idea": "warehouse automation", "targetIndustries": ["logistics"]}
	}`)
	companyPath := write("company.json", `{"name": "Acme Robotics"}`)
	conceptPath := write("concept.json", `{"targetIndustries": ["logistics"]}`)
	brokenPath := write("broken.json", `{"name":`)

	t.Run("combined request file", func(t *testing.T) {
		req, err := readSearchRequest(requestPath, "", "")
		require.NoError(t, err)
		assert.Equal(t, "Acme Robotics", req.Company.Name)
		assert.Equal(t, []string{"logistics"}, req.Concept.TargetIndustries)
	})

	t.Run("separate files", func(t *testing.T) {
		req, err := readSearchRequest("", companyPath, conceptPath)
		require.NoError(t, err)
		assert.Equal(t, "Acme Robotics", req.Company.Name)
		assert.Equal(t, []string{"logistics"}, req.Concept.TargetIndustries)
	})

	t.Run("both forms is an error", func(t *testing.T) {
		_, err := readSearchRequest(requestPath, companyPath, "")
		assert.Error(t, err)
	})

	t.Run("company without concept is an error", func(t *testing.T) {
		_, err := readSearchRequest("", companyPath, "")
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := readSearchRequest("", brokenPath, conceptPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	results := []batch.Result{
		{Index: 0, Companies: []core.CandidateCompany{{Name: "BetaBots", Tags: []string{}}}},
		{Index: 1, Error: "search provider error", Err: errors.New("search provider error")},
	}
	require.NoError(t, writeResults(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"name":"BetaBots"`)
	assert.JSONEq(t, `{"index":1,"error":"search provider error"}`, lines[1])
}
