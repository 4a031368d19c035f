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


package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/peerscout/version"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "peerscout",
		Usage:   "Find companies similar to a company and product concept",
		Version: version.Current,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to :$PORT)",
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "Time allowed for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Run one similarity search and print the candidates as JSON",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "request",
						Aliases: []string{"r"},
						Usage:   "JSON file holding {company, concept}",
					},
					&cli.StringFlag{
						Name:  "company",
						Usage: "JSON file holding the company",
					},
					&cli.StringFlag{
						Name:  "concept",
						Usage: "JSON file holding the concept",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Abort the search after this long",
						Value: 60 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Indent the JSON output",
					},
				},
			},
			{
				Name:   "batch",
				Usage:  "Run every request in a JSON or YAML file and print one JSON line per request",
				Action: batchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the batch file (.json, .yaml or .yml)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent invocations",
						Value: 4,
					},
					&cli.Float64Flag{
						Name:  "rate-limit-rps",
						Usage: "Maximum invocations started per second (0 disables)",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N requests",
						Value: 10,
					},
				},
			},
		},
	}
}

// setup loads the env file and configures the default logger.
func setup(c *cli.Context) error {
	if err := loadEnvFile(c.String("env-file")); err != nil {
		return err
	}
	return setupLogger(c)
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format := strings.ToLower(c.String("log-format")); format {
	case "", "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", format)
	}
	slog.SetDefault(slog.New(handler))

	return nil
}
