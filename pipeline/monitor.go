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
	"log/slog"

	"github.com/poiesic/peerscout/core"
)

// Monitor provides hooks to observe a pipeline invocation.
// Every hook receives the invocation ID. Hooks run synchronously on the
// invoking goroutine and must be safe for concurrent use when the pipeline is.
type Monitor interface {
	Start(id string, input core.SearchQueryInput)
	Transition(id string, from, to core.Phase)
	AfterSearch(id string, query string, results []core.SearchResultItem)
	AfterExtraction(id string, companies []core.CandidateCompany)
	Finish(id string, companies []core.CandidateCompany)
	Fail(id string, phase core.Phase, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.SearchQueryInput)                   {}
func (n *noopMonitor) Transition(_ string, _, _ core.Phase)                      {}
func (n *noopMonitor) AfterSearch(_ string, _ string, _ []core.SearchResultItem) {}
func (n *noopMonitor) AfterExtraction(_ string, _ []core.CandidateCompany)       {}
func (n *noopMonitor) Finish(_ string, _ []core.CandidateCompany)                {}
func (n *noopMonitor) Fail(_ string, _ core.Phase, _ error)                      {}

// LogMonitor reports every hook to a logger at debug level, and failures at
// warn level.
type LogMonitor struct {
	logger *slog.Logger
}

var _ Monitor = (*LogMonitor)(nil)

// NewLogMonitor returns a Monitor writing to logger, or slog.Default() if nil.
func NewLogMonitor(logger *slog.Logger) *LogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMonitor{logger: logger}
}

func (m *LogMonitor) Start(id string, input core.SearchQueryInput) {
	m.logger.Debug("invocation started", "invocation", id, "company", input.Name)
}

func (m *LogMonitor) Transition(id string, from, to core.Phase) {
	m.logger.Debug("phase transition", "invocation", id, "from", from.String(), "to", to.String())
}

func (m *LogMonitor) AfterSearch(id string, query string, results []core.SearchResultItem) {
	m.logger.Debug("search complete", "invocation", id, "query", query, "results", len(results))
}

func (m *LogMonitor) AfterExtraction(id string, companies []core.CandidateCompany) {
	m.logger.Debug("extraction complete", "invocation", id, "companies", len(companies))
}

func (m *LogMonitor) Finish(id string, companies []core.CandidateCompany) {
	m.logger.Debug("invocation finished", "invocation", id, "companies", len(companies))
}

func (m *LogMonitor) Fail(id string, phase core.Phase, err error) {
	m.logger.Warn("invocation failed", "invocation", id, "phase", phase.String(), "err", err)
}
