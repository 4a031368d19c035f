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


package core

import "fmt"

// Phase is the lifecycle position of a single pipeline invocation.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseSearching
	PhaseExtracting
	PhaseDone
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseSearching:
		return "searching"
	case PhaseExtracting:
		return "extracting"
	case PhaseDone:
		return "done"
	case PhaseErrored:
		return "errored"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseErrored
}

// CanTransition reports whether moving from p to next is legal.
// Any non-terminal phase may move to PhaseErrored.
func (p Phase) CanTransition(next Phase) bool {
	if p.Terminal() {
		return false
	}
	if next == PhaseErrored {
		return true
	}
	return next == p+1
}

// PipelineState is the per-invocation aggregate. A fresh state is created
// for every invocation and never shared between invocations.
type PipelineState struct {
	ID            string
	Company       Company
	Concept       Concept
	SearchResults []SearchResultItem
	Companies     []CandidateCompany
	Phase         Phase
	Err           error

	searched bool
}

// NewPipelineState returns a state in PhaseStart holding the caller's records.
func NewPipelineState(id string, company Company, concept Concept) *PipelineState {
	return &PipelineState{
		ID:      id,
		Company: company,
		Concept: concept,
		Phase:   PhaseStart,
	}
}

// Input derives the query input from the state's records.
func (s *PipelineState) Input() SearchQueryInput {
	return NewSearchQueryInput(s.Company, s.Concept)
}

// Advance moves the state to next, rejecting illegal transitions.
func (s *PipelineState) Advance(next Phase) error {
	if !s.Phase.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrStageOrder, s.Phase, next)
	}
	s.Phase = next
	return nil
}

// ApplySearch records the search stage output. A nil slice is stored as empty.
func (s *PipelineState) ApplySearch(results []SearchResultItem) {
	if results == nil {
		results = []SearchResultItem{}
	}
	s.SearchResults = results
	s.searched = true
}

// ApplyExtraction records the extraction stage output. It fails with
// ErrStageOrder if ApplySearch has not been called on this state.
func (s *PipelineState) ApplyExtraction(companies []CandidateCompany) error {
	if !s.searched {
		return fmt.Errorf("%w: extraction applied before search", ErrStageOrder)
	}
	if companies == nil {
		companies = []CandidateCompany{}
	}
	s.Companies = companies
	return nil
}

// Fail moves the state to PhaseErrored and records err. Partial output is
// discarded.
func (s *PipelineState) Fail(err error) {
	s.Err = err
	s.Companies = nil
	if !s.Phase.Terminal() {
		s.Phase = PhaseErrored
	}
}
