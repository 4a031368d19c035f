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

import "errors"

// Pipeline failure categories. Provider and schema errors wrap one of these
// so callers can branch with errors.Is.
var (
	// ErrConfiguration indicates a missing or invalid setting, such as an API key.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication indicates a provider rejected the supplied credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSearchProvider indicates the web search call failed.
	ErrSearchProvider = errors.New("search provider error")

	// ErrModelProvider indicates the language model call failed.
	ErrModelProvider = errors.New("model provider error")

	// ErrExtractionSchema indicates the model output did not satisfy the
	// candidate company schema.
	ErrExtractionSchema = errors.New("extraction output does not match schema")

	// ErrStageOrder indicates a pipeline state transition out of order.
	ErrStageOrder = errors.New("pipeline stage out of order")
)

// Input validation errors
var (
	// ErrInvalidCompany indicates a Company failed validation.
	ErrInvalidCompany = errors.New("invalid company")

	// ErrInvalidConcept indicates a Concept failed validation.
	ErrInvalidConcept = errors.New("invalid concept")

	// ErrInvalidCandidate indicates a CandidateCompany failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate company")
)
