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


// Package schema defines the output contract for company extraction and
// decodes model output against it. Output that does not conform is rejected
// outright; there is no repair step.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/poiesic/peerscout/core"
)

// ContainerKey is the top-level key holding the company list.
const ContainerKey = "companies"

// Optional string fields of a candidate company, in output order.
var OptionalStringFields = []string{
	"websiteUrl",
	"wikipediaUrl",
	"linkedinUrl",
	"logoUrl",
	"description",
	"industry",
}

func nullableString() *jsonschema.Schema {
	return &jsonschema.Schema{Types: []string{"string", "null"}}
}

func minLength(n int) *int { return &n }

// Companies returns a fresh copy of the extraction output schema.
func Companies() *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"name": {Type: "string", MinLength: minLength(1)},
		"tags": {
			Type:  "array",
			Items: &jsonschema.Schema{Type: "string"},
		},
		"stillInBusiness": {Types: []string{"boolean", "null"}},
	}
	for _, f := range OptionalStringFields {
		props[f] = nullableString()
	}

	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{ContainerKey},
		Properties: map[string]*jsonschema.Schema{
			ContainerKey: {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:       "object",
					Required:   []string{"name"},
					Properties: props,
				},
			},
		},
	}
}

var (
	resolveOnce sync.Once
	resolved    *jsonschema.Resolved
	resolveErr  error
	schemaJSON  string
)

func load() (*jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		s := Companies()
		resolved, resolveErr = s.Resolve(nil)
		if resolveErr != nil {
			return
		}
		var data []byte
		data, resolveErr = json.MarshalIndent(s, "", "  ")
		schemaJSON = string(data)
	})
	return resolved, resolveErr
}

// JSON returns the schema as indented JSON for inclusion in prompts.
func JSON() string {
	if _, err := load(); err != nil {
		return ""
	}
	return schemaJSON
}

// Decode parses raw model output and validates it against the schema.
// Any failure wraps core.ErrExtractionSchema and yields no companies.
// Keys outside the schema are ignored. Missing tags decode as an empty list.
func Decode(raw []byte) ([]core.CandidateCompany, error) {
	rs, err := load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrExtractionSchema, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty output", core.ErrExtractionSchema)
	}

	var instance any
	if err := json.Unmarshal(trimmed, &instance); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", core.ErrExtractionSchema, err)
	}
	if err := rs.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrExtractionSchema, err)
	}

	var out struct {
		Companies []core.CandidateCompany `json:"companies"`
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrExtractionSchema, err)
	}

	companies := make([]core.CandidateCompany, 0, len(out.Companies))
	for i := range out.Companies {
		c := out.Companies[i]
		if err := core.ValidateCandidateCompany(&c); err != nil {
			return nil, fmt.Errorf("%w: companies[%d]: %w", core.ErrExtractionSchema, i, err)
		}
		if c.Tags == nil {
			c.Tags = []string{}
		}
		companies = append(companies, c)
	}
	return companies, nil
}
