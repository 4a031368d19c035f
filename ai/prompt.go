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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/peerscout/core"
	"github.com/poiesic/peerscout/schema"
)

// ExtractionTemperature is the sampling temperature for every extraction call.
const ExtractionTemperature = 0.0

// RequestedCompanies is the count named in the instruction. The model is not
// held to it and the output is not truncated.
const RequestedCompanies = 5

// JoinList renders a list for inclusion in a sentence.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

// SimilarityCriteria renders the clause shared by the search query and the
// extraction instruction:
//
//	similar to {name}[ with {note}] and related to {tags} that are in the {industries} industry
//
// The note clause is omitted when the company has no personal note.
func SimilarityCriteria(in core.SearchQueryInput) string {
	var b strings.Builder
	b.WriteString("similar to ")
	b.WriteString(in.Name)
	if in.HasPersonalNote() {
		b.WriteString(" with ")
		b.WriteString(in.PersonalNote)
	}
	fmt.Fprintf(&b, " and related to %s that are in the %s industry", JoinList(in.Tags), JoinList(in.TargetIndustries))
	return b.String()
}

// BuildInstruction renders the extraction instruction sentence.
func BuildInstruction(in core.SearchQueryInput) string {
	return fmt.Sprintf("list %d companies %s", RequestedCompanies, SimilarityCriteria(in))
}

// BuildSystemPrompt returns the extraction instruction followed by the output
// contract. The schema is embedded so backends without native schema
// enforcement still see it.
func BuildSystemPrompt(in core.SearchQueryInput) string {
	return "Based on the search result provided as a whole, " + BuildInstruction(in) + ".\n\n" +
		"Respond with a single JSON object and nothing else. It must validate against this JSON Schema:\n" +
		schema.JSON() + "\n\n" +
		"Use null for any field you cannot determine. Do not wrap the JSON in markdown."
}

// BuildUserContent serializes the search results as the user message.
// An empty result set renders as "[]".
func BuildUserContent(results []core.SearchResultItem) (string, error) {
	if results == nil {
		results = []core.SearchResultItem{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
