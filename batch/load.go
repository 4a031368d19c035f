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


package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRequests reads a batch file. Files ending in .yaml or .yml are parsed
// as YAML; anything else as JSON. Both hold a list of {company, concept}
// objects using the same field names as the HTTP API.
func LoadRequests(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON array of requests.
func ParseJSON(data []byte) ([]Request, error) {
	var reqs []Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("parse batch json: %w", err)
	}
	return reqs, nil
}

// ParseYAML decodes a YAML list of requests. The document is converted to
// JSON first so field names follow the json tags on the core types.
func ParseYAML(data []byte) ([]Request, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse batch yaml: %w", err)
	}
	if doc == nil {
		return []Request{}, nil
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("parse batch yaml: %w", err)
	}
	return ParseJSON(converted)
}
