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

import (
	"regexp"
	"strings"
)

var (
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)
	apiKeyKVRe    = regexp.MustCompile(`(?i)\b(api[_-]?key|x-api-key)\b\s*[:=]\s*[^\s"',}]+`)
	apiKeyJSONRe  = regexp.MustCompile(`(?i)"(api[_-]?key)"\s*:\s*"[^"]*"`)
	providerKeyRe = regexp.MustCompile(`\b(tvly-|gsk_|sk-)[A-Za-z0-9_\-]{8,}`)
)

// RedactSecrets masks credentials that may appear in provider error text.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = apiKeyJSONRe.ReplaceAllString(out, `"$1":"<redacted>"`)
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	out = providerKeyRe.ReplaceAllString(out, "<redacted_key>")
	return strings.TrimSpace(out)
}
