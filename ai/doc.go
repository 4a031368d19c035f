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


// Package ai provides abstractions for the external services peerscout calls:
// a web search provider and a language model used for structured extraction.
//
// # Interfaces
//
//   - SearchClient: issues one web search and returns raw provider records
//   - CompanyExtractor: turns search results into schema-valid companies
//   - AIProvider: aggregates both services for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/tavily: SearchClient backed by the Tavily search API
//   - ai/openai: CompanyExtractor for OpenAI-compatible chat APIs (Groq, OpenAI)
//   - ai/gemini: CompanyExtractor backed by Gemini structured output
//   - ai/mock: test doubles with injectable behavior and call counts
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewCompanyExtractor, tavily.NewClient, ...)
// return interface types. Mock constructors return concrete types so tests
// can inject behavior and inspect call counts:
//
//	extractor := mock.NewMockCompanyExtractor()
//	extractor.ExtractCompaniesFunc = func(...) { ... }
//	assert.Equal(t, 1, extractor.CallCount())
//
// # Prompt
//
// All extraction backends share the same instruction (BuildSystemPrompt), the
// same user content (BuildUserContent, a JSON array of search results) and
// the same temperature (ExtractionTemperature). Output is decoded with
// schema.Decode, which rejects anything that does not match the contract.
package ai
