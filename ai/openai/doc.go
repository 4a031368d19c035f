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


// Package openai implements ai.CompanyExtractor using OpenAI-compatible chat APIs.
//
// It uses the langchaingo library and works with any endpoint that speaks
// the OpenAI chat completions protocol. Groq is the default: when the model
// provider is "groq" and no base URL is set, requests go to
// https://api.groq.com/openai/v1.
//
// Extraction runs at temperature 0 with JSON mode enabled. The reply is
// decoded with schema.Decode and rejected if it does not conform.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithSearchAPIKey(os.Getenv("TAVILY_API_KEY")),
//	    ai.WithModelAPIKey(os.Getenv("GROQ_API_KEY")),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	companies, err := provider.CompanyExtractor().ExtractCompanies(ctx, req)
package openai
