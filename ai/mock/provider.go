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


package mock

import "github.com/poiesic/peerscout/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock search client and extractor instances.
type MockProvider struct {
	search    *MockSearchClient
	extractor *MockCompanyExtractor
	closed    bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockSearchClient()/GetMockExtractor() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		search:    NewMockSearchClient(),
		extractor: NewMockCompanyExtractor(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(search *MockSearchClient, extractor *MockCompanyExtractor) *MockProvider {
	return &MockProvider{
		search:    search,
		extractor: extractor,
	}
}

// SearchClient returns the mock search client.
func (p *MockProvider) SearchClient() ai.SearchClient {
	return p.search
}

// CompanyExtractor returns the mock extractor.
func (p *MockProvider) CompanyExtractor() ai.CompanyExtractor {
	return p.extractor
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockSearchClient returns the underlying mock search client for test assertions.
func (p *MockProvider) GetMockSearchClient() *MockSearchClient {
	return p.search
}

// GetMockExtractor returns the underlying mock extractor for test assertions.
func (p *MockProvider) GetMockExtractor() *MockCompanyExtractor {
	return p.extractor
}
