package mock

import (
	"context"
	"sync"

	"github.com/poiesic/peerscout/ai"
)

// MockSearchClient is a test double for ai.SearchClient.
type MockSearchClient struct {
	// SearchFunc is called by Search if set.
	SearchFunc func(ctx context.Context, req ai.SearchRequest) ([]ai.RawResult, error)

	// Results is returned when SearchFunc is nil.
	Results []ai.RawResult

	mu          sync.Mutex
	callCount   int
	lastRequest ai.SearchRequest
}

// NewMockSearchClient creates a mock search client returning no results.
func NewMockSearchClient() *MockSearchClient {
	return &MockSearchClient{}
}

// Search records the request and returns the configured results.
func (m *MockSearchClient) Search(ctx context.Context, req ai.SearchRequest) ([]ai.RawResult, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = req
	fn := m.SearchFunc
	results := m.Results
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if results == nil {
		return []ai.RawResult{}, nil
	}
	return results, nil
}

// CallCount returns the number of times Search was called.
func (m *MockSearchClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request passed to Search.
func (m *MockSearchClient) LastRequest() ai.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset clears the call count, results and custom functions.
func (m *MockSearchClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = ai.SearchRequest{}
	m.Results = nil
	m.SearchFunc = nil
}
