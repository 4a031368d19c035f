package mock

import (
	"context"
	"sync"

	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/core"
)

// MockCompanyExtractor is a test double for ai.CompanyExtractor.
// It allows custom behavior injection via function fields.
type MockCompanyExtractor struct {
	// ExtractCompaniesFunc is called by ExtractCompanies if set.
	// If nil, one candidate is produced per search result.
	ExtractCompaniesFunc func(ctx context.Context, req ai.ExtractionRequest) ([]core.CandidateCompany, error)

	mu          sync.Mutex
	callCount   int
	lastRequest ai.ExtractionRequest
}

// NewMockCompanyExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockCompanyExtractor() *MockCompanyExtractor {
	return &MockCompanyExtractor{}
}

// ExtractCompanies records the request and returns candidates.
// Default behavior: one candidate per result with a non-empty title, in order.
func (m *MockCompanyExtractor) ExtractCompanies(ctx context.Context, req ai.ExtractionRequest) ([]core.CandidateCompany, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = req
	fn := m.ExtractCompaniesFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}

	companies := make([]core.CandidateCompany, 0, len(req.SearchResults))
	for _, r := range req.SearchResults {
		if r.Title == "" {
			continue
		}
		c := core.CandidateCompany{Name: r.Title, Tags: []string{}}
		if r.URL != "" {
			url := r.URL
			c.WebsiteURL = &url
		}
		companies = append(companies, c)
	}
	return companies, nil
}

// CallCount returns the number of times ExtractCompanies was called.
func (m *MockCompanyExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request passed to ExtractCompanies.
func (m *MockCompanyExtractor) LastRequest() ai.ExtractionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset clears the call count and custom functions.
func (m *MockCompanyExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = ai.ExtractionRequest{}
	m.ExtractCompaniesFunc = nil
}
