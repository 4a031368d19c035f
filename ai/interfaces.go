package ai

import (
	"context"

	"github.com/poiesic/peerscout/core"
)

// RawResult is one search hit exactly as the provider returned it.
type RawResult = map[string]any

// SearchRequest describes a single web search.
type SearchRequest struct {
	Query      string
	MaxResults int
	Depth      string
}

// SearchClient performs web searches.
// Implementations must be thread-safe for concurrent use.
type SearchClient interface {
	// Search issues one query and returns the provider's records in relevance
	// order. Zero hits is an empty slice, not an error.
	// Failures wrap core.ErrSearchProvider.
	Search(ctx context.Context, req SearchRequest) ([]RawResult, error)
}

// ExtractionRequest carries the inputs to one extraction call.
type ExtractionRequest struct {
	Input         core.SearchQueryInput
	SearchResults []core.SearchResultItem
}

// CompanyExtractor turns search results into schema-valid candidate companies.
// Implementations must be thread-safe for concurrent use.
type CompanyExtractor interface {
	// ExtractCompanies asks the model for companies similar to req.Input,
	// using req.SearchResults as context. The output is validated against
	// the candidate company schema; non-conforming output fails with
	// core.ErrExtractionSchema. Provider failures wrap core.ErrModelProvider.
	ExtractCompanies(ctx context.Context, req ExtractionRequest) ([]core.CandidateCompany, error)
}

// AIProvider aggregates the search and extraction services and manages their lifecycle.
type AIProvider interface {
	// SearchClient returns the web search service.
	SearchClient() SearchClient

	// CompanyExtractor returns the extraction service.
	CompanyExtractor() CompanyExtractor

	// Close releases resources held by the provider and its services.
	Close() error
}
