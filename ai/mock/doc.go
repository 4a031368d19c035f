// Package mock provides test doubles for the ai package interfaces.
//
// Mocks record call counts and the last request, and accept a function field
// to override their default behavior:
//
//	search := mock.NewMockSearchClient()
//	search.SearchFunc = func(ctx context.Context, req ai.SearchRequest) ([]ai.RawResult, error) {
//	    return nil, errors.New("down")
//	}
//
//	// Check call counts
//	count := search.CallCount()
//
// # Default Behavior
//
//   - MockSearchClient: returns the Results field (empty by default)
//   - MockCompanyExtractor: returns one candidate per search result, named
//     after the result title
//   - MockProvider: aggregates a mock search client and extractor
//
// All mocks are safe for concurrent use.
package mock
