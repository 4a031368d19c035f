package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/peerscout/ai"
	"github.com/poiesic/peerscout/ai/mock"
	"github.com/poiesic/peerscout/core"
	"github.com/poiesic/peerscout/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func acme() (core.Company, core.Concept) {
	return core.Company{Name: "Acme Robotics", Tags: []string{"robotics"}},
		core.Concept{TargetIndustries: []string{"logistics"}}
}

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *mock.MockSearchClient, *mock.MockCompanyExtractor) {
	t.Helper()
	search := mock.NewMockSearchClient()
	extractor := mock.NewMockCompanyExtractor()
	p, err := New(search, extractor, opts...)
	require.NoError(t, err)
	return p, search, extractor
}

func TestNew(t *testing.T) {
	t.Run("requires search client", func(t *testing.T) {
		_, err := New(nil, mock.NewMockCompanyExtractor())
		assert.ErrorIs(t, err, ErrSearchClientRequired)
	})

	t.Run("requires extractor", func(t *testing.T) {
		_, err := New(mock.NewMockSearchClient(), nil)
		assert.ErrorIs(t, err, ErrExtractorRequired)
	})

	t.Run("rejects non-positive max results", func(t *testing.T) {
		_, err := New(mock.NewMockSearchClient(), mock.NewMockCompanyExtractor(), WithMaxResults(0))
		assert.ErrorIs(t, err, ErrInvalidMaxResults)
	})

	t.Run("defaults", func(t *testing.T) {
		p, _, _ := newTestPipeline(t)
		assert.Equal(t, 8, p.maxResults)
		assert.Equal(t, "advanced", p.depth)
	})
}

func TestBuildQuery(t *testing.T) {
	note := "a focus on warehouse picking"
	company := core.Company{Name: "Acme Robotics", Tags: []string{"robotics", "vision"}, PersonalNote: &note}
	concept := core.Concept{TargetIndustries: []string{"logistics"}}

	assert.Equal(t,
		"companies similar to Acme Robotics with a focus on warehouse picking and related to robotics, vision that are in the logistics industry",
		BuildQuery(core.NewSearchQueryInput(company, concept)))
}

func TestRun_EndToEnd(t *testing.T) {
	p, search, extractor := newTestPipeline(t)
	search.Results = []ai.RawResult{{
		"title":          "BetaBots raises Series A",
		"content":        "BetaBots builds warehouse robots for industrial automation.",
		"url":            "https://news.example/betabots",
		"published_date": "2024-03-01",
		"score":          0.93,
	}}
	extractor.ExtractCompaniesFunc = func(ctx context.Context, req ai.ExtractionRequest) ([]core.CandidateCompany, error) {
		return schema.Decode([]byte(`{"companies":[{"name":"BetaBots","industry":"industrial automation","tags":["robotics"]}]}`))
	}

	company, concept := acme()
	companies, err := p.Run(context.Background(), company, concept)
	require.NoError(t, err)

	data, err := json.Marshal(companies)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"name": "BetaBots",
		"websiteUrl": null,
		"wikipediaUrl": null,
		"linkedinUrl": null,
		"logoUrl": null,
		"description": null,
		"industry": "industrial automation",
		"tags": ["robotics"],
		"stillInBusiness": null
	}]`, string(data))

	t.Run("search request", func(t *testing.T) {
		req := search.LastRequest()
		assert.Equal(t, "companies similar to Acme Robotics and related to robotics that are in the logistics industry", req.Query)
		assert.Equal(t, 8, req.MaxResults)
		assert.Equal(t, "advanced", req.Depth)
		assert.Equal(t, 1, search.CallCount())
	})

	t.Run("extractor receives normalized results", func(t *testing.T) {
		req := extractor.LastRequest()
		require.Len(t, req.SearchResults, 1)
		assert.Equal(t, core.SearchResultItem{
			Title:         "BetaBots raises Series A",
			Content:       "BetaBots builds warehouse robots for industrial automation.",
			URL:           "https://news.example/betabots",
			PublishedDate: "2024-03-01",
		}, req.SearchResults[0])
		assert.Equal(t, "Acme Robotics", req.Input.Name)
		assert.Equal(t, 1, extractor.CallCount())
	})
}

func TestRun_ZeroResults(t *testing.T) {
	p, _, extractor := newTestPipeline(t)

	company, concept := acme()
	companies, err := p.Run(context.Background(), company, concept)
	require.NoError(t, err)
	assert.Empty(t, companies)

	req := extractor.LastRequest()
	require.NotNil(t, req.SearchResults)
	assert.Empty(t, req.SearchResults)
	assert.Equal(t, 1, extractor.CallCount())
}

func TestRun_MissingResultFields(t *testing.T) {
	p, search, extractor := newTestPipeline(t)
	search.Results = []ai.RawResult{{"title": "Only a title"}, {}}

	company, concept := acme()
	_, err := p.Run(context.Background(), company, concept)
	require.NoError(t, err)

	got := extractor.LastRequest().SearchResults
	require.Len(t, got, 2)
	assert.Equal(t, core.SearchResultItem{Title: "Only a title"}, got[0])
	assert.Equal(t, core.SearchResultItem{}, got[1])
}

func TestRun_TruncatesToMaxResults(t *testing.T) {
	p, search, extractor := newTestPipeline(t, WithMaxResults(2))
	for i := 0; i < 5; i++ {
		search.Results = append(search.Results, ai.RawResult{"title": fmt.Sprintf("r%d", i)})
	}

	company, concept := acme()
	_, err := p.Run(context.Background(), company, concept)
	require.NoError(t, err)
	assert.Len(t, extractor.LastRequest().SearchResults, 2)
	assert.Equal(t, 2, search.LastRequest().MaxResults)
}

func TestRun_SearchFailure(t *testing.T) {
	p, search, extractor := newTestPipeline(t)
	search.SearchFunc = func(ctx context.Context, req ai.SearchRequest) ([]ai.RawResult, error) {
		return nil, fmt.Errorf("%w: connection refused", core.ErrSearchProvider)
	}

	company, concept := acme()
	state, err := p.Invoke(context.Background(), company, concept)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSearchProvider)
	assert.Equal(t, 0, extractor.CallCount(), "extraction must not run after a search failure")
	assert.Equal(t, core.PhaseErrored, state.Phase)
	assert.Nil(t, state.Companies)
	assert.Equal(t, err, state.Err)
}

func TestRun_ExtractionSchemaFailure(t *testing.T) {
	p, _, extractor := newTestPipeline(t)
	extractor.ExtractCompaniesFunc = func(ctx context.Context, req ai.ExtractionRequest) ([]core.CandidateCompany, error) {
		return schema.Decode([]byte(`{"companies":[{"industry":"robots"}]}`))
	}

	company, concept := acme()
	companies, err := p.Run(context.Background(), company, concept)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtractionSchema)
	assert.Nil(t, companies)
	assert.Equal(t, 1, extractor.CallCount())
}

func TestRun_ModelFailure(t *testing.T) {
	p, _, extractor := newTestPipeline(t)
	extractor.ExtractCompaniesFunc = func(ctx context.Context, req ai.ExtractionRequest) ([]core.CandidateCompany, error) {
		return nil, fmt.Errorf("%w: %w", core.ErrModelProvider, core.ErrAuthentication)
	}

	company, concept := acme()
	state, err := p.Invoke(context.Background(), company, concept)
	assert.ErrorIs(t, err, core.ErrModelProvider)
	assert.ErrorIs(t, err, core.ErrAuthentication)
	assert.Equal(t, core.PhaseErrored, state.Phase)
	assert.NotNil(t, state.SearchResults)
}

func TestRun_Idempotent(t *testing.T) {
	p, search, _ := newTestPipeline(t)
	search.Results = []ai.RawResult{{"title": "BetaBots", "url": "https://b"}, {"title": "Gamma"}}

	company, concept := acme()
	first, err := p.Run(context.Background(), company, concept)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), company, concept)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_InvalidInput(t *testing.T) {
	p, search, _ := newTestPipeline(t)

	_, err := p.Run(context.Background(), core.Company{}, core.Concept{})
	assert.ErrorIs(t, err, core.ErrInvalidCompany)

	_, err = p.Run(context.Background(), core.Company{Name: "Acme"}, core.Concept{TargetIndustries: []string{" "}})
	assert.ErrorIs(t, err, core.ErrInvalidConcept)

	assert.Equal(t, 0, search.CallCount())
}

func TestRun_CanceledContext(t *testing.T) {
	p, search, _ := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	company, concept := acme()
	_, err := p.Run(ctx, company, concept)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, search.CallCount())
}

type recordingMonitor struct {
	mu     sync.Mutex
	events []string
}

func (m *recordingMonitor) add(e string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *recordingMonitor) Start(_ string, in core.SearchQueryInput) { m.add("start:" + in.Name) }
func (m *recordingMonitor) Transition(_ string, from, to core.Phase) {
	m.add(from.String() + "->" + to.String())
}
func (m *recordingMonitor) AfterSearch(_ string, _ string, r []core.SearchResultItem) {
	m.add(fmt.Sprintf("search:%d", len(r)))
}
func (m *recordingMonitor) AfterExtraction(_ string, c []core.CandidateCompany) {
	m.add(fmt.Sprintf("extract:%d", len(c)))
}
func (m *recordingMonitor) Finish(_ string, c []core.CandidateCompany) {
	m.add(fmt.Sprintf("finish:%d", len(c)))
}
func (m *recordingMonitor) Fail(_ string, phase core.Phase, _ error) { m.add("fail:" + phase.String()) }

func TestMonitor(t *testing.T) {
	t.Run("success sequence", func(t *testing.T) {
		mon := &recordingMonitor{}
		p, search, _ := newTestPipeline(t, WithMonitor(mon))
		search.Results = []ai.RawResult{{"title": "BetaBots"}}

		company, concept := acme()
		_, err := p.Run(context.Background(), company, concept)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"start:Acme Robotics",
			"start->searching",
			"search:1",
			"searching->extracting",
			"extract:1",
			"extracting->done",
			"finish:1",
		}, mon.events)
	})

	t.Run("failure sequence", func(t *testing.T) {
		mon := &recordingMonitor{}
		p, search, _ := newTestPipeline(t, WithMonitor(mon))
		search.SearchFunc = func(ctx context.Context, req ai.SearchRequest) ([]ai.RawResult, error) {
			return nil, errors.New("boom")
		}

		company, concept := acme()
		_, err := p.Run(context.Background(), company, concept)
		require.Error(t, err)
		assert.Equal(t, []string{
			"start:Acme Robotics",
			"start->searching",
			"searching->errored",
			"fail:searching",
		}, mon.events)
	})
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	p, search, _ := newTestPipeline(t, WithTracerProvider(tp))
	search.Results = []ai.RawResult{{"title": "BetaBots"}}

	company, concept := acme()
	state, err := p.Invoke(context.Background(), company, concept)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"pipeline.invoke", "pipeline.search", "pipeline.extract"}, names)

	for _, s := range recorder.Ended() {
		if s.Name() != "pipeline.invoke" {
			continue
		}
		var id string
		for _, kv := range s.Attributes() {
			if kv.Key == "invocation.id" {
				id = kv.Value.AsString()
			}
		}
		assert.Equal(t, state.ID, id)
	}
}

func TestRun_Concurrent(t *testing.T) {
	p, search, extractor := newTestPipeline(t)
	search.Results = []ai.RawResult{{"title": "BetaBots"}}

	const n = 20
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			company, concept := acme()
			state, err := p.Invoke(context.Background(), company, concept)
			errs[i] = err
			if state != nil {
				ids[i] = state.ID
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "invocation IDs must be unique")
		seen[ids[i]] = true
	}
	assert.Equal(t, n, search.CallCount())
	assert.Equal(t, n, extractor.CallCount())
}
