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


// Package batch runs many pipeline invocations concurrently.
//
// Each request is an independent invocation: one failure does not cancel the
// others, and nothing is retried. Results are returned in request order.
package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/peerscout/core"
	"golang.org/x/time/rate"
)

// ErrInvokerRequired is returned when no invoker is provided.
var ErrInvokerRequired = errors.New("invoker required")

// Invoker runs a single invocation. *pipeline.Pipeline satisfies it.
type Invoker interface {
	Run(ctx context.Context, company core.Company, concept core.Concept) ([]core.CandidateCompany, error)
}

// Request is one (company, concept) pair.
type Request struct {
	Company core.Company `json:"company"`
	Concept core.Concept `json:"concept"`
}

// Result is the outcome of one Request.
type Result struct {
	Index     int                     `json:"index"`
	Companies []core.CandidateCompany `json:"companies,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Err       error                   `json:"-"`
}

// Runner executes batches on a bounded worker pool.
type Runner struct {
	invoker        Invoker
	pool           *ants.Pool
	limiter        *rate.Limiter
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithWorkers sets the worker pool size.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithWorkers(size int) Option {
	return func(r *Runner) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithRateLimit caps invocation starts per second across all workers.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64) Option {
	return func(r *Runner) error {
		if rps <= 0 {
			r.limiter = nil
			return nil
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithProgress reports progress to w every interval completed requests.
func WithProgress(w io.Writer, interval int) Option {
	return func(r *Runner) error {
		r.progress = w
		r.reportInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// New creates a batch runner. Call Release when done.
func New(invoker Invoker, opts ...Option) (*Runner, error) {
	if invoker == nil {
		return nil, ErrInvokerRequired
	}

	size := runtime.NumCPU()
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		invoker: invoker,
		pool:    pool,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}
	return r, nil
}

// Run executes every request and returns one Result per request, in order.
// The returned error is non-nil only when the batch itself could not be
// scheduled; per-request failures are reported in Result.Err.
func (r *Runner) Run(ctx context.Context, requests []Request) ([]Result, error) {
	results := make([]Result, len(requests))

	var tracker *ProgressTracker
	if r.progress != nil {
		tracker = NewProgressTracker(r.progress, len(requests), r.reportInterval)
		tracker.Start()
		defer tracker.Finish()
	}

	var wg sync.WaitGroup
	for i := range requests {
		results[i].Index = i
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			r.runOne(ctx, requests[i], &results[i])
			if tracker != nil {
				tracker.Done(results[i].Err == nil)
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch complete", "requests", len(requests), "failed", failed)
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, req Request, res *Result) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			res.setErr(err)
			return
		}
	}
	companies, err := r.invoker.Run(ctx, req.Company, req.Concept)
	if err != nil {
		r.logger.Warn("batch request failed", "index", res.Index, "company", req.Company.Name, "err", err)
		res.setErr(err)
		return
	}
	res.Companies = companies
}

func (res *Result) setErr(err error) {
	res.Err = err
	res.Error = core.RedactSecrets(err.Error())
}

// Release releases the worker pool.
// The runner should not be used after calling Release.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}
