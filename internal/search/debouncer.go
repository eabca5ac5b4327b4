// Package search debounces free-text search input so that a query is issued
// only once the input has been quiet for a while.
package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/employee-directory/internal/logging"
	"github.com/jonathan/employee-directory/internal/metrics"
	"github.com/jonathan/employee-directory/internal/types"
)

// DefaultDelay is the quiet period after the last keystroke before a query is issued.
const DefaultDelay = 500 * time.Millisecond

// State is the debouncer's position in its two-state machine.
type State int

const (
	// Settled means the input has been quiet for the full delay.
	Settled State = iota
	// Pending means input arrived within the delay and no query has been issued for it yet.
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "settled"
}

// Searcher runs one search query.
type Searcher interface {
	Search(ctx context.Context, text string) ([]types.Employee, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, text string) ([]types.Employee, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, text string) ([]types.Employee, error) {
	return f(ctx, text)
}

// Result is delivered once per settle: either the outcome of the query for
// Text, or an empty result with Cleared set when the input was empty.
type Result struct {
	Text      string
	Employees []types.Employee
	Err       error
	Cleared   bool
}

// Stats counts what the debouncer did.
type Stats struct {
	Issued    int
	Applied   int
	Discarded int
}

// Options configures a Debouncer.
type Options struct {
	Delay time.Duration
	Clock Clock
	// OnResult receives results that are still current, one at a time. It is
	// called from the goroutine that ran the query, or from the timer for
	// cleared results.
	OnResult func(Result)
	// BaseContext is passed to every query. Closing the debouncer does not cancel it.
	BaseContext context.Context
	Logger      *zap.Logger
	Metrics     *metrics.Recorder
}

// Debouncer turns a stream of keystrokes into at most one query per quiet period
// and applies results in last-text-wins order.
type Debouncer struct {
	searcher Searcher
	delay    time.Duration
	clock    Clock
	onResult func(Result)
	ctx      context.Context
	logger   *zap.Logger
	metrics  *metrics.Recorder

	mu     sync.Mutex
	state  State
	text   string
	gen    uint64
	timer  Timer
	closed bool
	stats  Stats

	// deliverMu is held from the staleness check through OnResult, so a
	// result is never applied after a newer one.
	deliverMu sync.Mutex
	inflight  sync.WaitGroup
}

// New creates a Debouncer in the Settled state with empty text.
func New(searcher Searcher, opts Options) *Debouncer {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	if opts.OnResult == nil {
		opts.OnResult = func(Result) {}
	}
	return &Debouncer{
		searcher: searcher,
		delay:    opts.Delay,
		clock:    opts.Clock,
		onResult: opts.OnResult,
		ctx:      opts.BaseContext,
		logger:   logging.OrNop(opts.Logger).Named("search"),
		metrics:  opts.Metrics,
	}
}

// Input records the current search text and restarts the quiet period.
func (d *Debouncer) Input(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.text = text
	d.state = Pending
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.settle(gen) })
}

// State returns the current state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Text returns the current search text.
func (d *Debouncer) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Stats returns a snapshot of the counters.
func (d *Debouncer) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Close detaches the debouncer from its surface. A pending timer is stopped and
// results of queries still in flight are discarded. The queries themselves run
// to completion.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = Settled
}

// Wait blocks until every issued query has finished.
func (d *Debouncer) Wait() {
	d.inflight.Wait()
}

func (d *Debouncer) settle(gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.state = Settled
	d.timer = nil
	text := d.text

	if text == "" {
		d.mu.Unlock()
		d.deliverMu.Lock()
		defer d.deliverMu.Unlock()
		if !d.current("") {
			return
		}
		d.onResult(Result{Cleared: true, Employees: []types.Employee{}})
		return
	}

	d.stats.Issued++
	d.inflight.Add(1)
	d.mu.Unlock()

	d.metrics.ObserveSearch(metrics.SearchIssued)
	d.logger.Debug("issuing search", zap.String("text", text))
	go d.run(text)
}

func (d *Debouncer) run(text string) {
	defer d.inflight.Done()

	employees, err := d.searcher.Search(d.ctx, text)

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	d.mu.Lock()
	if d.closed || d.text != text {
		d.stats.Discarded++
		d.mu.Unlock()
		d.metrics.ObserveSearch(metrics.SearchDiscarded)
		d.logger.Debug("discarding stale search result", zap.String("text", text))
		return
	}
	d.stats.Applied++
	d.mu.Unlock()

	if err != nil {
		d.metrics.ObserveSearch(metrics.SearchFailed)
		d.logger.Debug("search failed", zap.String("text", text), zap.Error(err))
	} else {
		d.metrics.ObserveSearch(metrics.SearchApplied)
	}
	if employees == nil {
		employees = []types.Employee{}
	}
	d.onResult(Result{Text: text, Employees: employees, Err: err})
}

func (d *Debouncer) current(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && d.text == text
}
