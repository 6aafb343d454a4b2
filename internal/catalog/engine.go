package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/metrics"
	"github.com/five82/shopfront/internal/orders"
	"github.com/five82/shopfront/internal/sched"
	"github.com/five82/shopfront/internal/shop"
	"github.com/five82/shopfront/internal/telemetry"
)

const (
	// DefaultDebounce is the quiet period before suggestions are computed.
	DefaultDebounce = 1500 * time.Millisecond
	// DefaultLatency is the simulated delay before a network fetch.
	DefaultLatency = 1500 * time.Millisecond
	// SuggestionLimit caps the suggestion list.
	SuggestionLimit = 3
)

// ErrEmptyCatalog is returned when the catalog document has no products.
var ErrEmptyCatalog = errors.New("catalog has no products")

// Fetcher downloads the product catalog.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]shop.Product, error)
}

// Location receives the encoded query whenever the applied filters change.
type Location interface {
	ReplaceQuery(query string)
}

// LocationFunc adapts a function to Location.
type LocationFunc func(string)

func (f LocationFunc) ReplaceQuery(q string) { f(q) }

// Status is the load state of the catalog.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Source says where a loaded catalog came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// Result is the outcome of Fetch.
type Result struct {
	Products []shop.Product
	Source   Source
}

// Options configure an Engine. Debounce defaults to DefaultDebounce; a zero
// Latency fetches without delay.
type Options struct {
	Store     *kv.Store
	Bus       *bus.Bus
	Scheduler sched.Scheduler
	Fetcher   Fetcher
	Orders    *orders.Service
	Location  Location
	Debounce  time.Duration
	Latency   time.Duration
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Engine holds the catalog, the search box and the applied filters. Apart
// from Fetch, its methods must be called from one logical thread.
type Engine struct {
	opts   Options
	logger *slog.Logger
	coll   *collate.Collator

	status   Status
	err      error
	products []shop.Product

	input   string
	filters []string
	applied Query

	suggestions []shop.Product
	pending     *sched.Task
	generation  uint64

	onChange func()
}

// New returns an engine in the loading state.
func New(opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Latency < 0 {
		opts.Latency = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		opts:   opts,
		logger: logger,
		coll:   collate.New(language.English, collate.IgnoreCase),
	}
}

// OnChange registers fn to run after every state change.
func (e *Engine) OnChange(fn func()) {
	e.onChange = fn
}

// SetLocation replaces the query sink.
func (e *Engine) SetLocation(l Location) {
	e.opts.Location = l
}

// Status returns the load state.
func (e *Engine) Status() Status { return e.status }

// Err returns the load failure while the engine is in StatusFailed.
func (e *Engine) Err() error { return e.err }

// Products returns the full catalog.
func (e *Engine) Products() []shop.Product { return slices.Clone(e.products) }

// Product looks up id in the catalog.
func (e *Engine) Product(id shop.ID) (shop.Product, bool) {
	i := slices.IndexFunc(e.products, func(p shop.Product) bool { return p.ID == id })
	if i < 0 {
		return shop.Product{}, false
	}
	return e.products[i], true
}

// Visible returns the products matching the applied query.
func (e *Engine) Visible() []shop.Product {
	return Filter(e.products, e.applied)
}

// Filter returns the products matching q.
func (e *Engine) Filter(q Query) []shop.Product {
	return Filter(e.products, q)
}

// Input returns the current search box text.
func (e *Engine) Input() string { return e.input }

// Query returns the applied query.
func (e *Engine) Query() Query {
	return Query{Search: e.applied.Search, Filters: slices.Clone(e.applied.Filters)}
}

// Selected reports whether category is an active filter.
func (e *Engine) Selected(category string) bool {
	return slices.Contains(e.filters, category)
}

// Categories returns the lower-cased product categories in sorted order,
// including selected filters that no product carries.
func (e *Engine) Categories() []string {
	var out []string
	for _, p := range e.products {
		if c := p.Category(); c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	for _, f := range e.filters {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}

// Suggestions returns the last computed suggestions.
func (e *Engine) Suggestions() []shop.Product { return slices.Clone(e.suggestions) }

// SuggestionsLoading reports whether a debounced computation is pending.
func (e *Engine) SuggestionsLoading() bool { return e.pending.Pending() }

// Purchased reports whether id appears in the order history.
func (e *Engine) Purchased(id shop.ID) bool {
	if e.opts.Orders == nil {
		return false
	}
	return e.opts.Orders.Purchased(id)
}

// Restore sets the search box and filters from q without reflecting them
// back to the location. Call it before the first render.
func (e *Engine) Restore(q Query) {
	e.input = q.Search
	e.filters = normalizeFilters(q.Filters)
	e.applied = Query{Search: e.input, Filters: slices.Clone(e.filters)}
	e.changed()
}

// BeginLoad enters the loading state.
func (e *Engine) BeginLoad() {
	e.status = StatusLoading
	e.err = nil
	e.changed()
}

// Fetch returns the cached catalog when there is one, otherwise waits the
// configured latency and downloads it, caching the result. It touches no
// engine state and may run off the logical thread.
func (e *Engine) Fetch(ctx context.Context) (Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "catalog.load")
	defer span.End()

	if cached := kv.Get[[]shop.Product](e.opts.Store, shop.KeyProducts, nil); len(cached) > 0 {
		span.SetAttributes(attribute.String("catalog.source", string(SourceCache)), attribute.Int("catalog.products", len(cached)))
		return Result{Products: cached, Source: SourceCache}, nil
	}

	fail := func(err error) (Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	if err := sched.Sleep(ctx, e.opts.Scheduler, e.opts.Latency); err != nil {
		return fail(fmt.Errorf("load catalog: %w", err))
	}
	if e.opts.Fetcher == nil {
		return fail(errors.New("load catalog: no fetcher configured"))
	}
	products, err := e.opts.Fetcher.FetchProducts(ctx)
	if err != nil {
		return fail(fmt.Errorf("load catalog: %w", err))
	}
	if len(products) == 0 {
		return fail(fmt.Errorf("load catalog: %w", ErrEmptyCatalog))
	}
	if err := e.opts.Store.Save(shop.KeyProducts, products); err != nil {
		e.logger.Warn("catalog cache write failed", "error", err)
	}
	span.SetAttributes(attribute.String("catalog.source", string(SourceNetwork)), attribute.Int("catalog.products", len(products)))
	return Result{Products: products, Source: SourceNetwork}, nil
}

// Apply installs the outcome of Fetch.
func (e *Engine) Apply(res Result, err error) {
	if err != nil {
		e.status = StatusFailed
		e.err = err
		e.products = nil
		e.opts.Metrics.CatalogLoad("error")
		e.logger.Error("catalog load failed", "error", err)
		e.changed()
		return
	}
	e.status = StatusReady
	e.err = nil
	e.products = res.Products
	e.opts.Metrics.CatalogLoad(string(res.Source))
	e.logger.Info("catalog loaded", "source", res.Source, "products", len(res.Products))
	e.changed()
}

// Load runs BeginLoad, Fetch and Apply in sequence.
func (e *Engine) Load(ctx context.Context) error {
	e.BeginLoad()
	res, err := e.Fetch(ctx)
	e.Apply(res, err)
	return err
}

// Retry is the manual reload after a failure. Nothing retries on its own.
func (e *Engine) Retry(ctx context.Context) error {
	return e.Load(ctx)
}

// SetInput records the search box text. A non-empty term restarts the
// debounce window; only the last term of a burst computes suggestions.
// Clearing the box cancels the pending computation and applies the empty
// term at once.
func (e *Engine) SetInput(term string) {
	e.input = term
	e.supersede()

	if term == "" {
		e.suggestions = nil
		e.apply()
		return
	}

	gen := e.generation
	e.pending = e.opts.Scheduler.AfterFunc(e.opts.Debounce, func() { e.suggest(gen, term) })
	e.changed()
}

// Submit applies the search box text and closes the suggestions.
func (e *Engine) Submit() {
	e.supersede()
	e.suggestions = nil
	e.apply()
}

// DismissSuggestions closes the suggestion list without applying.
func (e *Engine) DismissSuggestions() {
	e.supersede()
	e.suggestions = nil
	e.changed()
}

// ToggleCategory flips one category filter and applies the query.
func (e *Engine) ToggleCategory(category string) {
	next := slices.Clone(e.filters)
	if i := slices.Index(next, category); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next = append(next, category)
	}
	e.SetCategories(next...)
}

// SetCategories replaces the category filters and applies the query.
func (e *Engine) SetCategories(categories ...string) {
	e.filters = normalizeFilters(categories)
	e.apply()
}

// SelectSuggestion puts the product title in the search box, clears the
// category filters and applies. Unless the product was already bought it
// publishes open-product-detail. It returns false when id is not in the
// catalog.
func (e *Engine) SelectSuggestion(id shop.ID) bool {
	p, ok := e.Product(id)
	if !ok {
		return false
	}
	e.supersede()
	e.input = p.Title
	e.filters = nil
	e.suggestions = nil
	e.apply()
	e.Open(id)
	return true
}

// Open publishes open-product-detail for id. Purchased and unknown products
// do not open.
func (e *Engine) Open(id shop.ID) bool {
	if e.Purchased(id) {
		return false
	}
	p, ok := e.Product(id)
	if !ok {
		return false
	}
	bus.Publish(e.opts.Bus, shop.OpenProductDetail, p)
	return true
}

func (e *Engine) apply() {
	e.applied = Query{Search: e.input, Filters: slices.Clone(e.filters)}
	if e.opts.Location != nil {
		e.opts.Location.ReplaceQuery(e.applied.Encode())
	}
	e.changed()
}

// supersede invalidates any pending suggestion computation.
func (e *Engine) supersede() {
	e.generation++
	if e.pending.Cancel() {
		e.opts.Metrics.SuggestionRun("superseded")
	}
	e.pending = nil
}

func (e *Engine) suggest(gen uint64, term string) {
	if gen != e.generation {
		return
	}
	e.pending = nil
	e.suggestions = e.suggestionsFor(term)
	if len(e.suggestions) == 0 {
		e.opts.Metrics.SuggestionRun("empty")
	} else {
		e.opts.Metrics.SuggestionRun("hit")
	}
	e.changed()
}

func (e *Engine) suggestionsFor(term string) []shop.Product {
	if term == "" {
		return nil
	}
	matches := Filter(e.products, Query{Search: term})
	slices.SortStableFunc(matches, func(a, b shop.Product) int {
		return e.coll.CompareString(a.Title, b.Title)
	})
	if len(matches) > SuggestionLimit {
		matches = matches[:SuggestionLimit]
	}
	if len(matches) == 0 {
		return nil
	}
	return matches
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}
