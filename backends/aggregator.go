package backends

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Aggregator fans a query out to every requested category of one backend
// and merges the per-category results.
type Aggregator struct {
	backend Backend
	log     zerolog.Logger
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the logger used for per-category diagnostics
func WithLogger(log zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.log = log
	}
}

// NewAggregator creates an aggregator over backend
func NewAggregator(backend Backend, opts ...Option) *Aggregator {
	a := &Aggregator{
		backend: backend,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Backend returns the backend the aggregator searches
func (a *Aggregator) Backend() Backend {
	return a.backend
}

// Search runs one request per active category concurrently and waits for all
// of them. Category failures are logged and yield empty lists; the only error
// returned is a *ConfigurationError when the backend lacks its credential.
func (a *Aggregator) Search(ctx context.Context, req SearchRequest) (*SearchResults, error) {
	if a.backend == nil {
		return nil, &ConfigurationError{Reason: "no search backend configured"}
	}
	if !a.backend.IsAvailable() {
		return nil, &ConfigurationError{Backend: a.backend.Name(), Reason: "API key is not set"}
	}

	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	cq := CategoryQuery{
		Query:       RewriteQuery(req.Query, req.IncludeDomains, req.ExcludeDomains),
		MaxResults:  maxResults,
		SearchDepth: req.SearchDepth,
	}
	categories := a.activeCategories(req.ContentTypes)

	a.log.Debug().
		Str("backend", a.backend.Name()).
		Str("query", cq.Query).
		Strs("categories", categoryNames(categories)).
		Int("max_results", maxResults).
		Msg("Starting aggregated search")

	partials := make([]*Partial, len(categories))
	var g errgroup.Group
	for i, category := range categories {
		i, category := i, category
		g.Go(func() error {
			partials[i] = a.fetch(ctx, category, cq)
			return nil
		})
	}
	_ = g.Wait()

	return mergePartials(req.Query, categories, partials, maxResults), nil
}

// fetch runs a single category request. It never fails: errors and panics
// are logged and reported as a nil partial.
func (a *Aggregator) fetch(ctx context.Context, category Category, cq CategoryQuery) (partial *Partial) {
	log := a.log.With().Str("backend", a.backend.Name()).Str("category", string(category)).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Category search panicked")
			partial = nil
		}
	}()

	partial, err := a.backend.Search(ctx, category, cq)
	if err != nil {
		log.Warn().Err(err).Str("kind", failureKind(err)).Msg("Category search failed")
		return nil
	}
	return partial
}

func (a *Aggregator) activeCategories(requested []Category) []Category {
	if len(requested) == 0 {
		return []Category{CategoryWeb}
	}
	seen := make(map[Category]bool, len(requested))
	active := make([]Category, 0, len(requested))
	for _, c := range requested {
		parsed, ok := ParseCategory(string(c))
		if !ok {
			a.log.Warn().Str("category", string(c)).Msg("Ignoring unknown category")
			continue
		}
		if seen[parsed] {
			continue
		}
		seen[parsed] = true
		active = append(active, parsed)
	}
	if len(active) == 0 {
		return []Category{CategoryWeb}
	}
	return active
}

// mergePartials assembles the final response after every category finished.
// News is appended after web regardless of completion order.
func mergePartials(query string, categories []Category, partials []*Partial, maxResults int) *SearchResults {
	byCategory := make(map[Category]*Partial, len(categories))
	for i, c := range categories {
		if partials[i] != nil {
			byCategory[c] = partials[i]
		}
	}

	out := &SearchResults{
		Results: []WebResult{},
		Images:  []ImageResult{},
		Videos:  []VideoResult{},
		Query:   query,
	}
	if p := byCategory[CategoryWeb]; p != nil {
		out.Results = append(out.Results, truncateWeb(p.Web, maxResults)...)
	}
	if p := byCategory[CategoryNews]; p != nil {
		out.Results = append(out.Results, truncateWeb(p.Web, maxResults)...)
	}
	if p := byCategory[CategoryImage]; p != nil {
		out.Images = append(out.Images, truncateImages(p.Images, maxResults)...)
	}
	if p := byCategory[CategoryVideo]; p != nil {
		out.Videos = append(out.Videos, renumberVideos(truncateVideos(p.Videos, maxResults))...)
	}
	out.NumberOfResults = len(out.Results)
	return out
}

// RewriteQuery appends site filters for included and excluded domains.
// Included domains are OR-ed in one group, excluded ones negated one by one.
func RewriteQuery(query string, include, exclude []string) string {
	var b strings.Builder
	b.WriteString(query)

	sites := make([]string, 0, len(include))
	for _, d := range include {
		if d = strings.TrimSpace(d); d != "" {
			sites = append(sites, "site:"+d)
		}
	}
	if len(sites) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(sites, " OR "))
	}

	for _, d := range exclude {
		if d = strings.TrimSpace(d); d != "" {
			b.WriteString(" -site:" + d)
		}
	}
	return b.String()
}

func failureKind(err error) string {
	switch {
	case IsParseError(err):
		return "parse"
	case IsFetchError(err):
		return "fetch"
	default:
		return "other"
	}
}

func categoryNames(categories []Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}
