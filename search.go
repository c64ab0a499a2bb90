package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fanseek/backends"
)

type SearchOptions struct {
	ContentTypes   []string
	IncludeDomains []string
	ExcludeDomains []string
	SearchDepth    string
	Expand         bool
	JSON           bool
	First          bool
	Lucky          bool
	NoPrompt       bool
	LinksOnly      bool
	OutputFile     string
}

var contentTypeNames = []string{"web", "news", "images", "videos"}

var searchDepthOptions = []string{"basic", "advanced"}

func validateContentType(name string) bool {
	_, ok := backends.ParseCategory(name)
	return ok
}

func validateSearchDepth(depth string) bool {
	for _, d := range searchDepthOptions {
		if d == depth {
			return true
		}
	}
	return false
}

func parseContentTypes(names []string) ([]backends.Category, error) {
	categories := make([]backends.Category, 0, len(names))
	for _, name := range names {
		c, ok := backends.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("invalid content type '%s'. Supported content types are: %s",
				name, strings.Join(contentTypeNames, ", "))
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// newRegistry builds every engine from config; only the selected one is used
func newRegistry(config *Config) *backends.Registry {
	timeout := time.Duration(config.Timeout * float64(time.Second))

	return backends.NewRegistry(
		backends.NewSerperBackend(backends.BackendConfig{
			APIKey:  config.EnginesSerper.APIKey,
			BaseURL: config.EnginesSerper.BaseURL,
			Timeout: timeout,
		}),
		backends.NewBraveBackend(backends.BackendConfig{
			APIKey:  config.EnginesBrave.APIKey,
			BaseURL: config.EnginesBrave.BaseURL,
			Timeout: timeout,
		}),
		backends.NewTavilyBackend(backends.BackendConfig{
			APIKey:  config.EnginesTavily.APIKey,
			BaseURL: config.EnginesTavily.BaseURL,
			Timeout: timeout,
		}, config.EnginesTavily.SearchDepth, config.EnginesTavily.IncludeRawContent),
		backends.NewSearxngBackend(
			config.EnginesSearxng.URL,
			config.EnginesSearxng.Username,
			config.EnginesSearxng.Password,
			config.EnginesSearxng.HTTPMethod,
			timeout,
			config.EnginesSearxng.NoVerifySSL,
		),
	)
}

func validEngineNames() string {
	return strings.Join(newRegistry(getDefaultConfig()).Names(), ", ")
}

func newAggregator(config *Config, log zerolog.Logger) (*backends.Aggregator, error) {
	backend, err := newRegistry(config).Select(config.Engine)
	if err != nil {
		return nil, err
	}
	return backends.NewAggregator(backend, backends.WithLogger(log)), nil
}

func buildRequest(query string, config *Config, opts *SearchOptions) (backends.SearchRequest, error) {
	names := opts.ContentTypes
	if len(names) == 0 {
		names = config.ContentTypes
	}
	categories, err := parseContentTypes(names)
	if err != nil {
		return backends.SearchRequest{}, err
	}

	depth := opts.SearchDepth
	if depth == "" {
		depth = config.SearchDepth
	}

	return backends.SearchRequest{
		Query:          query,
		MaxResults:     config.ResultCount,
		SearchDepth:    depth,
		IncludeDomains: append(append([]string{}, config.IncludeDomains...), opts.IncludeDomains...),
		ExcludeDomains: append(append([]string{}, config.ExcludeDomains...), opts.ExcludeDomains...),
		ContentTypes:   categories,
	}, nil
}

func performSearch(ctx context.Context, agg *backends.Aggregator, query string, config *Config, opts *SearchOptions) (*backends.SearchResults, error) {
	req, err := buildRequest(query, config, opts)
	if err != nil {
		return nil, err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.Timeout*float64(time.Second)))
		defer cancel()
	}

	return agg.Search(ctx, req)
}
