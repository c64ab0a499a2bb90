package backends

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const defaultTavilyURL = "https://api.tavily.com"

// TavilyBackend implements Backend for Tavily Search API. Tavily has no video
// vertical, so video requests fail with ErrCodeUnsupported.
type TavilyBackend struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	SearchDepth       string // "basic" (1 credit) or "advanced" (2 credits)
	IncludeRawContent bool   // Return full page content inline
	client            *http.Client
}

// NewTavilyBackend creates a new Tavily Search backend
func NewTavilyBackend(cfg BackendConfig, searchDepth string, includeRawContent bool) *TavilyBackend {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if searchDepth == "" {
		searchDepth = "basic"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTavilyURL
	}
	return &TavilyBackend{
		APIKey:            strings.TrimSpace(cfg.APIKey),
		BaseURL:           baseURL,
		Timeout:           timeout,
		SearchDepth:       searchDepth,
		IncludeRawContent: includeRawContent,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the backend identifier
func (t *TavilyBackend) Name() string {
	return "tavily"
}

// IsAvailable checks if Tavily API key is configured
func (t *TavilyBackend) IsAvailable() bool {
	return t.APIKey != ""
}

// tavilyRequest is the POST body for Tavily search
type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	Topic             string `json:"topic,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeImages     bool   `json:"include_images,omitempty"`
	IncludeRawContent bool   `json:"include_raw_content,omitempty"`
}

// tavilyResponse is the Tavily search API response
type tavilyResponse struct {
	Query   string            `json:"query"`
	Results []tavilyResult    `json:"results"`
	Images  []json.RawMessage `json:"images"`
}

type tavilyResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

// tavilyImage is the object form returned when image descriptions are on;
// otherwise images are bare URL strings.
type tavilyImage struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Search performs one category request against Tavily Search API
func (t *TavilyBackend) Search(ctx context.Context, category Category, q CategoryQuery) (*Partial, error) {
	if !t.IsAvailable() {
		return nil, notConfigured(t.Name(), category, "Tavily API key")
	}
	if category == CategoryVideo {
		return nil, unsupported(t.Name(), category)
	}

	numResults := q.MaxResults
	if numResults <= 0 || numResults > 20 {
		numResults = DefaultMaxResults
	}
	depth := t.SearchDepth
	if q.SearchDepth != "" {
		depth = q.SearchDepth
	}

	reqBody := tavilyRequest{
		Query:             q.Query,
		SearchDepth:       depth,
		MaxResults:        numResults,
		IncludeRawContent: t.IncludeRawContent,
	}
	switch category {
	case CategoryNews:
		reqBody.Topic = "news"
	case CategoryImage:
		reqBody.IncludeImages = true
	}

	var resp tavilyResponse
	err := doJSON(ctx, t.client, t.Name(), category, apiRequest{
		Method:  http.MethodPost,
		URL:     t.BaseURL + "/search",
		Headers: map[string]string{"Authorization": "Bearer " + t.APIKey},
		Body:    reqBody,
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := &Partial{}
	if category == CategoryImage {
		images := make([]ImageResult, 0, len(resp.Images))
		for _, raw := range resp.Images {
			var img tavilyImage
			if err := json.Unmarshal(raw, &img.URL); err != nil {
				if err := json.Unmarshal(raw, &img); err != nil {
					return nil, &CategoryError{Backend: t.Name(), Category: category, Err: err, Code: ErrCodeInvalidResponse}
				}
			}
			images = append(images, newImageResult(img.Description, "", img.URL, ""))
		}
		out.Images = truncateImages(images, q.MaxResults)
		return out, nil
	}

	results := make([]WebResult, len(resp.Results))
	for i, r := range resp.Results {
		content := r.Content
		if t.IncludeRawContent && r.RawContent != "" {
			content = r.RawContent
		}
		results[i] = newWebResult(r.Title, r.URL, content)
	}
	out.Web = truncateWeb(results, q.MaxResults)
	return out, nil
}
