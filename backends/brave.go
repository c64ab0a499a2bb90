package backends

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBraveURL = "https://api.search.brave.com/res/v1"

var bravePaths = map[Category]string{
	CategoryWeb:   "/web/search",
	CategoryNews:  "/news/search",
	CategoryVideo: "/videos/search",
	CategoryImage: "/images/search",
}

// BraveBackend implements Backend for Brave Search API
type BraveBackend struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	client  *http.Client
}

// NewBraveBackend creates a new Brave Search backend
func NewBraveBackend(cfg BackendConfig) *BraveBackend {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBraveURL
	}
	return &BraveBackend{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		BaseURL: baseURL,
		Timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the backend identifier
func (b *BraveBackend) Name() string {
	return "brave"
}

// IsAvailable checks if Brave API key is configured
func (b *BraveBackend) IsAvailable() bool {
	return b.APIKey != ""
}

type braveThumbnail struct {
	Src string `json:"src"`
}

type braveMetaURL struct {
	Hostname string `json:"hostname"`
}

type braveResult struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Description string         `json:"description"`
	Age         string         `json:"age,omitempty"`
	Source      string         `json:"source,omitempty"`
	Thumbnail   braveThumbnail `json:"thumbnail"`
	MetaURL     braveMetaURL   `json:"meta_url"`
	Video       struct {
		Duration  string `json:"duration"`
		Creator   string `json:"creator"`
		Publisher string `json:"publisher"`
	} `json:"video"`
	Properties struct {
		URL string `json:"url"`
	} `json:"properties"`
}

// braveSearchResponse covers both the web endpoint (results under "web") and
// the vertical endpoints (results at the top level).
type braveSearchResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
	Results []braveResult `json:"results"`
}

// Search performs one category request against Brave Search API
func (b *BraveBackend) Search(ctx context.Context, category Category, q CategoryQuery) (*Partial, error) {
	if !b.IsAvailable() {
		return nil, notConfigured(b.Name(), category, "Brave API key")
	}
	path, ok := bravePaths[category]
	if !ok {
		return nil, unsupported(b.Name(), category)
	}

	// Web search accepts at most 20 results per request
	count := q.MaxResults
	if count <= 0 {
		count = DefaultMaxResults
	}
	if count > 20 {
		count = 20
	}
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("count", fmt.Sprintf("%d", count))

	var resp braveSearchResponse
	err := doJSON(ctx, b.client, b.Name(), category, apiRequest{
		URL:     b.BaseURL + path + "?" + params.Encode(),
		Headers: map[string]string{"X-Subscription-Token": b.APIKey},
	}, &resp)
	if err != nil {
		return nil, err
	}

	rows := resp.Results
	if category == CategoryWeb {
		rows = resp.Web.Results
	}
	rows = rows[:capCount(len(rows), q.MaxResults)]

	out := &Partial{}
	switch category {
	case CategoryWeb, CategoryNews:
		out.Web = make([]WebResult, len(rows))
		for i, r := range rows {
			out.Web[i] = newWebResult(r.Title, r.URL, r.Description)
		}
	case CategoryVideo:
		out.Videos = make([]VideoResult, len(rows))
		for i, r := range rows {
			out.Videos[i] = VideoResult{
				Title:    r.Title,
				Link:     r.URL,
				Snippet:  r.Description,
				ImageURL: r.Thumbnail.Src,
				Duration: r.Video.Duration,
				Source:   firstNonEmpty(r.Video.Publisher, r.MetaURL.Hostname),
				Channel:  r.Video.Creator,
				Date:     r.Age,
			}
		}
		renumberVideos(out.Videos)
	case CategoryImage:
		out.Images = make([]ImageResult, len(rows))
		for i, r := range rows {
			out.Images[i] = newImageResult(r.Title, r.URL, r.Properties.URL, r.Thumbnail.Src)
		}
	}
	return out, nil
}
