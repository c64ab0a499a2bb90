package backends

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const defaultSerperURL = "https://google.serper.dev"

// serperPaths maps each category to its Serper endpoint
var serperPaths = map[Category]string{
	CategoryWeb:   "/search",
	CategoryVideo: "/videos",
	CategoryImage: "/images",
	CategoryNews:  "/news",
}

// SerperBackend implements Backend for the Serper Google Search API
type SerperBackend struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	client  *http.Client
}

// NewSerperBackend creates a new Serper backend
func NewSerperBackend(cfg BackendConfig) *SerperBackend {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultSerperURL
	}
	return &SerperBackend{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		BaseURL: baseURL,
		Timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the backend identifier
func (s *SerperBackend) Name() string {
	return "serper"
}

// IsAvailable checks if the Serper API key is configured
func (s *SerperBackend) IsAvailable() bool {
	return s.APIKey != ""
}

// serperRequest is the POST body shared by every Serper endpoint
type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperOrganic struct {
	Title    *string `json:"title"`
	Link     *string `json:"link"`
	Snippet  *string `json:"snippet"`
	Position *int    `json:"position"`
}

type serperVideo struct {
	Title    *string `json:"title"`
	Link     *string `json:"link"`
	Snippet  *string `json:"snippet"`
	ImageURL *string `json:"imageUrl"`
	Duration *string `json:"duration"`
	Source   *string `json:"source"`
	Channel  *string `json:"channel"`
	Date     *string `json:"date"`
	Position *int    `json:"position"`
}

type serperImage struct {
	Title        *string `json:"title"`
	ImageURL     *string `json:"imageUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Link         *string `json:"link"`
	Source       *string `json:"source"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
	News    []serperOrganic `json:"news"`
	Videos  []serperVideo   `json:"videos"`
	Images  []serperImage   `json:"images"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Search performs one category request against Serper
func (s *SerperBackend) Search(ctx context.Context, category Category, q CategoryQuery) (*Partial, error) {
	if !s.IsAvailable() {
		return nil, notConfigured(s.Name(), category, "Serper API key")
	}
	path, ok := serperPaths[category]
	if !ok {
		return nil, unsupported(s.Name(), category)
	}

	var resp serperResponse
	err := doJSON(ctx, s.client, s.Name(), category, apiRequest{
		Method:  http.MethodPost,
		URL:     s.BaseURL + path,
		Headers: map[string]string{"X-API-KEY": s.APIKey},
		Body:    serperRequest{Q: q.Query, Num: q.MaxResults},
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := &Partial{}
	switch category {
	case CategoryWeb:
		out.Web = serperWebResults(resp.Organic, q.MaxResults)
	case CategoryNews:
		out.Web = serperWebResults(resp.News, q.MaxResults)
	case CategoryVideo:
		n := capCount(len(resp.Videos), q.MaxResults)
		out.Videos = make([]VideoResult, n)
		for i, v := range resp.Videos[:n] {
			out.Videos[i] = VideoResult{
				Title:    str(v.Title),
				Link:     str(v.Link),
				Snippet:  str(v.Snippet),
				ImageURL: str(v.ImageURL),
				Duration: str(v.Duration),
				Source:   str(v.Source),
				Channel:  str(v.Channel),
				Date:     str(v.Date),
			}
		}
		renumberVideos(out.Videos)
	case CategoryImage:
		n := capCount(len(resp.Images), q.MaxResults)
		out.Images = make([]ImageResult, n)
		for i, img := range resp.Images[:n] {
			out.Images[i] = newImageResult(str(img.Title), str(img.Link), str(img.ImageURL), str(img.ThumbnailURL))
		}
	}
	return out, nil
}

func serperWebResults(rows []serperOrganic, max int) []WebResult {
	n := capCount(len(rows), max)
	results := make([]WebResult, n)
	for i, r := range rows[:n] {
		results[i] = newWebResult(str(r.Title), str(r.Link), str(r.Snippet))
	}
	return results
}
