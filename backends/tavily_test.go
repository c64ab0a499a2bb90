package backends

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestTavilyBackend(serverURL, apiKey, depth string, rawContent bool) *TavilyBackend {
	return NewTavilyBackend(BackendConfig{APIKey: apiKey, BaseURL: serverURL, Timeout: 10 * time.Second}, depth, rawContent)
}

func TestTavilyBackend_Name(t *testing.T) {
	b := NewTavilyBackend(BackendConfig{APIKey: "key"}, "basic", false)
	if b.Name() != "tavily" {
		t.Errorf("expected 'tavily', got %q", b.Name())
	}
}

func TestTavilyBackend_Defaults(t *testing.T) {
	b := NewTavilyBackend(BackendConfig{APIKey: "key"}, "", false)
	if b.Timeout != 15*time.Second {
		t.Errorf("expected default timeout 15s, got %v", b.Timeout)
	}
	if b.SearchDepth != "basic" {
		t.Errorf("expected default search_depth 'basic', got %q", b.SearchDepth)
	}
	if b.BaseURL != "https://api.tavily.com" {
		t.Errorf("unexpected base URL %q", b.BaseURL)
	}
}

func TestTavilyBackend_Search_Unavailable(t *testing.T) {
	b := NewTavilyBackend(BackendConfig{}, "basic", false)
	_, err := b.Search(context.Background(), CategoryWeb, CategoryQuery{Query: "test"})
	catErr, ok := err.(*CategoryError)
	if !ok {
		t.Fatalf("expected CategoryError, got %T", err)
	}
	if catErr.Code != ErrCodeUnavailable {
		t.Errorf("expected ErrCodeUnavailable, got %d", catErr.Code)
	}
}

func TestTavilyBackend_Search_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, _ := io.ReadAll(r.Body)
		var req tavilyRequest
		json.Unmarshal(body, &req)

		if req.Query != "golang" {
			t.Errorf("expected query 'golang', got %q", req.Query)
		}
		if req.SearchDepth != "advanced" {
			t.Errorf("expected per-request search_depth 'advanced', got %q", req.SearchDepth)
		}
		if req.Topic != "" {
			t.Errorf("expected no topic for web search, got %q", req.Topic)
		}

		resp := tavilyResponse{
			Query: "golang",
			Results: []tavilyResult{
				{Title: "Go Dev", URL: "https://go.dev", Content: "Official Go site", Score: 0.95},
				{Title: "Go Wiki", URL: "https://wiki.com/go", Content: "Go language wiki", Score: 0.85},
				{Title: "Go Blog", URL: "https://go.dev/blog", Content: "Blog", Score: 0.80},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	b := newTestTavilyBackend(server.URL, "test-key", "basic", false)
	p, err := b.Search(context.Background(), CategoryWeb, CategoryQuery{Query: "golang", MaxResults: 2, SearchDepth: "advanced"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(p.Web) != 2 {
		t.Fatalf("expected 2 results, got %d", len(p.Web))
	}
	if p.Web[0] != (WebResult{Title: "Go Dev", URL: "https://go.dev", Content: "Official Go site"}) {
		t.Errorf("unexpected first result %+v", p.Web[0])
	}
}

func TestTavilyBackend_Search_News(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilyRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Topic != "news" {
			t.Errorf("expected topic 'news', got %q", req.Topic)
		}
		json.NewEncoder(w).Encode(tavilyResponse{Results: []tavilyResult{{Title: "Headline", URL: "https://n"}}})
	}))
	defer server.Close()

	b := newTestTavilyBackend(server.URL, "k", "basic", false)
	p, err := b.Search(context.Background(), CategoryNews, CategoryQuery{Query: "q", MaxResults: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(p.Web) != 1 || p.Web[0].Content != "No description available" {
		t.Errorf("unexpected news %+v", p.Web)
	}
}

func TestTavilyBackend_Search_WithRawContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req tavilyRequest
		json.Unmarshal(body, &req)

		if !req.IncludeRawContent {
			t.Error("expected include_raw_content to be true")
		}

		resp := tavilyResponse{
			Results: []tavilyResult{
				{
					Title:      "Test",
					URL:        "https://test.com",
					Content:    "Short snippet",
					RawContent: "Full page content with lots of text here",
					Score:      0.9,
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	b := newTestTavilyBackend(server.URL, "key", "basic", true)
	p, err := b.Search(context.Background(), CategoryWeb, CategoryQuery{Query: "test"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if p.Web[0].Content != "Full page content with lots of text here" {
		t.Errorf("expected raw content, got %q", p.Web[0].Content)
	}
}

func TestTavilyBackend_Search_Images(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilyRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.IncludeImages {
			t.Error("expected include_images to be true")
		}
		w.Write([]byte(`{"results":[],"images":["https://img/a.png",{"url":"https://img/b.png","description":"B"}]}`))
	}))
	defer server.Close()

	b := newTestTavilyBackend(server.URL, "k", "basic", false)
	p, err := b.Search(context.Background(), CategoryImage, CategoryQuery{Query: "q", MaxResults: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(p.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(p.Images))
	}
	if p.Images[0].ThumbnailURL != "https://img/a.png" {
		t.Errorf("unexpected image %+v", p.Images[0])
	}
	if p.Images[1].Title != "B" || p.Images[1].Link != "https://img/b.png" {
		t.Errorf("unexpected image %+v", p.Images[1])
	}
}

func TestTavilyBackend_Search_VideoUnsupported(t *testing.T) {
	b := NewTavilyBackend(BackendConfig{APIKey: "k"}, "basic", false)
	_, err := b.Search(context.Background(), CategoryVideo, CategoryQuery{Query: "q"})
	catErr, ok := err.(*CategoryError)
	if !ok || catErr.Code != ErrCodeUnsupported {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestTavilyBackend_Search_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": {"error": "invalid key"}}`))
	}))
	defer server.Close()

	b := newTestTavilyBackend(server.URL, "bad-key", "basic", false)
	_, err := b.Search(context.Background(), CategoryWeb, CategoryQuery{Query: "test"})
	catErr, ok := err.(*CategoryError)
	if !ok {
		t.Fatalf("expected CategoryError, got %T", err)
	}
	if catErr.Code != ErrCodeAuth {
		t.Errorf("expected ErrCodeAuth, got %d", catErr.Code)
	}
}
