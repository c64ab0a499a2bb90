package backends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearxngBackend_Name(t *testing.T) {
	b := NewSearxngBackend("http://localhost", "", "", "GET", 10*time.Second, false)
	if b.Name() != "searxng" {
		t.Errorf("expected 'searxng', got %q", b.Name())
	}
}

func TestSearxngBackend_IsAvailable(t *testing.T) {
	tests := []struct {
		baseURL string
		want    bool
	}{
		{"", false},
		{"not-a-url", false},
		{"http://localhost:8888", true},
		{"https://searx.example.com/", true},
	}
	for _, tt := range tests {
		b := NewSearxngBackend(tt.baseURL, "", "", "GET", 10*time.Second, false)
		if got := b.IsAvailable(); got != tt.want {
			t.Errorf("IsAvailable(%q) = %v, want %v", tt.baseURL, got, tt.want)
		}
	}
}

func TestSearxngBackend_Search_GET(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/search" {
			t.Errorf("expected /search, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "golang" {
			t.Errorf("expected query 'golang', got %q", r.URL.Query().Get("q"))
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("expected format 'json', got %q", r.URL.Query().Get("format"))
		}
		if r.URL.Query().Get("categories") != "general" {
			t.Errorf("expected categories 'general', got %q", r.URL.Query().Get("categories"))
		}

		resp := searxngResponse{
			Results: []searxngResult{
				{Title: "Go Dev", URL: "https://go.dev", Content: "Official Go site", Engine: "google"},
				{Title: "Go Wiki", URL: "https://go.dev/wiki"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	b := NewSearxngBackend(server.URL, "", "", "GET", 10*time.Second, false)
	p, err := b.Search(context.Background(), CategoryWeb, CategoryQuery{Query: "golang", MaxResults: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(p.Web) != 1 {
		t.Fatalf("expected 1 result, got %d", len(p.Web))
	}
	if p.Web[0].Title != "Go Dev" {
		t.Errorf("expected 'Go Dev', got %q", p.Web[0].Title)
	}
}

func TestSearxngBackend_Search_POST(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("expected form content type, got %q", ct)
		}
		r.ParseForm()
		if r.FormValue("categories") != "news" {
			t.Errorf("expected categories 'news', got %q", r.FormValue("categories"))
		}

		json.NewEncoder(w).Encode(searxngResponse{Results: []searxngResult{{Title: "Headline", URL: "https://n"}}})
	}))
	defer server.Close()

	b := NewSearxngBackend(server.URL, "", "", "post", 10*time.Second, false)
	p, err := b.Search(context.Background(), CategoryNews, CategoryQuery{Query: "q", MaxResults: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(p.Web) != 1 || p.Web[0].Content != "No description available" {
		t.Errorf("unexpected news %+v", p.Web)
	}
}

func TestSearxngBackend_Search_BasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(searxngResponse{Results: []searxngResult{{Title: "Authed"}}})
	}))
	defer server.Close()

	b := NewSearxngBackend(server.URL, "admin", "secret", "GET", 10*time.Second, false)
	p, err := b.Search(context.Background(), CategoryWeb, CategoryQuery{Query: "test"})
	if err != nil {
		t.Fatalf("Search with basic auth failed: %v", err)
	}
	if len(p.Web) != 1 || p.Web[0].Title != "Authed" {
		t.Errorf("unexpected results: %v", p.Web)
	}
}

func TestSearxngBackend_Search_MediaCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("categories") {
		case "videos":
			w.Write([]byte(`{"results":[{"title":"Clip","url":"https://v","content":"c","length":125,"author":"Someone","engine":"youtube","thumbnail":"https://t"}]}`))
		case "images":
			w.Write([]byte(`{"results":[{"title":"Pic","url":"https://p","img_src":"https://img/full.jpg"}]}`))
		default:
			t.Errorf("unexpected categories %q", r.URL.Query().Get("categories"))
		}
	}))
	defer server.Close()

	b := NewSearxngBackend(server.URL, "", "", "GET", 10*time.Second, false)
	ctx := context.Background()

	p, err := b.Search(ctx, CategoryVideo, CategoryQuery{Query: "q", MaxResults: 5})
	if err != nil {
		t.Fatalf("video search failed: %v", err)
	}
	want := VideoResult{Title: "Clip", Link: "https://v", Snippet: "c", ImageURL: "https://t", Duration: "02:05", Source: "youtube", Channel: "Someone"}
	if p.Videos[0] != want {
		t.Errorf("got %+v, want %+v", p.Videos[0], want)
	}

	p, err = b.Search(ctx, CategoryImage, CategoryQuery{Query: "q", MaxResults: 5})
	if err != nil {
		t.Fatalf("image search failed: %v", err)
	}
	if p.Images[0].ThumbnailURL != "https://img/full.jpg" || p.Images[0].Link != "https://p" {
		t.Errorf("unexpected image %+v", p.Images[0])
	}
}

func TestSearxngBackend_Search_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal error"))
	}))
	defer server.Close()

	b := NewSearxngBackend(server.URL, "", "", "GET", 10*time.Second, false)
	_, err := b.Search(context.Background(), CategoryWeb, CategoryQuery{Query: "test"})
	catErr, ok := err.(*CategoryError)
	if !ok {
		t.Fatalf("expected CategoryError, got %T", err)
	}
	if catErr.Code != 500 {
		t.Errorf("expected code 500, got %d", catErr.Code)
	}
}

func TestFormatLength(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{float64(61), "01:01"},
		{"4:20", "4:20"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := formatLength(tt.in); got != tt.want {
			t.Errorf("formatLength(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
