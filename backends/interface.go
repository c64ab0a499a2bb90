package backends

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is one of the result kinds a search can fan out to
type Category string

const (
	CategoryWeb   Category = "web"
	CategoryVideo Category = "video"
	CategoryImage Category = "image"
	CategoryNews  Category = "news"
)

// AllCategories lists every category in merge order
var AllCategories = []Category{CategoryWeb, CategoryNews, CategoryImage, CategoryVideo}

// ParseCategory maps user input (including plural forms) to a Category
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "web", "general", "organic":
		return CategoryWeb, true
	case "video", "videos":
		return CategoryVideo, true
	case "image", "images":
		return CategoryImage, true
	case "news":
		return CategoryNews, true
	}
	return "", false
}

const (
	DefaultMaxResults = 10

	defaultTitle   = "No title"
	defaultContent = "No description available"
)

// SearchRequest contains the parameters for an aggregated search
type SearchRequest struct {
	Query          string
	MaxResults     int
	SearchDepth    string // basic/advanced, only forwarded to engines that support it
	IncludeDomains []string
	ExcludeDomains []string
	Type           string
	ContentTypes   []Category
}

// WebResult is a normalized web or news hit
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// VideoResult is a normalized video hit
type VideoResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	ImageURL string `json:"imageUrl"`
	Duration string `json:"duration"`
	Source   string `json:"source"`
	Channel  string `json:"channel"`
	Date     string `json:"date"`
	Position int    `json:"position"`
}

// ImageResult is a normalized image hit
type ImageResult struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// SearchResults is the combined response of one Search call
type SearchResults struct {
	Results         []WebResult   `json:"results"`
	Images          []ImageResult `json:"images"`
	Videos          []VideoResult `json:"videos"`
	Query           string        `json:"query"`
	NumberOfResults int           `json:"number_of_results"`
}

// CategoryQuery is what a backend receives for a single category request
type CategoryQuery struct {
	Query       string
	MaxResults  int
	SearchDepth string
}

// Partial is the normalized output of one category request. Only the slice
// matching the requested category is populated.
type Partial struct {
	Web    []WebResult
	Videos []VideoResult
	Images []ImageResult
}

// BackendConfig contains engine-specific configuration
type BackendConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Backend is the interface that all search engines must implement
type Backend interface {
	// Name returns the unique identifier for this backend
	Name() string

	// IsAvailable reports whether the backend has the credentials it needs
	IsAvailable() bool

	// Search runs one category request and returns its normalized partial
	Search(ctx context.Context, category Category, q CategoryQuery) (*Partial, error)
}

// ConfigurationError is returned by Search before any request is made when
// the backend is missing its credential.
type ConfigurationError struct {
	Backend string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("%s backend: configuration error: %s", e.Backend, e.Reason)
}

// CategoryError represents a failed category request
type CategoryError struct {
	Backend  string
	Category Category
	Err      error
	Code     int // HTTP status code or custom error code
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%s backend (%s): %v", e.Backend, e.Category, e.Err)
}

// Unwrap returns the underlying error
func (e *CategoryError) Unwrap() error {
	return e.Err
}

// Error codes for category failures. HTTP statuses are used as-is for any
// other non-success reply, so these stay below 100.
const (
	ErrCodeUnavailable     = iota // Backend not configured
	ErrCodeNetwork                // Network/connectivity issue
	ErrCodeAuth                   // Authentication failure
	ErrCodeRateLimit              // Rate limited
	ErrCodeInvalidResponse        // Invalid/malformed response
	ErrCodeUnsupported            // Backend has no endpoint for the category
)

// IsParseError reports whether err is a malformed-response failure
func IsParseError(err error) bool {
	var catErr *CategoryError
	return errors.As(err, &catErr) && catErr.Code == ErrCodeInvalidResponse
}

// IsFetchError reports whether err is a transport or non-success status failure
func IsFetchError(err error) bool {
	var catErr *CategoryError
	if !errors.As(err, &catErr) {
		return false
	}
	switch catErr.Code {
	case ErrCodeNetwork, ErrCodeAuth, ErrCodeRateLimit:
		return true
	}
	return catErr.Code >= 100
}
