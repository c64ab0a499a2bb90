// Package reader fetches a web page and extracts its main article as Markdown.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultMaxBytes = 5 << 20
	userAgent       = "Mozilla/5.0 (compatible; fanseek/1.0)"
)

var ErrURLNotAllowed = errors.New("url not allowed")

// Article is the readable part of a page
type Article struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline,omitempty"`
	SiteName string `json:"siteName,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	Markdown string `json:"markdown"`
}

type Reader struct {
	client   *http.Client
	maxBytes int64

	// AllowPrivateHosts disables the loopback/private address check
	AllowPrivateHosts bool
}

func New(timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Reader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: defaultMaxBytes,
	}
}

// Fetch downloads rawURL and converts its main content to Markdown
func (r *Reader) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrURLNotAllowed)
	}
	if !r.AllowPrivateHosts && isPrivateHost(pageURL.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrURLNotAllowed, pageURL.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("unsupported content type %q", ct)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, r.maxBytes), finalURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	converter := md.NewConverter(finalURL.Host, true, nil)
	markdown, err := converter.ConvertString(article.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to markdown: %w", err)
	}

	return &Article{
		URL:      finalURL.String(),
		Title:    strings.TrimSpace(article.Title),
		Byline:   strings.TrimSpace(article.Byline),
		SiteName: strings.TrimSpace(article.SiteName),
		Excerpt:  strings.TrimSpace(article.Excerpt),
		Markdown: strings.TrimSpace(markdown),
	}, nil
}

var blockedCIDRs = []*net.IPNet{
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("169.254.0.0/16"),
	mustParseCIDR("::1/128"),
	mustParseCIDR("fc00::/7"),
}

func mustParseCIDR(value string) *net.IPNet {
	_, parsed, err := net.ParseCIDR(value)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR %q: %v", value, err))
	}
	return parsed
}

// isPrivateHost only inspects literal IPs and localhost; names are not resolved
func isPrivateHost(host string) bool {
	host = strings.ToLower(host)
	if host == "" || host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
	}
	for _, cidr := range blockedCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
