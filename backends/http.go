package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const userAgent = "fanseek/1.0"

// apiRequest describes one outbound JSON call
type apiRequest struct {
	Method   string
	URL      string
	Headers  map[string]string
	Body     any // marshalled as JSON when non-nil
	Form     string
	Username string
	Password string
}

// doJSON performs req and decodes the JSON reply into out. Failures come back
// as *CategoryError tagged with backend and category.
func doJSON(ctx context.Context, client *http.Client, backend string, category Category, req apiRequest, out any) error {
	wrap := func(code int, err error) error {
		return &CategoryError{Backend: backend, Category: category, Err: err, Code: code}
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Body != nil:
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return wrap(ErrCodeInvalidResponse, fmt.Errorf("failed to marshal request: %w", err))
		}
		body = bytes.NewReader(bodyBytes)
		contentType = "application/json"
	case req.Form != "":
		body = strings.NewReader(req.Form)
		contentType = "application/x-www-form-urlencoded"
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return wrap(ErrCodeNetwork, fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Username != "" && req.Password != "" {
		httpReq.SetBasicAuth(req.Username, req.Password)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return wrap(ErrCodeNetwork, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrap(ErrCodeNetwork, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(respBody))
		if len(detail) > 512 {
			detail = detail[:512]
		}
		if detail == "" {
			detail = resp.Status
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return wrap(ErrCodeAuth, fmt.Errorf("authentication failed: %s", detail))
		case http.StatusTooManyRequests:
			return wrap(ErrCodeRateLimit, fmt.Errorf("rate limited: %s", detail))
		default:
			return wrap(resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail))
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return wrap(ErrCodeInvalidResponse, fmt.Errorf("failed to parse JSON: %w", err))
	}
	return nil
}

func unsupported(backend string, category Category) error {
	return &CategoryError{
		Backend:  backend,
		Category: category,
		Err:      fmt.Errorf("category %q is not supported", category),
		Code:     ErrCodeUnsupported,
	}
}

func notConfigured(backend string, category Category, what string) error {
	return &CategoryError{
		Backend:  backend,
		Category: category,
		Err:      fmt.Errorf("%s not configured", what),
		Code:     ErrCodeUnavailable,
	}
}
