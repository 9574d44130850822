package phrase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("phrase requests rate limited")

// maxBody bounds how much of a response is read
const maxBody = 4096

// HTTPSource fetches phrases from an endpoint template such as
// "https://example.org/words?type={category}". The response is either a
// JSON array of strings or plain text; the first entry or line is used.
type HTTPSource struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewHTTP creates a throttled source. rps <= 0 disables throttling.
func NewHTTP(endpoint string, rps float64, timeout time.Duration) (*HTTPSource, error) {
	if !strings.Contains(endpoint, "{category}") {
		return nil, fmt.Errorf("endpoint %q has no {category} placeholder", endpoint)
	}
	if _, err := url.Parse(strings.ReplaceAll(endpoint, "{category}", "x")); err != nil {
		return nil, fmt.Errorf("endpoint: %w", err)
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &HTTPSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  lim,
	}, nil
}

// Phrase fails fast with ErrRateLimited instead of waiting for a token
func (h *HTTPSource) Phrase(ctx context.Context, category string) (string, error) {
	if !h.limiter.Allow() {
		return "", ErrRateLimited
	}

	u := strings.ReplaceAll(h.endpoint, "{category}", url.QueryEscape(category))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch phrase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch phrase: status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("read phrase: %w", err)
	}
	return parseBody(body)
}

func parseBody(body []byte) (string, error) {
	s := strings.TrimSpace(string(body))
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			return "", fmt.Errorf("decode phrase list: %w", err)
		}
		for _, p := range list {
			if p = strings.TrimSpace(p); p != "" {
				return p, nil
			}
		}
		return "", errors.New("empty phrase list")
	}
	if line, _, _ := strings.Cut(s, "\n"); strings.TrimSpace(line) != "" {
		return strings.TrimSpace(line), nil
	}
	return "", errors.New("empty phrase response")
}
