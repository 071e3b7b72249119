package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

var ErrQuotaExceeded = errors.New("search quota exceeded")

type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher is the opaque web-search capability the tools depend on.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// GoogleClient queries the Google Custom Search JSON API. The free
// tier allows 100 queries per day, so calls go through a rate limiter
// owned by this instance.
type GoogleClient struct {
	APIKey   string
	EngineID string
	HTTP     *http.Client
	limiter  *rate.Limiter
}

func NewGoogleClient(apiKey, engineID string) *GoogleClient {
	return &GoogleClient{
		APIKey:   apiKey,
		EngineID: engineID,
		HTTP:     http.DefaultClient,
		// 100/day spread out, with a small burst for interactive use.
		limiter: rate.NewLimiter(rate.Limit(100.0/86400.0), 5),
	}
}

func (g *GoogleClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if !g.limiter.Allow() {
		return nil, ErrQuotaExceeded
	}

	u := url.URL{
		Scheme: "https",
		Host:   "www.googleapis.com",
		Path:   "/customsearch/v1",
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("cx", g.EngineID)
	q.Set("key", g.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		return nil, ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var body struct {
		Items []SearchResult `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return body.Items, nil
}
