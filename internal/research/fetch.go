package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchBodyLimit caps how much of a page is returned to the model.
const fetchBodyLimit = 64 * 1024

// FetchPage retrieves a page body under a fixed wall-clock ceiling.
// This is the only operation in the system with an explicit timeout;
// everything else polls until its external system reports a terminal
// state.
func FetchPage(ctx context.Context, client *http.Client, pageURL string, timeout time.Duration) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchBodyLimit))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(body), nil
}
