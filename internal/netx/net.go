// Package netx contains small networking helpers shared by the client.
package netx

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CheckOnline probes the given URL with a short HEAD request and reports
// whether the server answered at all. Any HTTP status counts as online; only
// transport-level failures (refused connection, DNS, timeout) count as
// offline.
func CheckOnline(ctx context.Context, client *http.Client, url string) error {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("building probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()

	return nil
}
