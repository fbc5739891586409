package imagecheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPValidator implements Service using lightweight HEAD probes with a GET
// fallback for servers that reject HEAD.
type HTTPValidator struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPValidator creates a new HTTP-based image reachability validator
func NewHTTPValidator(timeout time.Duration) Service {
	return newHTTPValidator(timeout)
}

// newHTTPValidator creates the concrete implementation
func newHTTPValidator(timeout time.Duration) *HTTPValidator {
	return &HTTPValidator{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Allow up to 5 redirects
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		timeout: timeout,
	}
}

// Check probes each URL sequentially. Pages hold at most two image URLs per
// creative, so there is nothing to gain from fanning out.
func (v *HTTPValidator) Check(ctx context.Context, urls []string) (map[string]bool, error) {
	results := make(map[string]bool, len(urls))

	var probeErrors int
	for _, u := range urls {
		if u == "" {
			continue
		}

		ok, err := v.probe(ctx, u)
		if err != nil {
			probeErrors++
			results[u] = false
			continue
		}
		results[u] = ok
	}

	if len(results) > 0 && probeErrors == len(results) {
		return results, fmt.Errorf("all %d image probes failed", probeErrors)
	}

	return results, nil
}

// probe issues a HEAD request, falling back to GET when the server rejects
// HEAD outright (405)
func (v *HTTPValidator) probe(ctx context.Context, url string) (bool, error) {
	resp, err := v.request(ctx, http.MethodHead, url)
	if err != nil {
		return false, err
	}

	if resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, err = v.request(ctx, http.MethodGet, url)
		if err != nil {
			return false, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	// Some CDNs serve images without a content type; only an explicitly
	// non-image type disqualifies the URL
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") &&
		!strings.HasPrefix(contentType, "application/octet-stream") {
		return false, nil
	}

	return true, nil
}

func (v *HTTPValidator) request(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "CreativeSync-ImageCheck/1.0")
	req.Header.Set("Accept", "image/*")

	return v.client.Do(req)
}
