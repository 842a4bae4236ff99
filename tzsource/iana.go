package tzsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	ianaBaseURL    = "https://data.iana.org/time-zones/"
	latestDataPath = "tzdata-latest.tar.gz"
)

// Client downloads release archives from the IANA data server. The
// zero value is ready to use. Callers are advised to keep the ETag
// returned by Latest and pass it back on the next call, so an
// unchanged release is not downloaded again.
type Client struct {
	// HTTPClient overrides http.DefaultClient, for timeouts or for
	// canned responses in tests.
	HTTPClient *http.Client
}

// DefaultClient backs the package-level Latest.
var DefaultClient = &Client{}

// Latest downloads and unpacks the current release. If the server
// answers 304 Not Modified for the given ETag, the returned Archive is
// nil and the ETag is echoed back.
func Latest(ctx context.Context, etag string) (*Archive, string, error) {
	return DefaultClient.Latest(ctx, etag)
}

// Latest downloads and unpacks the current release. See the
// package-level Latest.
func (c *Client) Latest(ctx context.Context, etag string) (*Archive, string, error) {
	body, newEtag, err := c.fetch(ctx, latestDataPath, etag)
	if err != nil {
		return nil, "", err
	}
	if body == nil {
		return nil, etag, nil // not modified
	}
	defer func() {
		// Drain before closing so the connection can be reused.
		_, _ = io.Copy(io.Discard, body)
		_ = body.Close()
	}()

	a, err := ReadArchive(body)
	if err != nil {
		return nil, "", err
	}
	return a, newEtag, nil
}

// fetch issues a conditional GET against the data server. A nil body
// with a nil error means 304 Not Modified.
func (c *Client) fetch(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	u, err := url.JoinPath(ianaBaseURL, path)
	if err != nil {
		return nil, "", fmt.Errorf("join URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request for %q: %w", u, err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %q: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotModified {
			return nil, etag, nil
		}
		return nil, "", fmt.Errorf("GET %q: unexpected status: %s", u, resp.Status)
	}
	return resp.Body, resp.Header.Get("Etag"), nil
}
