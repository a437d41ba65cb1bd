package httpds

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
)

// Remote is a datasource.Source for one CSV document behind a URL.
type Remote struct {
	c   *Client
	url string
}

// ForInput returns the Remote for the logical input name under base, i.e.
// base/<name>.csv.
func ForInput(c *Client, base, name string) *Remote {
	return &Remote{c: c, url: strings.TrimRight(base, "/") + "/" + name + ".csv"}
}

// URL returns the document URL.
func (r *Remote) URL() string { return r.url }

// Open fetches the document. A 404 or 410 wraps fs.ErrNotExist so callers
// treat it like a missing local file.
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := r.c.Get(ctx, r.url)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: %w", r.url, fs.ErrNotExist)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status %s", r.url, resp.Status)
	}
	return resp.Body, nil
}
