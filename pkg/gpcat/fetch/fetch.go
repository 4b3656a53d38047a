package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/gpcat/pkg/gpcat/internalerr"
)

// Default source of the Google product taxonomy
const (
	DefaultURL     = "https://www.google.com/basepages/producttype/taxonomy.en-US.txt"
	DefaultTimeout = 30 * time.Second
)

// Client downloads the taxonomy text
type Client struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
	// RawPath, when set, receives a verbatim copy of the downloaded text.
	RawPath string
}

// Fetch downloads the taxonomy and returns it as a string. Any transport
// error, timeout or non-2xx status is returned wrapped in
// internalerr.ErrFetch. An HTML body is rejected with
// internalerr.ErrUnexpectedContent.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	url := c.URL
	if url == "" {
		url = DefaultURL
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %v", internalerr.ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: GET %s: HTTP %d", internalerr.ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", internalerr.ErrFetch, url, err)
	}

	if looksLikeHTML(body) {
		return "", fmt.Errorf("%w: %s returned an HTML page", internalerr.ErrUnexpectedContent, url)
	}

	if c.RawPath != "" {
		if err := os.WriteFile(c.RawPath, body, 0644); err != nil {
			return "", fmt.Errorf("save raw taxonomy %s: %w", c.RawPath, err)
		}
	}

	return string(body), nil
}

// looksLikeHTML reports whether the body opens with a doctype or an <html>,
// <head> or <body> tag, which is what error and consent pages look like.
func looksLikeHTML(body []byte) bool {
	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.DoctypeToken:
			return true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "html", "head", "body":
				return true
			}
			return false
		case html.TextToken:
			if len(bytes.TrimSpace(z.Text())) > 0 {
				return false
			}
		case html.CommentToken:
			// "<!-- ... -->" before the root element
		default:
			return false
		}
	}
}
