// Package wikiapi is a small read-only client for the MediaWiki Action API
package wikiapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrNoURL is returned when the wiki knows no file for a title
	ErrNoURL = errors.New("no file URL for title")
	// ErrNoText is returned when a parse response carries no HTML
	ErrNoText = errors.New("parse response has no text")
)

// DefaultAPIPath is where MediaWiki installs api.php by default
const DefaultAPIPath = "/w/api.php"

// Client talks to one wiki's api.php
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
}

// Endpoint builds the api.php URL for a wiki host
func Endpoint(scheme, host, apiPath string) string {
	if scheme == "" {
		scheme = "https"
	}
	if apiPath == "" {
		apiPath = DefaultAPIPath
	}
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}
	return scheme + "://" + host + apiPath
}

// NewClient creates a client for the api.php at endpoint. A nil
// httpClient uses http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// ImageURL returns the direct download URL of a file page, e.g.
// "File:Map.png"
func (c *Client) ImageURL(ctx context.Context, fileTitle string) (string, error) {
	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"imageinfo"},
		"iiprop":        {"url"},
		"titles":        {fileTitle},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create imageinfo request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	if err := apiError(body); err != nil {
		return "", err
	}
	link := gjson.GetBytes(body, "query.pages.0.imageinfo.0.url").String()
	if link == "" {
		return "", fmt.Errorf("%w: %s", ErrNoURL, fileTitle)
	}
	return link, nil
}

// ParseWikitext renders wikitext to HTML with the wiki's own parser
func (c *Client) ParseWikitext(ctx context.Context, text string) (string, error) {
	form := url.Values{
		"action":             {"parse"},
		"format":             {"json"},
		"formatversion":      {"2"},
		"contentmodel":       {"wikitext"},
		"prop":               {"text"},
		"disableeditsection": {"1"},
		"disablelimitreport": {"1"},
		"text":               {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	if err := apiError(body); err != nil {
		return "", err
	}
	html := gjson.GetBytes(body, "parse.text")
	if !html.Exists() {
		return "", ErrNoText
	}
	return html.String(), nil
}

// Download opens the file at rawURL. The caller closes the body.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download failed: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api request failed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read api response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("api response is not JSON")
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func apiError(body []byte) error {
	e := gjson.GetBytes(body, "error")
	if !e.Exists() {
		return nil
	}
	return fmt.Errorf("api error %s: %s", e.Get("code").String(), e.Get("info").String())
}
