package celestrak

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const gpPath = "/NORAD/elements/gp.php"

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) StatusCode() int { return e.Status }

func (e *APIError) Error() string {
	return fmt.Sprintf("celestrak API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://celestrak.org"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: httpClient,
	}
}

// Endpoint is the GP query URL without parameters.
func (c *Client) Endpoint() string {
	return c.host + gpPath
}

// Query selects either a named group or a single catalog number.
type Query struct {
	Group         string
	CatalogNumber string
}

func (q Query) values(format string) (url.Values, error) {
	v := url.Values{}
	switch {
	case strings.TrimSpace(q.Group) != "":
		v.Set("GROUP", strings.TrimSpace(q.Group))
	case strings.TrimSpace(q.CatalogNumber) != "":
		v.Set("CATNR", strings.TrimSpace(q.CatalogNumber))
	default:
		return nil, fmt.Errorf("celestrak query needs a group or catalog number")
	}
	v.Set("FORMAT", format)
	return v, nil
}

// FetchGP returns the OMM element list in JSON form.
func (c *Client) FetchGP(ctx context.Context, q Query) ([]GPElement, error) {
	params, err := q.values("json")
	if err != nil {
		return nil, err
	}
	body, err := c.doRequest(ctx, params, "application/json")
	if err != nil {
		return nil, err
	}
	// A catalog number without a current element set comes back as plain text.
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || !strings.HasPrefix(trimmed, "[") {
		return nil, nil
	}
	var out []GPElement
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode gp json: %w", err)
	}
	return out, nil
}

// FetchTLE returns the paired line-oriented listing for the same query.
func (c *Client) FetchTLE(ctx context.Context, q Query) (string, error) {
	params, err := q.values("tle")
	if err != nil {
		return "", err
	}
	body, err := c.doRequest(ctx, params, "text/plain")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) doRequest(ctx context.Context, query url.Values, accept string) ([]byte, error) {
	fullURL := c.Endpoint() + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
