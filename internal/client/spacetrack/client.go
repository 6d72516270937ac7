package spacetrack

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
)

const (
	loginPath     = "/ajaxauth/login"
	sessionCookie = "chocolatechip"
)

// ErrUnauthorized means the session was rejected and a fresh login is needed.
var ErrUnauthorized = errors.New("spacetrack: unauthorized")

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) StatusCode() int { return e.Status }

func (e *APIError) Error() string {
	return fmt.Sprintf("spacetrack API error (%d): %s", e.Status, e.Body)
}

// Session is the credential a login yields. Expiry is tracked as data; nothing
// refreshes it in the background.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Valid(now time.Time) bool {
	if strings.TrimSpace(s.Token) == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

type Client struct {
	host       string
	identity   string
	password   string
	sessionTTL time.Duration
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(httpClient *http.Client, host, identity, password string, sessionTTL time.Duration) *Client {
	if host == "" {
		host = "https://www.space-track.org"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if sessionTTL <= 0 {
		sessionTTL = 2 * time.Hour
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		identity:   identity,
		password:   password,
		sessionTTL: sessionTTL,
		httpClient: httpClient,
		now:        time.Now,
	}
}

func (c *Client) Endpoint() string {
	return c.host + "/basicspacedata/query/class/gp"
}

// Login posts the account credentials and returns the session cookie value.
func (c *Client) Login(ctx context.Context) (Session, error) {
	if strings.TrimSpace(c.identity) == "" || c.password == "" {
		return Session{}, errors.New("spacetrack credentials are empty")
	}
	form := url.Values{}
	form.Set("identity", c.identity)
	form.Set("password", c.password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return Session{}, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	// A rejected login still answers 200 with {"Login":"Failed"}.
	if strings.Contains(string(body), `"Failed"`) {
		return Session{}, fmt.Errorf("%w: login rejected", ErrUnauthorized)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie && strings.TrimSpace(ck.Value) != "" {
			return Session{Token: ck.Value, ExpiresAt: c.now().Add(c.sessionTTL)}, nil
		}
	}
	return Session{}, errors.New("spacetrack login returned no session cookie")
}

// QueryGP fetches the latest GP element set for each catalog number.
func (c *Client) QueryGP(ctx context.Context, sess Session, catalogIDs []string) ([]GPRecord, error) {
	ids := make([]string, 0, len(catalogIDs))
	for _, id := range catalogIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, url.PathEscape(id))
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	path := "/NORAD_CAT_ID/" + strings.Join(ids, ",") + "/orderby/NORAD_CAT_ID%20asc/format/json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint()+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sess.Token})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var out []GPRecord
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode gp json: %w", err)
	}
	return out, nil
}
