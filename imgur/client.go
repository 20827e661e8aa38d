package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public Imgur API host
	DefaultBaseURL = "https://api.imgur.com"

	defaultTimeout     = 30 * time.Second
	defaultMaxErrBody  = 1 << 20
	defaultConcurrency = 4
	requestIDHeader    = "X-Request-ID"
)

// Transport performs raw API requests. Client implements it.
type Transport interface {
	Get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error)
	Post(ctx context.Context, endpoint string, params url.Values) (*http.Response, error)
	ParseResponse(resp *http.Response) (*Response, error)
}

// Recorder receives request observations. A nil Recorder is ignored.
type Recorder interface {
	ObserveRequest(method string, status int, d time.Duration)
	IncFailure(kind string)
}

// Client represents an Imgur API client
type Client struct {
	baseURL     string
	clientID    string
	accessToken string
	userAgent   string
	httpClient  *http.Client
	logger      zerolog.Logger
	onError     ErrorHook
	recorder    Recorder
	maxErrBody  int64
	concurrency int
}

// NewClient creates a new Imgur client. baseURL defaults to DefaultBaseURL
// when empty.
func NewClient(baseURL, clientID string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if clientID == "" {
		return nil, fmt.Errorf("%w: client ID is required", ErrInvalidConfig)
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL must be absolute: %q", ErrInvalidConfig, baseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		clientID:  clientID,
		userAgent: "imgo",
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:      logger,
		onError:     Classify,
		maxErrBody:  defaultMaxErrBody,
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Get performs an authenticated GET request. params are sent as the query string.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, params)
}

// Post performs an authenticated POST request. params are sent form encoded.
func (c *Client) Post(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, params)
}

// ParseResponse decodes a successful response envelope and closes the body.
func (c *Client) ParseResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// RateLimit fetches the current credit headers from the credits endpoint.
// The snapshot is also returned when the request itself fails with a
// classified error, so an exhausted quota can still be inspected.
func (c *Client) RateLimit(ctx context.Context) (RateLimit, error) {
	req, resp, requestID, err := c.send(ctx, http.MethodGet, "/3/credits", nil)
	if err != nil {
		return RateLimit{}, err
	}

	rl := ReadRateLimit(resp.Header)
	if resp.StatusCode >= http.StatusBadRequest {
		return rl, c.handleFailure(req, resp, requestID)
	}

	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return rl, fmt.Errorf("failed to read response body: %w", err)
	}

	return rl, nil
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// do performs an HTTP request with authentication and runs the error hook on
// any failed response.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values) (*http.Response, error) {
	req, resp, requestID, err := c.send(ctx, method, endpoint, params)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	return nil, c.handleFailure(req, resp, requestID)
}

// send builds and performs the request and records it. The response is
// returned unread whatever its status.
func (c *Client) send(ctx context.Context, method, endpoint string, params url.Values) (*http.Request, *http.Response, string, error) {
	requestURL := c.resolve(endpoint)

	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			sep := "?"
			if strings.Contains(requestURL, "?") {
				sep = "&"
			}
			requestURL += sep + params.Encode()
		}
	} else if params != nil {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.incFailure("transport")
		return nil, nil, "", fmt.Errorf("request failed: %w", err)
	}

	if c.recorder != nil {
		c.recorder.ObserveRequest(method, resp.StatusCode, elapsed)
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", requestURL).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("Imgur API request")

	return req, resp, requestID, nil
}

// handleFailure buffers the failed body, lets the error hook classify it and
// falls back to a StatusError when the hook does not claim it.
func (c *Client) handleFailure(req *http.Request, resp *http.Response, requestID string) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxErrBody))
	if err != nil {
		c.incFailure("transport")
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if herr := c.onError(NewExchange(resp, raw)); herr != nil {
		kind := Kind(herr)
		c.incFailure(kind)
		c.logger.Warn().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Str("kind", kind).
			Err(herr).
			Msg("Imgur API request failed")
		return herr
	}

	c.incFailure("status")
	return &StatusError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(raw),
	}
}

func (c *Client) authorization() string {
	if c.accessToken != "" {
		return "Bearer " + c.accessToken
	}
	return "Client-ID " + c.clientID
}

func (c *Client) incFailure(kind string) {
	if c.recorder != nil {
		c.recorder.IncFailure(kind)
	}
}
