package imgur

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAccessToken authenticates requests as a user instead of the
// application's Client-ID.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = token
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithErrorHook replaces Classify as the handler for failed exchanges.
func WithErrorHook(hook ErrorHook) Option {
	return func(c *Client) {
		if hook != nil {
			c.onError = hook
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// WithMaxErrorBody caps how much of a failed response body is buffered.
func WithMaxErrorBody(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxErrBody = n
		}
	}
}

// WithConcurrency sets how many requests GetAll keeps in flight.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}
