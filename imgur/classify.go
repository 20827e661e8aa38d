package imgur

import (
	"encoding/json"
	"net/http"
)

// Exchange is a completed request/response pair under inspection.
type Exchange interface {
	// IsClientError reports whether the response status is 4xx.
	IsClientError() bool
	// Header returns the first value of the named header.
	Header(name string) (string, bool)
	// Body returns the raw response body.
	Body() string
}

// ErrorHook inspects a failed exchange and returns the error that should
// replace the parsed response, or nil to let the caller's default handling run.
type ErrorHook func(Exchange) error

// errorBody is the shape of a non rate limit error response.
type errorBody struct {
	Data *struct {
		Request *string `json:"request"`
		Error   *string `json:"error"`
	} `json:"data"`
}

// Classify turns a client error exchange into exactly one typed error.
//
// Headers are read in a fixed order and only as far as needed: the client
// headers are skipped once the user quota is exhausted, the reset header is
// only read for an exhausted client quota, and the body is only read when no
// quota is exhausted. Non client errors return nil without touching the
// exchange further.
func Classify(ex Exchange) error {
	if !ex.IsClientError() {
		return nil
	}

	userRemaining := parseCount(ex.Header(HeaderUserRemaining))
	userLimit := parseCount(ex.Header(HeaderUserLimit))
	if userRemaining.Exhausted() {
		return &RateLimitError{Scope: ScopeUser, Limit: userLimit}
	}

	clientRemaining := parseCount(ex.Header(HeaderClientRemaining))
	clientLimit := parseCount(ex.Header(HeaderClientLimit))
	if clientRemaining.Exhausted() {
		return &RateLimitError{
			Scope:   ScopeClient,
			Limit:   clientLimit,
			ResetAt: parseEpoch(ex.Header(HeaderUserReset)),
		}
	}

	return classifyBody(ex.Body())
}

func classifyBody(body string) error {
	var eb errorBody
	if err := json.Unmarshal([]byte(body), &eb); err != nil {
		return &UnclassifiedError{Body: body}
	}
	if eb.Data == nil || eb.Data.Request == nil || eb.Data.Error == nil {
		return &UnclassifiedError{Body: body}
	}
	return &RequestError{Request: *eb.Data.Request, Message: *eb.Data.Error}
}

// responseExchange adapts a buffered *http.Response to Exchange.
type responseExchange struct {
	resp *http.Response
	body []byte
}

// NewExchange wraps resp and its already-read body. The body of resp is not
// consumed.
func NewExchange(resp *http.Response, body []byte) Exchange {
	return &responseExchange{resp: resp, body: body}
}

func (e *responseExchange) IsClientError() bool {
	return e.resp.StatusCode >= 400 && e.resp.StatusCode < 500
}

func (e *responseExchange) Header(name string) (string, bool) {
	vals := e.resp.Header.Values(name)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func (e *responseExchange) Body() string {
	return string(e.body)
}
