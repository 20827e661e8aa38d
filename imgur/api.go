package imgur

import (
	"context"
	"net/url"
)

// API is the base for endpoint groups: it performs a request through a
// Transport and returns the parsed envelope.
type API struct {
	transport Transport
}

// NewAPI creates an API backed by t.
func NewAPI(t Transport) *API {
	return &API{transport: t}
}

// Get performs a GET request and returns the parsed response
func (a *API) Get(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	resp, err := a.transport.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return a.transport.ParseResponse(resp)
}

// Post performs a POST request and returns the parsed response
func (a *API) Post(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	resp, err := a.transport.Post(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return a.transport.ParseResponse(resp)
}
