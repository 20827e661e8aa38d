package imgur

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Rate limit headers sent by the API
const (
	HeaderUserRemaining   = "X-RateLimit-UserRemaining"
	HeaderUserLimit       = "X-RateLimit-UserLimit"
	HeaderClientRemaining = "X-RateLimit-ClientRemaining"
	HeaderClientLimit     = "X-RateLimit-ClientLimit"
	HeaderUserReset       = "X-RateLimit-UserReset"
)

const dateLayout = "2006-01-02"

// Count is an optional integer header value.
type Count struct {
	Value int64
	Valid bool
}

// String returns the decimal value, or an empty string when absent.
func (c Count) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatInt(c.Value, 10)
}

// Exhausted reports whether the value is present and exactly zero.
func (c Count) Exhausted() bool {
	return c.Valid && c.Value == 0
}

// parseCount parses a header value as a base-10 integer. Anything else,
// including an absent header, is treated as no value.
func parseCount(raw string, ok bool) Count {
	if !ok {
		return Count{}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return Count{}
	}
	return Count{Value: n, Valid: true}
}

// parseEpoch parses Unix epoch seconds into a UTC time.
func parseEpoch(raw string, ok bool) time.Time {
	c := parseCount(raw, ok)
	if !c.Valid {
		return time.Time{}
	}
	return time.Unix(c.Value, 0).UTC()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// RateLimit is a snapshot of all rate limit headers on a response.
type RateLimit struct {
	UserRemaining   Count
	UserLimit       Count
	ClientRemaining Count
	ClientLimit     Count
	UserReset       time.Time
}

// ReadRateLimit parses every rate limit header from h.
func ReadRateLimit(h http.Header) RateLimit {
	lookup := func(name string) (string, bool) {
		vals := h.Values(name)
		if len(vals) == 0 {
			return "", false
		}
		return vals[0], true
	}

	return RateLimit{
		UserRemaining:   parseCount(lookup(HeaderUserRemaining)),
		UserLimit:       parseCount(lookup(HeaderUserLimit)),
		ClientRemaining: parseCount(lookup(HeaderClientRemaining)),
		ClientLimit:     parseCount(lookup(HeaderClientLimit)),
		UserReset:       parseEpoch(lookup(HeaderUserReset)),
	}
}

// ResetDate returns the user reset as a UTC calendar date.
func (r RateLimit) ResetDate() string {
	return formatDate(r.UserReset)
}
