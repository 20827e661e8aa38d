package cmd

import (
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/imgo/imgur"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    url.Values
		wantErr bool
	}{
		{name: "none", pairs: nil, want: url.Values{}},
		{name: "single", pairs: []string{"title=holiday"}, want: url.Values{"title": {"holiday"}}},
		{name: "repeated key", pairs: []string{"ids=a", "ids=b"}, want: url.Values{"ids": {"a", "b"}}},
		{name: "value with equals", pairs: []string{"q=a=b"}, want: url.Values{"q": {"a=b"}}},
		{name: "empty value", pairs: []string{"q="}, want: url.Values{"q": {""}}},
		{name: "missing equals", pairs: []string{"title"}, wantErr: true},
		{name: "empty key", pairs: []string{"=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintResponse_SelectError(t *testing.T) {
	old := selectExpr
	t.Cleanup(func() { selectExpr = old })

	selectExpr = "data.link =="
	err := printResponse(io.Discard, &imgur.Response{Data: []byte(`{}`), Success: true, Status: 200})
	assert.Error(t, err)
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(imgur.Count{}))
	assert.Equal(t, "0", orDash(imgur.Count{Valid: true}))
	assert.Equal(t, "12500", orDash(imgur.Count{Value: 12500, Valid: true}))
}
