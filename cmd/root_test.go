package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/imgo/imgur"
)

// runCLI executes the root command against a test server and returns what
// was printed and logged
func runCLI(t *testing.T, handler http.HandlerFunc, metricsEnabled bool, args ...string) (string, string, error) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`
api:
  base_url: %s
  client_id: test-client
logging:
  level: debug
  format: json
metrics:
  enabled: %t
`, srv.URL, metricsEnabled)), 0o600))

	var stdout, logs bytes.Buffer

	oldOutput, oldLevel := logOutput, zerolog.GlobalLevel()
	t.Cleanup(func() {
		logOutput = oldOutput
		zerolog.SetGlobalLevel(oldLevel)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	logOutput = &logs
	params, selectExpr, registry = nil, "", nil

	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))

	err := execute()
	return stdout.String(), logs.String(), err
}

// logEntries decodes JSON log lines with the given message
func logEntries(t *testing.T, logs, message string) []map[string]any {
	t.Helper()

	var entries []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(logs))
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		if entry["message"] == message {
			entries = append(entries, entry)
		}
	}
	return entries
}

func userLimitHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(imgur.HeaderUserRemaining, "0")
	w.Header().Set(imgur.HeaderUserLimit, "10")
	w.WriteHeader(http.StatusTooManyRequests)
}

func TestExecute_FailedRequestLogsMetrics(t *testing.T) {
	_, logs, err := runCLI(t, userLimitHandler, true, "get", "/3/x")
	require.Error(t, err)
	assert.EqualError(t, err, "No user credits available. The limit is 10")

	var failures []map[string]any
	for _, entry := range logEntries(t, logs, "Request metric") {
		if entry["metric"] == "imgo_request_failures_total" {
			failures = append(failures, entry)
		}
	}
	require.Len(t, failures, 1)
	assert.Equal(t, "rate_limit_user", failures[0]["kind"])
	assert.Equal(t, float64(1), failures[0]["value"])

	var stderr bytes.Buffer
	reportError(&stderr, err)
	assert.Equal(t, "Error: No user credits available. The limit is 10\nExhausted quota: user\n", stderr.String())
}

func TestExecute_MetricsDisabled(t *testing.T) {
	_, logs, err := runCLI(t, userLimitHandler, false, "get", "/3/x")
	require.Error(t, err)
	assert.True(t, imgur.IsRateLimited(err))
	assert.Empty(t, logEntries(t, logs, "Request metric"))
	assert.Len(t, logEntries(t, logs, "Imgur API request failed"), 1)
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "client scope with reset",
			err: &imgur.RateLimitError{
				Scope:   imgur.ScopeClient,
				Limit:   imgur.Count{Value: 12500, Valid: true},
				ResetAt: time.Unix(1441401387, 0).UTC(),
			},
			want: "Error: No application credits available. The limit is 12500 and will be reset at 2015-09-04\n" +
				"Exhausted quota: client\n" +
				"Credits reset at: 2015-09-04\n",
		},
		{
			name: "wrapped rate limit",
			err:  fmt.Errorf("/3/a: %w", &imgur.RateLimitError{Scope: imgur.ScopeUser, Limit: imgur.Count{Value: 5, Valid: true}}),
			want: "Error: /3/a: No user credits available. The limit is 5\nExhausted quota: user\n",
		},
		{
			name: "other error",
			err:  errors.New("boom"),
			want: "Error: boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestGet_SinglePathSelect(t *testing.T) {
	var query string
	stdout, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("size")
		assert.Equal(t, "/3/image/abc", r.URL.Path)
		io.WriteString(w, `{"data":{"id":"abc","link":"https://i.imgur.com/abc.png"},"success":true,"status":200}`)
	}, false, "get", "/3/image/abc", "--param", "size=large", "--select", "data.link")

	require.NoError(t, err)
	assert.Equal(t, "https://i.imgur.com/abc.png\n", stdout)
	assert.Equal(t, "large", query)
}

func TestGet_MultiplePaths(t *testing.T) {
	stdout, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":%q,"success":true,"status":200}`, r.URL.Path)
	}, false, "get", "/3/a", "/3/b", "/3/c")

	require.NoError(t, err)
	assert.Equal(t, "\"/3/a\"\n\"/3/b\"\n\"/3/c\"\n", stdout)
}

func TestGet_MultiplePathsRejectParams(t *testing.T) {
	_, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, false, "get", "/3/a", "/3/b", "--param", "q=x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--param cannot be combined")
}

func TestPost(t *testing.T) {
	var (
		method string
		title  string
	)
	stdout, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		assert.NoError(t, r.ParseForm())
		title = r.PostForm.Get("title")
		io.WriteString(w, `{"data":{"id":"xyz","title":"holiday"},"success":true,"status":200}`)
	}, false, "post", "/3/album", "--param", "title=holiday", "--select", "data.id")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "holiday", title)
	assert.Equal(t, "xyz\n", stdout)
}

func TestPost_StructuredError(t *testing.T) {
	_, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"data":{"request":"/3/album","error":"title too long"}}`)
	}, false, "post", "/3/album")

	require.Error(t, err)
	assert.EqualError(t, err, `Request to: /3/album failed with: "title too long"`)
	assert.ErrorIs(t, err, imgur.ErrRequestFailed)
}

func TestLimits(t *testing.T) {
	stdout, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(imgur.HeaderUserRemaining, "1990")
		w.Header().Set(imgur.HeaderUserLimit, "2000")
		w.Header().Set(imgur.HeaderClientRemaining, "12000")
		w.Header().Set(imgur.HeaderClientLimit, "12500")
		io.WriteString(w, `{"data":{},"success":true,"status":200}`)
	}, false, "limits")

	require.NoError(t, err)
	assert.Contains(t, stdout, fmt.Sprintf("%-14s %15s %15s\n", "user", "1990", "2000"))
	assert.Contains(t, stdout, fmt.Sprintf("%-14s %15s %15s\n", "application", "12000", "12500"))
	assert.NotContains(t, stdout, "Credits reset at")
}

func TestLimits_ExhaustedQuotaStillPrintsTable(t *testing.T) {
	stdout, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(imgur.HeaderUserRemaining, "50")
		w.Header().Set(imgur.HeaderUserLimit, "2000")
		w.Header().Set(imgur.HeaderClientRemaining, "0")
		w.Header().Set(imgur.HeaderClientLimit, "12500")
		w.Header().Set(imgur.HeaderUserReset, "1441401387")
		w.WriteHeader(http.StatusTooManyRequests)
	}, false, "limits")

	require.Error(t, err)
	rl, ok := imgur.AsRateLimit(err)
	require.True(t, ok)
	assert.Equal(t, imgur.ScopeClient, rl.Scope)

	assert.Contains(t, stdout, fmt.Sprintf("%-14s %15s %15s\n", "application", "0", "12500"))
	assert.Contains(t, stdout, "Credits reset at: 2015-09-04\n")
}
