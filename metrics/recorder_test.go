package metrics

import (
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg, "")

	r.ObserveRequest("GET", 200, 150*time.Millisecond)
	r.ObserveRequest("POST", 429, 20*time.Millisecond)
	r.IncFailure("rate_limit_user")
	r.IncFailure("rate_limit_user")
	r.IncFailure("unclassified")

	assert.Equal(t, float64(2), testutil.ToFloat64(r.failures.WithLabelValues("rate_limit_user")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.failures.WithLabelValues("unclassified")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.requestDuration))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 2)
	for _, mf := range mfs {
		assert.True(t, strings.HasPrefix(mf.GetName(), DefaultNamespace+"_"), mf.GetName())
	}
}

func TestRecorder_Namespace(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg, "custom")
	r.IncFailure("status")

	expected := `
# HELP custom_request_failures_total Failed Imgur API requests by classified kind
# TYPE custom_request_failures_total counter
custom_request_failures_total{kind="status"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "custom_request_failures_total"))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRequest("GET", 200, time.Second)
		r.IncFailure("transport")
	})
}
