package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	Register()

	before := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	IncCacheHit()
	assert.Equal(t, before+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))

	before = testutil.ToFloat64(exports.WithLabelValues("csv"))
	IncExport("csv")
	assert.Equal(t, before+1, testutil.ToFloat64(exports.WithLabelValues("csv")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/requests", "200"))
	IncHTTP("/api/v1/requests", "200")
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/requests", "200")))
}
