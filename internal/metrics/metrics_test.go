package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

func TestObserve(t *testing.T) {
	posted := testutil.ToFloat64(metrics.DocumentsPosted.WithLabelValues("cash_in"))
	rejected := testutil.ToFloat64(metrics.PostingsRejected.WithLabelValues("MissingCustomer"))
	removed := testutil.ToFloat64(metrics.OrphansRemoved)

	metrics.ObservePosting("cash_in")
	metrics.ObserveRejection("MissingCustomer")
	metrics.ObserveRejection("")
	metrics.ObserveOrphansRemoved(3)
	metrics.ObserveOrphansRemoved(0)

	assert.InDelta(t, posted+1, testutil.ToFloat64(metrics.DocumentsPosted.WithLabelValues("cash_in")), 0)
	assert.InDelta(t, rejected+1, testutil.ToFloat64(metrics.PostingsRejected.WithLabelValues("MissingCustomer")), 0)
	assert.InDelta(t, removed+3, testutil.ToFloat64(metrics.OrphansRemoved), 0)
}
