package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(bookingTransition.WithLabelValues("confirmed"))
	IncTransition("confirmed")
	require.Equal(t, before+1, testutil.ToFloat64(bookingTransition.WithLabelValues("confirmed")))

	before = testutil.ToFloat64(bookingFailed.WithLabelValues("approve", "internal"))
	IncFailure("approve", "")
	require.Equal(t, before+1, testutil.ToFloat64(bookingFailed.WithLabelValues("approve", "internal")))

	before = testutil.ToFloat64(settlementAmount.WithLabelValues("tax"))
	AddSettlement(100, 10, 5)
	require.Equal(t, before+5, testutil.ToFloat64(settlementAmount.WithLabelValues("tax")))

	before = testutil.ToFloat64(rateLimited)
	IncRateLimited()
	require.Equal(t, before+1, testutil.ToFloat64(rateLimited))
}
