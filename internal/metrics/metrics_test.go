package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersByLabel(t *testing.T) {
	before := testutil.ToFloat64(accessDecisionsTotal.WithLabelValues("start", "full"))
	IncAccessDecision(" Start ", "FULL")
	assert.Equal(t, before+1, testutil.ToFloat64(accessDecisionsTotal.WithLabelValues("start", "full")))

	before = testutil.ToFloat64(membershipLookupsTotal.WithLabelValues("main", "unknown"))
	IncMembershipLookup("main", "")
	assert.Equal(t, before+1, testutil.ToFloat64(membershipLookupsTotal.WithLabelValues("main", "unknown")))

	before = testutil.ToFloat64(messagesSentTotal.WithLabelValues("yes"))
	IncMessageSent(true)
	assert.Equal(t, before+1, testutil.ToFloat64(messagesSentTotal.WithLabelValues("yes")))

	before = testutil.ToFloat64(handlerTotal.WithLabelValues("start", "ok"))
	ObserveHandler("start", "ok", 30*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(handlerTotal.WithLabelValues("start", "ok")))
}

func TestMustRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)
	MustRegister(reg)

	IncRateLimited()
	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["gamegate_rate_limited_total"])
}
