package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		accessDecisionsTotal,
		membershipLookupsTotal,
		cacheRequestsTotal,
	)
}

var (
	accessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamegate_access_decisions_total",
			Help: "Access levels granted per operation.",
		},
		[]string{"op", "level"}, // level: none|partial|full
	)

	membershipLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamegate_membership_lookups_total",
			Help: "getChatMember lookups by channel and outcome.",
		},
		[]string{"channel", "outcome"}, // outcome: member|not_member|error
	)

	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamegate_cache_requests_total",
			Help: "Tracks cache hits and misses.",
		},
		[]string{"cache", "result"},
	)
)

func IncAccessDecision(op, level string) {
	accessDecisionsTotal.WithLabelValues(norm(op), norm(level)).Inc()
}

// IncMembershipLookup takes the channel role ("main", "verification"), not
// the chat id, to keep label cardinality fixed.
func IncMembershipLookup(channel, outcome string) {
	membershipLookupsTotal.WithLabelValues(norm(channel), norm(outcome)).Inc()
}

func IncCacheRequest(cache, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cache), norm(result)).Inc()
}
