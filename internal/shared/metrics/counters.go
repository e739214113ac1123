package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BetsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bets_placed_total",
		Help: "Bets accepted by the lifecycle manager.",
	})

	BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bets_settled_total",
		Help: "Bets settled, by outcome.",
	}, []string{"outcome"}) // "win" | "loss"

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "read_cache_hits_total",
		Help: "Read-through cache hits per key family.",
	}, []string{"family"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "read_cache_misses_total",
		Help: "Read-through cache misses per key family.",
	}, []string{"family"})

	CacheErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "read_cache_errors_total",
		Help: "Cache operations that failed and were bypassed.",
	})
)
