package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusObserver struct {
	evalCounter     *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	mutationCounter *prometheus.CounterVec
}

var (
	evalCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flaggate_evaluations_total",
		Help: "Total flag evaluations by decision reason",
	}, []string{"reason"})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flaggate_cache_hits_total",
		Help: "Flag config cache hits",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flaggate_cache_misses_total",
		Help: "Flag config cache misses",
	})
	mutationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flaggate_mutations_total",
		Help: "Committed flag mutations by action",
	}, []string{"action"})
)

func NewPrometheusObserver() Observer {
	return &prometheusObserver{
		evalCounter:     evalCounter,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		mutationCounter: mutationCounter,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (p *prometheusObserver) RecordEvaluation(reason string) {
	p.evalCounter.WithLabelValues(reason).Inc()
}

func (p *prometheusObserver) RecordCacheHit() {
	p.cacheHits.Inc()
}

func (p *prometheusObserver) RecordCacheMiss() {
	p.cacheMisses.Inc()
}

func (p *prometheusObserver) RecordMutation(action string) {
	p.mutationCounter.WithLabelValues(action).Inc()
}
