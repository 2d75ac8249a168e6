package telemetry

import (
	"github.com/erp/orderdesk/internal/infrastructure/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// QueryCacheCollector exports the counters of a query cache
type QueryCacheCollector struct {
	cache  *cache.QueryCache
	hits   *prometheus.Desc
	misses *prometheus.Desc
	shared *prometheus.Desc
	size   *prometheus.Desc
}

// NewQueryCacheCollector creates a collector for c labelled with name
func NewQueryCacheCollector(c *cache.QueryCache, name string) *QueryCacheCollector {
	labels := prometheus.Labels{"cache": name}
	return &QueryCacheCollector{
		cache:  c,
		hits:   prometheus.NewDesc(namespace+"_cache_hits_total", "Query cache hits.", nil, labels),
		misses: prometheus.NewDesc(namespace+"_cache_misses_total", "Query cache misses.", nil, labels),
		shared: prometheus.NewDesc(namespace+"_cache_shared_fetches_total", "Callers that joined an in-flight fetch.", nil, labels),
		size:   prometheus.NewDesc(namespace+"_cache_entries", "Entries held by the query cache.", nil, labels),
	}
}

// Describe implements prometheus.Collector
func (c *QueryCacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.shared
	ch <- c.size
}

// Collect implements prometheus.Collector
func (c *QueryCacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.shared, prometheus.CounterValue, float64(stats.Shared))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(c.cache.Len()))
}
