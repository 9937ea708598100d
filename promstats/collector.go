// Package promstats exports slabpool statistics as Prometheus metrics.
package promstats

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pavanmanishd/slabpool"
)

// StatsSource provides pool snapshots. *slabpool.SafePool satisfies it; a
// bare *slabpool.Pool does too but must not be used concurrently.
type StatsSource interface {
	Metrics() slabpool.PoolMetrics
}

// Collector implements prometheus.Collector over a StatsSource. Each scrape
// takes one snapshot.
type Collector struct {
	src StatsSource

	poolBytes       *prometheus.Desc
	freeBytes       *prometheus.Desc
	idleBytes       *prometheus.Desc
	fallbackGranted *prometheus.Desc
	fallbacks       *prometheus.Desc
	systemFrees     *prometheus.Desc
	ignoredFrees    *prometheus.Desc
	doubleFrees     *prometheus.Desc
	classFree       *prometheus.Desc
	classAllocated  *prometheus.Desc
}

// NewCollector returns a collector whose metric names start with namespace.
func NewCollector(src StatsSource, namespace string) *Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "slabpool", n)
	}
	classLabels := []string{"block_size"}
	return &Collector{
		src:             src,
		poolBytes:       prometheus.NewDesc(name("pool_bytes"), "Nominal pool budget in bytes.", nil, nil),
		freeBytes:       prometheus.NewDesc(name("free_bytes"), "Remaining pool budget in bytes.", nil, nil),
		idleBytes:       prometheus.NewDesc(name("idle_bytes"), "Bytes idle on size-class free lists.", nil, nil),
		fallbackGranted: prometheus.NewDesc(name("fallback_granted_bytes"), "Budget debited by system allocator fallbacks.", nil, nil),
		fallbacks:       prometheus.NewDesc(name("fallback_allocations_total"), "Allocations served by the system allocator.", nil, nil),
		systemFrees:     prometheus.NewDesc(name("system_frees_total"), "Deallocations passed to the system allocator.", nil, nil),
		ignoredFrees:    prometheus.NewDesc(name("ignored_frees_total"), "Nil and double deallocations that were ignored.", nil, nil),
		doubleFrees:     prometheus.NewDesc(name("double_frees_total"), "Deallocations of blocks that were already free.", nil, nil),
		classFree:       prometheus.NewDesc(name("class_free_blocks"), "Free blocks per size class.", classLabels, nil),
		classAllocated:  prometheus.NewDesc(name("class_allocated_blocks"), "Allocated blocks per size class.", classLabels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.poolBytes
	ch <- c.freeBytes
	ch <- c.idleBytes
	ch <- c.fallbackGranted
	ch <- c.fallbacks
	ch <- c.systemFrees
	ch <- c.ignoredFrees
	ch <- c.doubleFrees
	ch <- c.classFree
	ch <- c.classAllocated
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()
	gauge := func(d *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}
	counter := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	gauge(c.poolBytes, m.PoolSize)
	gauge(c.freeBytes, m.FreeMemorySize)
	gauge(c.idleBytes, m.CurrentStorage)
	gauge(c.fallbackGranted, m.FallbackGranted)
	counter(c.fallbacks, m.Fallbacks)
	counter(c.systemFrees, m.SystemFrees)
	counter(c.ignoredFrees, m.IgnoredFrees)
	counter(c.doubleFrees, m.DoubleFrees)
	for _, cm := range m.Classes {
		size := strconv.Itoa(cm.BlockSize)
		gauge(c.classFree, cm.FreeBlocks, size)
		gauge(c.classAllocated, cm.AllocatedBlocks, size)
	}
}
