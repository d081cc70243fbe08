// internal/metrics/metrics.go

// Package metrics holds a small in-process collector surfaced at /metrics.
package metrics

import (
	"sync"
	"time"
)

type routeKey struct {
	Method string
	Route  string
}

type routeStats struct {
	Count         int64
	Errors        int64
	TotalDuration time.Duration
}

type Collector struct {
	mtx       sync.Mutex
	startTime time.Time
	requests  int64
	errors    int64
	byStatus  map[int]int64
	byRoute   map[routeKey]*routeStats
}

func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		byStatus:  make(map[int]int64),
		byRoute:   make(map[routeKey]*routeStats),
	}
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.requests++
	c.byStatus[status]++
	if status >= 500 {
		c.errors++
	}

	key := routeKey{Method: method, Route: route}
	stats, ok := c.byRoute[key]
	if !ok {
		stats = &routeStats{}
		c.byRoute[key] = stats
	}
	stats.Count++
	stats.TotalDuration += duration
	if status >= 400 {
		stats.Errors++
	}
}

type RouteSnapshot struct {
	Method        string  `json:"method"`
	Route         string  `json:"route"`
	Count         int64   `json:"count"`
	Errors        int64   `json:"errors"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

type Snapshot struct {
	UptimeSeconds float64         `json:"uptime_seconds"`
	TotalRequests int64           `json:"total_requests"`
	TotalErrors   int64           `json:"total_errors"`
	ByStatus      map[int]int64   `json:"by_status"`
	Routes        []RouteSnapshot `json:"routes"`
}

func (c *Collector) Snapshot() Snapshot {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	byStatus := make(map[int]int64, len(c.byStatus))
	for status, count := range c.byStatus {
		byStatus[status] = count
	}

	routes := make([]RouteSnapshot, 0, len(c.byRoute))
	for key, stats := range c.byRoute {
		avg := 0.0
		if stats.Count > 0 {
			avg = float64(stats.TotalDuration.Milliseconds()) / float64(stats.Count)
		}
		routes = append(routes, RouteSnapshot{
			Method:        key.Method,
			Route:         key.Route,
			Count:         stats.Count,
			Errors:        stats.Errors,
			AvgDurationMs: avg,
		})
	}

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		TotalRequests: c.requests,
		TotalErrors:   c.errors,
		ByStatus:      byStatus,
		Routes:        routes,
	}
}
