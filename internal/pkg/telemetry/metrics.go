package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricStreetDataAge = "overpass.data_age_seconds"
	MetricSnapLatency   = "walk.snap_latency"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricDiscoveries = "business.segments_discovered"
	MetricXPAwarded   = "business.xp_awarded"
)
