// Package pkg provides shared types and utilities for the Roster API.
package pkg

// Common API path constants.
const (
	// BasePath is the root path for the API.
	BasePath = "/api"

	// StudentsPath is the collection path for student resources.
	StudentsPath = BasePath + "/students"

	// HealthCheckPath is the endpoint for health checks.
	HealthCheckPath = BasePath + "/ping"

	// LivenessPath and ReadinessPath are the probe endpoints.
	LivenessPath  = "/livez"
	ReadinessPath = "/readyz"

	// MetricsPath exposes Prometheus metrics.
	MetricsPath = "/metrics"
)
