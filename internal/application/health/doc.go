// Package health tracks the lifecycle of the service listeners.
//
// Every listener moves through two states: stopped and listening. The
// monitor samples registered targets on a fixed interval and:
//   - Records up/down gauges and health check counts
//   - Pushes the aggregated status to reporters (the gRPC health service)
//   - Warns when a registered listener is not serving
package health
