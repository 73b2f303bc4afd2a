// Package http provides the HTTP listeners of the service.
//
// The public site serves exactly one route:
//   - GET / (and HEAD /) returns a fixed HTML page
//
// Every other path is 404 and every other method on / is 405.
//
// The admin server runs on a separate listener so the public routing stays
// untouched. It exposes:
//   - Health checks
//   - Prometheus metrics
package http
