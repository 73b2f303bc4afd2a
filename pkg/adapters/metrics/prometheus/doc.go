// Package prometheus implements the service metrics on top of client_golang.
package prometheus
