// Package grpc serves the standard grpc.health.v1 service.
//
// The overall status and the hello.Site service report SERVING while the
// public HTTP site is listening and NOT_SERVING otherwise.
package grpc
