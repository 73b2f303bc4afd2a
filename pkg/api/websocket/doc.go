// Package websocket streams health reports to admin clients.
//
// The handler is a health.Reporter: every monitor check is pushed as a JSON
// text message to each connected client. A new client first receives the
// most recent report, if any.
package websocket
