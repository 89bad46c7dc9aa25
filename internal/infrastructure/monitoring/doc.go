// Package monitoring provides Prometheus metrics for the hub: broker
// request outcomes and latency, authorization denials, dropped transport
// messages, websocket traffic, and the HTTP surface.
//
// Each Metrics instance carries its own registry so independent hub
// instances (and tests) never collide on collector registration.
package monitoring
