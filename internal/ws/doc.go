// Package ws binds the storage broker to its websocket transport.
//
// Each client window holds one connection to /hub. The connection's origin
// is captured from the upgrade request and normalized once; every message
// read on that connection is handed to the broker with that origin, and the
// broker's outbound frame is written back on the same connection. Frames
// flagged broadcast (replies to the non-addressable file:// origin) fan out
// to every live connection.
//
// On open the hub announces readiness with the "cross-storage:ready"
// control string, or "cross-storage:unavailable" when no usable storage
// backend exists — in that mode inbound data messages are drained and
// ignored, matching a hub whose listener was never installed.
package ws
