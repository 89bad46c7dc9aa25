// Package protocol defines the wire envelope for the cross-origin storage hub.
//
// Requests arrive as JSON payloads of the form {id, method, params} where the
// method field carries the "cross-storage:" prefix. Replies echo the request's
// opaque id and carry exactly one of error or result. Two bare control strings
// exist outside the envelope: "cross-storage:poll" (liveness probe) and
// "cross-storage:ready" (readiness announcement).
//
// Methods:
//   - get: read one or more keys
//   - set: write a single key
//   - del: delete one or more keys
//   - clear: remove all keys
//   - getKeys: enumerate all key names
//
// Origins are normalized before matching: local-file contexts, which the
// transport reports as "null" (or not at all), map to the "file://" sentinel.
package protocol
