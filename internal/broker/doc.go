// Package broker implements the hub's request protocol engine.
//
// The Broker is re-entered once per inbound transport message and runs to
// completion: it normalizes the origin, answers or drops control strings,
// decodes the envelope, authorizes (origin, method) against the permission
// table, dispatches to the storage adapter, and shapes the reply. Transport
// noise — unparsable payloads, malformed or unrecognized method fields — is
// dropped without a reply, since unrelated traffic on a shared channel is
// expected.
//
// Multi-key operations (get, del, getKeys) fan out one concurrent adapter
// call per key and aggregate results positionally: the reply's value order
// always matches the request's key order regardless of completion order.
// The first failing sub-operation completes the whole batch with that
// failure; later completions are discarded.
//
// Failures are terminal per request and never fatal to the hub: every
// authorization or adapter failure converts to an error reply addressed to
// the requesting origin.
package broker
