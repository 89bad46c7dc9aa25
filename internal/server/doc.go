// Package server wires the hub together: configuration, logging, metrics,
// permission table, storage adapter, broker, and the gin router exposing
// the websocket endpoint plus health and metrics routes.
package server
