// Command hub runs the cross-origin storage hub: a websocket endpoint that
// brokers key/value storage requests from client windows on other origins,
// gated by an origin permission table.
package main
