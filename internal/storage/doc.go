// Package storage defines the pluggable backend the hub delegates all data
// operations to, plus the default in-memory implementation.
//
// The Adapter interface mirrors the six operations of the wire protocol:
// read, write, remove, key-at-index, count, and clear. Implementations own
// their persistence format entirely; the hub stores and returns values as
// raw JSON without reshaping them.
//
// The default Memory adapter keeps keys in insertion order so that indexed
// enumeration (key-at-index over [0..count)) is stable, and can optionally
// persist a gzip-compressed JSON snapshot across restarts.
package storage
