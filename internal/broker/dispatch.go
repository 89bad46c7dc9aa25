package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/crossstore/hub/internal/protocol"
)

var jsonNull = json.RawMessage("null")

// dispatch executes one storage method against the adapter and shapes the
// result for the reply. A nil result with nil error means the reply carries
// no result value.
func (b *Broker) dispatch(ctx context.Context, method protocol.Method, params protocol.Params) (json.RawMessage, error) {
	switch method {
	case protocol.MethodSet:
		return b.set(ctx, params)
	case protocol.MethodGet:
		return b.get(ctx, params.Keys)
	case protocol.MethodDel:
		return b.del(ctx, params.Keys)
	case protocol.MethodClear:
		return nil, b.adapter.Clear(ctx)
	case protocol.MethodGetKeys:
		return b.getKeys(ctx)
	}
	return nil, fmt.Errorf("unhandled method: %s", method)
}

func (b *Broker) set(ctx context.Context, params protocol.Params) (json.RawMessage, error) {
	if params.Key == "" {
		return nil, errors.New("key parameter required")
	}
	return nil, b.adapter.Write(ctx, params.Key, params.Value)
}

// get reads all requested keys concurrently. A single requested key yields
// a scalar result, coerced to null when unset or falsy; multiple keys yield
// an array with nulls kept positionally. The asymmetry is part of the wire
// contract.
func (b *Broker) get(ctx context.Context, keys []string) (json.RawMessage, error) {
	values, err := fanOut(ctx, keys, b.adapter.Read)
	if err != nil {
		return nil, err
	}

	if len(values) > 1 {
		for i, value := range values {
			if value == nil {
				values[i] = jsonNull
			}
		}
		return sonic.Marshal(values)
	}

	if len(values) == 0 || isFalsy(values[0]) {
		return jsonNull, nil
	}
	return values[0], nil
}

func (b *Broker) del(ctx context.Context, keys []string) (json.RawMessage, error) {
	_, err := fanOut(ctx, keys, func(ctx context.Context, key string) (struct{}, error) {
		return struct{}{}, b.adapter.Remove(ctx, key)
	})
	return nil, err
}

// getKeys enumerates key names in index order. The result is always an
// array, even of length 0 or 1.
func (b *Broker) getKeys(ctx context.Context) (json.RawMessage, error) {
	count, err := b.adapter.Count(ctx)
	if err != nil {
		return nil, err
	}

	indices := make([]int, count)
	for i := range indices {
		indices[i] = i
	}

	keys, err := fanOut(ctx, indices, b.adapter.KeyAt)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(keys)
}

// isFalsy reports whether a raw JSON value coerces to null in the
// single-key get shaping: unset, null, empty string, zero, or false.
func isFalsy(value json.RawMessage) bool {
	switch string(bytes.TrimSpace(value)) {
	case "", "null", `""`, "0", "false":
		return true
	}
	return false
}
