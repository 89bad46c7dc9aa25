package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/crossstore/hub/internal/permissions"
	"github.com/crossstore/hub/internal/protocol"
	"github.com/crossstore/hub/internal/storage"
)

// failingAdapter wraps a real adapter and injects failures per key.
type failingAdapter struct {
	storage.Adapter
	readErr map[string]error
}

func (f *failingAdapter) Read(ctx context.Context, key string) (json.RawMessage, error) {
	if err, ok := f.readErr[key]; ok {
		return nil, err
	}
	return f.Adapter.Read(ctx, key)
}

func openBroker(adapter storage.Adapter) *Broker {
	rule := permissions.Rule{Origin: `.*`, Allow: []any{"get", "set", "del", "clear", "getKeys"}}
	auth := permissions.NewAuthorizer(permissions.NewTable([]permissions.Rule{rule}, nil))
	return New(auth, adapter)
}

func TestDispatchSetGetRoundTrip(t *testing.T) {
	b := openBroker(storage.NewMemory())
	ctx := context.Background()

	result, err := b.dispatch(ctx, protocol.MethodSet, protocol.Params{
		Key:   "a",
		Value: json.RawMessage(`"v"`),
	})
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if result != nil {
		t.Errorf("set should carry no result, got %s", result)
	}

	result, err = b.dispatch(ctx, protocol.MethodGet, protocol.Params{Keys: []string{"a"}})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(result) != `"v"` {
		t.Errorf("expected \"v\", got %s", result)
	}
}

func TestDispatchGetShaping(t *testing.T) {
	b := openBroker(storage.NewMemory())
	ctx := context.Background()

	// One unset key: scalar null, not [null].
	result, err := b.dispatch(ctx, protocol.MethodGet, protocol.Params{Keys: []string{"a"}})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(result) != "null" {
		t.Errorf("single unset key should yield null, got %s", result)
	}

	// Two unset keys: [null, null], not a single null.
	result, err = b.dispatch(ctx, protocol.MethodGet, protocol.Params{Keys: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	var values []json.RawMessage
	if err := json.Unmarshal(result, &values); err != nil {
		t.Fatalf("result is not an array: %s", result)
	}
	if len(values) != 2 || string(values[0]) != "null" || string(values[1]) != "null" {
		t.Errorf("expected [null,null], got %s", result)
	}
}

func TestDispatchGetFalsyCoercion(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()
	m.Write(ctx, "empty", json.RawMessage(`""`))
	m.Write(ctx, "zero", json.RawMessage(`0`))
	m.Write(ctx, "truthy", json.RawMessage(`"x"`))

	b := openBroker(m)
	for _, key := range []string{"empty", "zero"} {
		result, err := b.dispatch(ctx, protocol.MethodGet, protocol.Params{Keys: []string{key}})
		if err != nil {
			t.Fatalf("get %s failed: %v", key, err)
		}
		if string(result) != "null" {
			t.Errorf("single falsy value %q should coerce to null, got %s", key, result)
		}
	}

	// Multi-key results are never coerced.
	result, err := b.dispatch(ctx, protocol.MethodGet, protocol.Params{Keys: []string{"empty", "truthy"}})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(result) != `["","x"]` {
		t.Errorf("expected [\"\",\"x\"], got %s", result)
	}
}

func TestDispatchGetPartialFailure(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()
	m.Write(ctx, "k0", json.RawMessage(`"v0"`))
	m.Write(ctx, "k2", json.RawMessage(`"v2"`))

	b := openBroker(&failingAdapter{
		Adapter: m,
		readErr: map[string]error{"k1": errors.New("access denied")},
	})

	result, err := b.dispatch(ctx, protocol.MethodGet, protocol.Params{Keys: []string{"k0", "k1", "k2"}})
	if err == nil {
		t.Fatalf("expected failure, got %s", result)
	}
	if err.Error() != "access denied" {
		t.Errorf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("failed batch must not yield a partial result: %s", result)
	}
}

func TestDispatchDel(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()
	m.Write(ctx, "a", json.RawMessage("1"))
	m.Write(ctx, "b", json.RawMessage("2"))
	m.Write(ctx, "c", json.RawMessage("3"))

	b := openBroker(m)
	result, err := b.dispatch(ctx, protocol.MethodDel, protocol.Params{Keys: []string{"a", "c"}})
	if err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if result != nil {
		t.Errorf("del should carry no result, got %s", result)
	}

	count, _ := m.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 remaining key, got %d", count)
	}
}

func TestDispatchClear(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()
	m.Write(ctx, "a", json.RawMessage("1"))

	b := openBroker(m)
	if _, err := b.dispatch(ctx, protocol.MethodClear, protocol.Params{}); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	count, _ := m.Count(ctx)
	if count != 0 {
		t.Errorf("expected empty store, got %d keys", count)
	}
}

func TestDispatchGetKeys(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()
	b := openBroker(m)

	// Always an array, even empty.
	result, err := b.dispatch(ctx, protocol.MethodGetKeys, protocol.Params{})
	if err != nil {
		t.Fatalf("getKeys failed: %v", err)
	}
	if string(result) != "[]" {
		t.Errorf("expected [], got %s", result)
	}

	m.Write(ctx, "one", json.RawMessage("1"))
	result, err = b.dispatch(ctx, protocol.MethodGetKeys, protocol.Params{})
	if err != nil {
		t.Fatalf("getKeys failed: %v", err)
	}
	if string(result) != `["one"]` {
		t.Errorf("single key must still be an array, got %s", result)
	}

	m.Write(ctx, "two", json.RawMessage("2"))
	m.Write(ctx, "three", json.RawMessage("3"))
	result, err = b.dispatch(ctx, protocol.MethodGetKeys, protocol.Params{})
	if err != nil {
		t.Fatalf("getKeys failed: %v", err)
	}
	if string(result) != `["one","two","three"]` {
		t.Errorf("keys must come back in index order, got %s", result)
	}
}

func TestDispatchSetRequiresKey(t *testing.T) {
	b := openBroker(storage.NewMemory())
	if _, err := b.dispatch(context.Background(), protocol.MethodSet, protocol.Params{}); err == nil {
		t.Error("set without key should fail")
	}
}
