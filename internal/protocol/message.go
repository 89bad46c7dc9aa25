package protocol

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Control strings sent outside the request/reply envelope.
const (
	ControlPoll        = "cross-storage:poll"
	ControlReady       = "cross-storage:ready"
	ControlUnavailable = "cross-storage:unavailable"
)

// FileOrigin is the canonical sentinel for local-file contexts. Such
// origins cannot be addressed precisely, so replies to them broadcast.
const FileOrigin = "file://"

// Request is the decoded wire envelope for a storage operation.
// The id is an opaque client token echoed back verbatim in the reply.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params Params          `json:"params,omitempty"`
}

// Params carries the method-specific payload. Set uses Key/Value,
// get and del use Keys, clear and getKeys use nothing.
type Params struct {
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Keys  []string        `json:"keys,omitempty"`
}

// Reply is the wire envelope sent back to the requesting origin.
type Reply struct {
	ID     json.RawMessage `json:"id"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// NormalizeOrigin maps the transport's representation of a local-file
// context (absent or "null") to the FileOrigin sentinel.
func NormalizeOrigin(origin string) string {
	if origin == "" || origin == "null" {
		return FileOrigin
	}
	return origin
}

// DecodeRequest parses a raw transport payload into a Request.
func DecodeRequest(payload []byte) (Request, error) {
	var req Request
	err := sonic.Unmarshal(payload, &req)
	return req, err
}

// EncodeReply serializes a Reply for the transport.
func EncodeReply(reply Reply) ([]byte, error) {
	return sonic.Marshal(reply)
}
