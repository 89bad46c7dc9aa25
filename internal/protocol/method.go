package protocol

import "strings"

// MethodPrefix namespaces request methods on the shared transport.
const MethodPrefix = "cross-storage:"

// Method identifies one of the five storage operations.
type Method int

const (
	MethodGet Method = iota
	MethodSet
	MethodDel
	MethodClear
	MethodGetKeys
)

var methodNames = map[Method]string{
	MethodGet:     "get",
	MethodSet:     "set",
	MethodDel:     "del",
	MethodClear:   "clear",
	MethodGetKeys: "getKeys",
}

var methodsByName = map[string]Method{
	"get":     MethodGet,
	"set":     MethodSet,
	"del":     MethodDel,
	"clear":   MethodClear,
	"getKeys": MethodGetKeys,
}

// Name returns the bare method name without the wire prefix.
func (m Method) Name() string {
	return methodNames[m]
}

func (m Method) String() string {
	return m.Name()
}

// MethodFromName resolves a bare method name. Unrecognized names fail.
func MethodFromName(name string) (Method, bool) {
	m, ok := methodsByName[name]
	return m, ok
}

// ParseMethod resolves a wire method field ("cross-storage:<name>").
// Missing prefix, empty name, and unrecognized names all fail; callers
// drop such requests silently.
func ParseMethod(field string) (Method, bool) {
	name, ok := strings.CutPrefix(field, MethodPrefix)
	if !ok || name == "" {
		return 0, false
	}
	return MethodFromName(name)
}
