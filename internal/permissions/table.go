package permissions

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/crossstore/hub/internal/protocol"
)

// Rule is a raw configuration row before compilation. Allow is decoded
// loosely so a malformed allowance drops the one row instead of failing
// the whole table.
type Rule struct {
	Origin string `json:"origin" yaml:"origin" toml:"origin"`
	Allow  any    `json:"allow" yaml:"allow" toml:"allow"`
}

// Entry is a compiled permission row.
type Entry struct {
	origin *regexp.Regexp
	allow  map[protocol.Method]bool
}

// Table is the ordered, immutable permission list.
type Table []Entry

// NewTable compiles rules into a table. Rows with an uncompilable origin
// pattern or a non-list allowance are ignored; unrecognized method names
// within an allowance are skipped. logger may be nil.
func NewTable(rules []Rule, logger *zap.Logger) Table {
	table := make(Table, 0, len(rules))

	for _, rule := range rules {
		matcher, err := regexp.Compile(rule.Origin)
		if err != nil {
			if logger != nil {
				logger.Warn("Ignoring permission rule with malformed origin pattern",
					zap.String("origin", rule.Origin),
					zap.Error(err),
				)
			}
			continue
		}

		names, ok := allowNames(rule.Allow)
		if !ok {
			if logger != nil {
				logger.Warn("Ignoring permission rule with malformed allow list",
					zap.String("origin", rule.Origin),
				)
			}
			continue
		}

		allow := make(map[protocol.Method]bool, len(names))
		for _, name := range names {
			method, ok := protocol.MethodFromName(name)
			if !ok {
				if logger != nil {
					logger.Warn("Skipping unrecognized method in allow list",
						zap.String("origin", rule.Origin),
						zap.String("method", name),
					)
				}
				continue
			}
			allow[method] = true
		}

		table = append(table, Entry{origin: matcher, allow: allow})
	}

	return table
}

// allowNames coerces a loosely decoded allowance into a list of names.
// YAML, TOML, and JSON decoders all surface lists as []any.
func allowNames(allow any) ([]string, bool) {
	switch v := allow.(type) {
	case []string:
		return v, true
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, false
			}
			names = append(names, name)
		}
		return names, true
	default:
		return nil, false
	}
}
