// Package permissions resolves whether an origin may invoke a storage method.
//
// The table is an ordered list of (origin pattern, allowed methods) entries
// supplied once at startup and immutable afterward. Entries are additive: an
// origin may appear in several entries with different allowances, and a match
// on origin alone does not stop the scan. Malformed entries (bad pattern,
// non-list allowance) are ignored rather than rejected so one bad row cannot
// take the hub down.
//
// Table files load by extension: .yaml/.yml, .toml, or .json.
package permissions
