// Package settings holds the engine configuration table: an ordered set of
// name/value pairs applied once during engine startup. The table is part of
// the embedding contract — the bridge carries the defaults so that no
// external configuration file is needed.
package settings

import (
	"fmt"
	"strconv"
)

// Setting is a single configuration entry. Values are literal strings;
// numeric and boolean settings are parsed on read.
type Setting struct {
	Name  string
	Value string
}

// Defaults returns the configuration applied during engine startup when the
// embedding application does not override anything. Order is significant:
// entries are applied first to last.
func Defaults() []Setting {
	return []Setting{
		{Name: "variables_order", Value: "EGPCS"},
		{Name: "request_order", Value: "GP"},
		{Name: "output_buffering", Value: "4096"},
		{Name: "implicit_flush", Value: "0"},
		{Name: "html_errors", Value: "0"},
		{Name: "display_errors", Value: "1"},
		{Name: "log_errors", Value: "1"},
		{Name: "cache.enable", Value: "0"},
		{Name: "cache.enable_cli", Value: "0"},
	}
}

// Table is the applied configuration. It preserves insertion order for
// iteration (diagnostics render the table in apply order) and is not mutated
// after engine startup completes.
type Table struct {
	order  []string
	values map[string]string
}

// NewTable builds a Table from the given settings, applied first to last.
// A later entry with the same name overrides the earlier value without
// changing its position.
func NewTable(entries ...[]Setting) *Table {
	t := &Table{values: make(map[string]string)}
	for _, list := range entries {
		for _, s := range list {
			t.set(s.Name, s.Value)
		}
	}
	return t
}

func (t *Table) set(name, value string) {
	if _, ok := t.values[name]; !ok {
		t.order = append(t.order, name)
	}
	t.values[name] = value
}

// Get returns the raw value for name and whether it is present.
func (t *Table) Get(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Bool interprets a setting as a flag. Anything other than "1", "true" or
// "on" is false, matching the ini-style literals the defaults use.
func (t *Table) Bool(name string) bool {
	switch v, _ := t.Get(name); v {
	case "1", "true", "on":
		return true
	default:
		return false
	}
}

// Int parses a numeric setting, returning fallback when the entry is absent
// or not a number.
func (t *Table) Int(name string, fallback int) int {
	v, ok := t.Get(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Names returns the setting names in apply order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// All returns the table contents in apply order.
func (t *Table) All() []Setting {
	out := make([]Setting, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Setting{Name: name, Value: t.values[name]})
	}
	return out
}

// String renders the table in ini form, one entry per line.
func (t *Table) String() string {
	var s string
	for _, name := range t.order {
		s += fmt.Sprintf("%s=%s\n", name, t.values[name])
	}
	return s
}
