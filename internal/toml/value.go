package toml

import (
	"strings"
)

// Kind identifies the variant of a Value node.
type Kind int

const (
	// KindString is a basic, literal or multi-line string.
	KindString Kind = iota
	// KindInteger is an integer in any supported radix.
	KindInteger
	// KindFloat is a float, including inf and nan.
	KindFloat
	// KindBool is true or false.
	KindBool
	// KindDatetime is an offset/local date-time, date or time.
	KindDatetime
	// KindArray is an array value.
	KindArray
	// KindInlineTable is an inline table value.
	KindInlineTable
)

// String returns the TOML name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindDatetime:
		return "datetime"
	case KindArray:
		return "array"
	case KindInlineTable:
		return "inline table"
	default:
		return "unknown"
	}
}

// Value is a node holding a TOML value. Values parsed from a document render
// their original source text until they are modified.
type Value interface {
	// Kind reports the variant of the value.
	Kind() Kind
	// Source returns the TOML text of the value.
	Source() string
}

// String is a string value.
type String struct {
	raw   string
	value string
}

// NewString creates a basic string value.
func NewString(s string) *String {
	return &String{raw: quoteBasic(s), value: s}
}

// Kind implements Value.
func (s *String) Kind() Kind { return KindString }

// Source implements Value.
func (s *String) Source() string { return s.raw }

// Value returns the decoded string.
func (s *String) Value() string { return s.value }

// Bool is a boolean value.
type Bool struct {
	value bool
}

// NewBool creates a boolean value.
func NewBool(b bool) *Bool {
	return &Bool{value: b}
}

// Kind implements Value.
func (b *Bool) Kind() Kind { return KindBool }

// Source implements Value.
func (b *Bool) Source() string {
	if b.value {
		return "true"
	}
	return "false"
}

// Value returns the boolean.
func (b *Bool) Value() bool { return b.value }

// Scalar is a number or date-time value. Its text is kept verbatim.
type Scalar struct {
	kind Kind
	raw  string
}

// Kind implements Value.
func (s *Scalar) Kind() Kind { return s.kind }

// Source implements Value.
func (s *Scalar) Source() string { return s.raw }

// Array is an array value.
type Array struct {
	raw   string
	items []Value
}

// Kind implements Value.
func (a *Array) Kind() Kind { return KindArray }

// Source implements Value.
func (a *Array) Source() string { return a.raw }

// Items returns the elements of the array.
func (a *Array) Items() []Value { return a.items }

// InlineEntry is a key/value pair inside an inline table.
type InlineEntry struct {
	keyRaw string
	key    Key
	value  Value
}

// Key returns the entry key.
func (e *InlineEntry) Key() Key { return e.key }

// Value returns the entry value.
func (e *InlineEntry) Value() Value { return e.value }

// source renders the entry as `key = value`.
func (e *InlineEntry) source() string {
	return e.keyRaw + " = " + e.value.Source()
}

// InlineTable is an inline table value. Once modified, it is rendered in the
// canonical `{ k = v, ... }` layout with each entry keeping its own text.
type InlineTable struct {
	raw     string
	entries []*InlineEntry
	dirty   bool
}

// NewInlineTable creates an empty inline table.
func NewInlineTable() *InlineTable {
	return &InlineTable{dirty: true}
}

// Kind implements Value.
func (t *InlineTable) Kind() Kind { return KindInlineTable }

// Source implements Value.
func (t *InlineTable) Source() string {
	if !t.dirty {
		return t.raw
	}
	if len(t.entries) == 0 {
		return "{}"
	}
	parts := make([]string, len(t.entries))
	for i, e := range t.entries {
		parts[i] = e.source()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Entries returns the entries in source order.
func (t *InlineTable) Entries() []*InlineEntry { return t.entries }

// Len returns the number of entries.
func (t *InlineTable) Len() int { return len(t.entries) }

// Get returns the value stored under a single-part key.
func (t *InlineTable) Get(key string) (Value, bool) {
	for _, e := range t.entries {
		if e.key.Is(key) {
			return e.value, true
		}
	}
	return nil, false
}

// Set replaces the value stored under key, or appends a new entry.
func (t *InlineTable) Set(key string, v Value) {
	t.dirty = true
	for _, e := range t.entries {
		if e.key.Is(key) {
			e.value = v
			return
		}
	}
	t.entries = append(t.entries, &InlineEntry{keyRaw: FormatKey(key), key: Key{key}, value: v})
}

// Append adds a copy of an existing entry, keeping its key and value text.
func (t *InlineTable) Append(e *InlineEntry) {
	t.dirty = true
	t.entries = append(t.entries, &InlineEntry{keyRaw: strings.TrimSpace(e.keyRaw), key: e.key, value: e.value})
}

// Remove deletes the entry stored under key and reports whether it existed.
func (t *InlineTable) Remove(key string) bool {
	for i, e := range t.entries {
		if e.key.Is(key) {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			t.dirty = true
			return true
		}
	}
	return false
}

// StringValue returns the decoded string if v is a string.
func StringValue(v Value) (string, bool) {
	s, ok := v.(*String)
	if !ok {
		return "", false
	}
	return s.value, true
}

// BoolValue returns the boolean if v is a boolean.
func BoolValue(v Value) (bool, bool) {
	b, ok := v.(*Bool)
	if !ok {
		return false, false
	}
	return b.value, true
}
