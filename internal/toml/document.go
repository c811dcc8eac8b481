package toml

import (
	"strings"
)

// Document is a parsed TOML file. Rendering an unmodified document yields the
// exact bytes it was parsed from.
type Document struct {
	root    *Table
	tables  []*Table
	newline string
}

// Root returns the implicit table holding the keys before the first header.
func (d *Document) Root() *Table { return d.root }

// Tables returns the header tables in source order, including array-of-tables entries.
func (d *Document) Tables() []*Table { return d.tables }

// Table returns the first standard table whose header matches path, or nil.
func (d *Document) Table(path ...string) *Table {
	for _, t := range d.tables {
		if !t.array && t.path.Equal(path) {
			return t
		}
	}
	return nil
}

// TablesWithPrefix returns the standard tables whose header starts with prefix.
func (d *Document) TablesWithPrefix(prefix ...string) []*Table {
	var out []*Table
	for _, t := range d.tables {
		if !t.array && t.path.HasPrefix(prefix) {
			out = append(out, t)
		}
	}
	return out
}

// EnsureTable returns the standard table for path, creating it if needed. A
// new table is placed after the last table sharing the first path segment,
// or at the end of the document.
func (d *Document) EnsureTable(path ...string) *Table {
	if t := d.Table(path...); t != nil {
		return t
	}

	anchor := -1
	for i, t := range d.tables {
		if !t.array && len(path) > 0 && len(t.path) > 0 && t.path[0] == path[0] {
			anchor = i
		}
	}

	t := &Table{doc: d, path: append(Key(nil), path...)}
	header := "[" + t.path.String() + "]" + d.newline

	if anchor == -1 {
		prev := d.last()
		if !prev.endsWithBlank() && !d.empty() {
			header = d.newline + header
		}
		prev.ensureTrailingNewline()
		t.header = header
		d.tables = append(d.tables, t)
		return t
	}

	prev := d.tables[anchor]
	var moved []item
	if anchor+1 < len(d.tables) {
		moved = prev.detachTrailingComments()
	}
	if !prev.endsWithBlank() {
		header = d.newline + header
	}
	prev.ensureTrailingNewline()
	t.header = header
	if anchor+1 < len(d.tables) {
		t.items = append(t.items, &trivia{raw: d.newline})
	}
	t.items = append(t.items, moved...)

	d.tables = append(d.tables[:anchor+1], append([]*Table{t}, d.tables[anchor+1:]...)...)
	return t
}

// Bytes renders the document.
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}

// String renders the document.
func (d *Document) String() string {
	var b strings.Builder
	d.root.render(&b)
	for _, t := range d.tables {
		t.render(&b)
	}
	return b.String()
}

func (d *Document) last() *Table {
	if len(d.tables) == 0 {
		return d.root
	}
	return d.tables[len(d.tables)-1]
}

func (d *Document) empty() bool {
	return len(d.tables) == 0 && len(d.root.items) == 0
}

// Table is a header section ([a.b] or [[a.b]]) or the implicit root table.
type Table struct {
	doc    *Document
	path   Key
	array  bool
	header string
	items  []item
}

// Path returns the header key path. It is empty for the root table.
func (t *Table) Path() Key { return t.path }

// IsArray reports whether the table is an array-of-tables entry.
func (t *Table) IsArray() bool { return t.array }

// Entries returns the key/value entries in source order.
func (t *Table) Entries() []*Entry {
	var out []*Entry
	for _, it := range t.items {
		if e, ok := it.(*Entry); ok {
			out = append(out, e)
		}
	}
	return out
}

// Entry returns the entry whose key path equals key, or nil.
func (t *Table) Entry(key ...string) *Entry {
	for _, it := range t.items {
		if e, ok := it.(*Entry); ok && e.key.Equal(key) {
			return e
		}
	}
	return nil
}

// Get returns the value stored under key.
func (t *Table) Get(key ...string) (Value, bool) {
	if e := t.Entry(key...); e != nil {
		return e.value, true
	}
	return nil, false
}

// Set replaces the value of an existing entry or appends a new one.
func (t *Table) Set(key string, v Value) *Entry {
	if e := t.Entry(key); e != nil {
		e.SetValue(v)
		return e
	}
	return t.Append(key, v)
}

// Append adds a new entry after the last entry of the table.
func (t *Table) Append(key string, v Value) *Entry {
	e := t.newEntry(key, v)
	pos := t.lastEntryIndex() + 1
	if pos == 0 {
		pos = t.leadingTriviaEnd()
	}
	if pos > 0 {
		if prev, ok := t.items[pos-1].(*Entry); ok && prev.newline == "" {
			prev.newline = t.doc.newline
		}
		if prev, ok := t.items[pos-1].(*trivia); ok && !strings.HasSuffix(prev.raw, "\n") {
			prev.raw += t.doc.newline
		}
	}
	t.insert(pos, e)
	return e
}

// Prepend adds a new entry before the first entry of the table.
func (t *Table) Prepend(key string, v Value) *Entry {
	e := t.newEntry(key, v)
	for i, it := range t.items {
		if _, ok := it.(*Entry); ok {
			t.insert(i, e)
			return e
		}
	}
	return t.Append(key, v)
}

// Remove deletes an entry from the table and reports whether it was present.
func (t *Table) Remove(e *Entry) bool {
	for i, it := range t.items {
		if it == e {
			if e.newline == "" && i > 0 {
				if prev, ok := t.items[i-1].(*Entry); ok {
					prev.newline = ""
				}
			}
			t.items = append(t.items[:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Table) newEntry(key string, v Value) *Entry {
	indent := ""
	if entries := t.Entries(); len(entries) > 0 {
		indent = entries[0].indent
	}
	return &Entry{
		indent:  indent,
		keyRaw:  FormatKey(key),
		key:     Key{key},
		eq:      " = ",
		value:   v,
		newline: t.doc.newline,
	}
}

func (t *Table) insert(pos int, it item) {
	t.items = append(t.items, nil)
	copy(t.items[pos+1:], t.items[pos:])
	t.items[pos] = it
}

func (t *Table) lastEntryIndex() int {
	for i := len(t.items) - 1; i >= 0; i-- {
		if _, ok := t.items[i].(*Entry); ok {
			return i
		}
	}
	return -1
}

// leadingTriviaEnd returns the index after the comment lines directly under
// the header of an entry-less table.
func (t *Table) leadingTriviaEnd() int {
	n := 0
	for n < len(t.items) {
		tr, ok := t.items[n].(*trivia)
		if !ok || tr.blank() {
			break
		}
		n++
	}
	return n
}

func (t *Table) endsWithBlank() bool {
	if len(t.items) == 0 {
		return t.header == "" || strings.TrimSpace(t.header) == ""
	}
	tr, ok := t.items[len(t.items)-1].(*trivia)
	return ok && tr.blank()
}

func (t *Table) ensureTrailingNewline() {
	if len(t.items) == 0 {
		if t.header != "" && !strings.HasSuffix(t.header, "\n") {
			t.header += t.doc.newline
		}
		return
	}
	switch last := t.items[len(t.items)-1].(type) {
	case *Entry:
		if last.newline == "" {
			last.newline = t.doc.newline
		}
	case *trivia:
		if last.raw != "" && !strings.HasSuffix(last.raw, "\n") {
			last.raw += t.doc.newline
		}
	}
}

// detachTrailingComments removes the comment lines at the end of the table
// that follow its last blank line; they describe the next header.
func (t *Table) detachTrailingComments() []item {
	start := len(t.items)
	for start > 0 {
		tr, ok := t.items[start-1].(*trivia)
		if !ok || tr.blank() {
			break
		}
		start--
	}
	if start == len(t.items) || start <= t.lastEntryIndex() {
		return nil
	}
	moved := append([]item(nil), t.items[start:]...)
	t.items = t.items[:start]
	return moved
}

func (t *Table) render(b *strings.Builder) {
	b.WriteString(t.header)
	for _, it := range t.items {
		it.render(b)
	}
}

type item interface {
	render(b *strings.Builder)
}

// trivia is a blank or comment-only line, or trailing whitespace at EOF.
type trivia struct {
	raw string
}

func (t *trivia) blank() bool {
	return strings.TrimSpace(t.raw) == ""
}

func (t *trivia) render(b *strings.Builder) {
	b.WriteString(t.raw)
}

// Entry is a `key = value` line of a table.
type Entry struct {
	indent  string
	keyRaw  string
	key     Key
	eq      string
	value   Value
	trail   string
	newline string
}

// Key returns the decoded key path.
func (e *Entry) Key() Key { return e.key }

// Value returns the entry value.
func (e *Entry) Value() Value { return e.value }

// SetValue replaces the value, keeping the key, spacing and trailing comment.
func (e *Entry) SetValue(v Value) {
	e.value = v
}

// Comment returns the trailing comment of the entry line, without the `#`.
func (e *Entry) Comment() string {
	i := strings.IndexByte(e.trail, '#')
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(e.trail[i+1:])
}

func (e *Entry) render(b *strings.Builder) {
	b.WriteString(e.indent)
	b.WriteString(e.keyRaw)
	b.WriteString(e.eq)
	b.WriteString(e.value.Source())
	b.WriteString(e.trail)
	b.WriteString(e.newline)
}
