package toml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
)

// ParseError reports the position of a syntax error.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Parse builds a document tree from TOML source. Syntax is checked by the
// go-toml expression parser; the tree keeps the raw text between and around
// the expressions it reports.
func Parse(data []byte) (*Document, error) {
	b := &builder{src: string(data)}
	b.p.KeepComments = true
	b.p.Reset(data)

	doc := &Document{newline: detectNewline(b.src)}
	doc.root = &Table{doc: doc}
	current := doc.root

	for b.p.NextExpression() {
		expr := b.p.Expression()
		switch expr.Kind {
		case unstable.Comment:
			start := lineStart(b.src, int(expr.Raw.Offset))
			current.items = append(current.items, b.blankLines(start)...)
			end := lineEnd(b.src, int(expr.Raw.Offset+expr.Raw.Length))
			current.items = append(current.items, &trivia{raw: b.src[start:end]})
			b.pos = end
		case unstable.Table, unstable.ArrayTable:
			key, keyStart, keyEnd := b.key(expr.Key())
			start := lineStart(b.src, keyStart)
			current.items = append(current.items, b.blankLines(start)...)
			end := lineEnd(b.src, keyEnd)
			t := &Table{
				doc:    doc,
				path:   key,
				array:  expr.Kind == unstable.ArrayTable,
				header: b.src[start:end],
			}
			doc.tables = append(doc.tables, t)
			current = t
			b.pos = end
		case unstable.KeyValue:
			e, err := b.entry(expr)
			if err != nil {
				return nil, err
			}
			current.items = append(current.items, b.blankLines(lineStart(b.src, e.start))...)
			current.items = append(current.items, e.Entry)
			b.pos = e.end
		}
	}
	if err := b.p.Error(); err != nil {
		return nil, b.parseError(err)
	}
	current.items = append(current.items, b.blankLines(len(b.src))...)

	return doc, nil
}

func detectNewline(src string) string {
	if i := strings.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// lineStart returns the offset of the first byte of the line holding off.
func lineStart(src string, off int) int {
	return strings.LastIndexByte(src[:off], '\n') + 1
}

// lineEnd returns the offset just past the newline ending the line holding off.
func lineEnd(src string, off int) int {
	i := strings.IndexByte(src[off:], '\n')
	if i < 0 {
		return len(src)
	}
	return off + i + 1
}

type builder struct {
	p   unstable.Parser
	src string
	// pos is the end of the last expression turned into an item.
	pos int
}

// blankLines turns the text between the last item and end into one trivia
// item per line.
func (b *builder) blankLines(end int) []item {
	var out []item
	for b.pos < end {
		next := min(lineEnd(b.src, b.pos), end)
		out = append(out, &trivia{raw: b.src[b.pos:next]})
		b.pos = next
	}
	return out
}

// key decodes a possibly dotted key and returns the span of its source text.
func (b *builder) key(it unstable.Iterator) (Key, int, int) {
	var (
		key        Key
		start, end int
	)
	for it.Next() {
		n := it.Node()
		if key == nil {
			start = int(n.Raw.Offset)
		}
		key = append(key, string(n.Data))
		end = int(n.Raw.Offset + n.Raw.Length)
	}
	return key, start, end
}

type parsedEntry struct {
	*Entry
	start, end int
}

func (b *builder) entry(expr *unstable.Node) (parsedEntry, error) {
	key, keyStart, keyEnd := b.key(expr.Key())
	start := lineStart(b.src, keyStart)
	valueStart := b.skipSeparator(keyEnd)

	value, valueEnd, err := b.value(expr.Value(), valueStart)
	if err != nil {
		return parsedEntry{}, err
	}

	end := lineEnd(b.src, valueEnd)
	newlineStart := end
	if strings.HasSuffix(b.src[valueEnd:end], "\r\n") {
		newlineStart -= 2
	} else if strings.HasSuffix(b.src[valueEnd:end], "\n") {
		newlineStart--
	}

	e := &Entry{
		indent:  b.src[start:keyStart],
		keyRaw:  b.src[keyStart:keyEnd],
		key:     key,
		eq:      b.src[keyEnd:valueStart],
		value:   value,
		trail:   b.src[valueEnd:newlineStart],
		newline: b.src[newlineStart:end],
	}
	return parsedEntry{Entry: e, start: start, end: end}, nil
}

// skipSeparator returns the offset of the value following `=` after a key.
func (b *builder) skipSeparator(pos int) int {
	for pos < len(b.src) && (b.src[pos] == ' ' || b.src[pos] == '\t' || b.src[pos] == '=') {
		pos++
	}
	return pos
}

// skipBlank moves past whitespace, newlines, comments and commas between the
// elements of arrays and inline tables.
func (b *builder) skipBlank(pos int) int {
	for pos < len(b.src) {
		switch b.src[pos] {
		case ' ', '\t', '\r', '\n', ',':
			pos++
		case '#':
			i := strings.IndexByte(b.src[pos:], '\n')
			if i < 0 {
				return len(b.src)
			}
			pos += i
		default:
			return pos
		}
	}
	return pos
}

// value builds the node for n, whose text starts at start, and returns the
// offset just past it.
func (b *builder) value(n *unstable.Node, start int) (Value, int, error) {
	switch n.Kind {
	case unstable.String:
		end := int(n.Raw.Offset + n.Raw.Length)
		return &String{raw: b.src[n.Raw.Offset:end], value: string(n.Data)}, end, nil
	case unstable.Bool:
		end := start + len(n.Data)
		return NewBool(b.src[start:end] == "true"), end, nil
	case unstable.Integer:
		end := start + len(n.Data)
		return &Scalar{kind: KindInteger, raw: b.src[start:end]}, end, nil
	case unstable.Float:
		end := start + len(n.Data)
		return &Scalar{kind: KindFloat, raw: b.src[start:end]}, end, nil
	case unstable.LocalDate, unstable.LocalTime, unstable.LocalDateTime, unstable.DateTime:
		end := start + len(n.Data)
		return &Scalar{kind: KindDatetime, raw: b.src[start:end]}, end, nil
	case unstable.Array:
		return b.array(n, start)
	case unstable.InlineTable:
		return b.inlineTable(n, start)
	default:
		return nil, 0, fmt.Errorf("unexpected %s node", n.Kind)
	}
}

func (b *builder) array(n *unstable.Node, start int) (Value, int, error) {
	arr := &Array{}
	pos := start + 1
	it := n.Children()
	for it.Next() {
		child := it.Node()
		if child.Kind == unstable.Comment {
			continue
		}
		v, end, err := b.value(child, b.skipBlank(pos))
		if err != nil {
			return nil, 0, err
		}
		arr.items = append(arr.items, v)
		pos = end
	}
	end := b.skipBlank(pos) + 1
	arr.raw = b.src[start:end]
	return arr, end, nil
}

func (b *builder) inlineTable(n *unstable.Node, start int) (Value, int, error) {
	tbl := &InlineTable{}
	pos := start + 1
	it := n.Children()
	for it.Next() {
		kv := it.Node()
		key, keyStart, keyEnd := b.key(kv.Key())
		v, end, err := b.value(kv.Value(), b.skipSeparator(keyEnd))
		if err != nil {
			return nil, 0, err
		}
		tbl.entries = append(tbl.entries, &InlineEntry{keyRaw: b.src[keyStart:keyEnd], key: key, value: v})
		pos = end
	}
	end := b.skipBlank(pos) + 1
	tbl.raw = b.src[start:end]
	return tbl, end, nil
}

func (b *builder) parseError(err error) error {
	var perr *unstable.ParserError
	if !errors.As(err, &perr) {
		return err
	}
	pos := unstable.Position{Offset: len(b.src)}
	if perr.Highlight != nil {
		pos = b.p.Shape(b.p.Range(perr.Highlight)).Start
	} else {
		pos.Line = strings.Count(b.src, "\n") + 1
		pos.Column = len(b.src) - strings.LastIndexByte(b.src, '\n')
	}
	return &ParseError{Line: pos.Line, Column: pos.Column, Msg: perr.Message}
}
