package toml

import (
	"fmt"
	"strings"
)

// Key is a decoded key path. Dotted keys have several parts.
type Key []string

// Is reports whether the key has exactly one part equal to name.
func (k Key) Is(name string) bool {
	return len(k) == 1 && k[0] == name
}

// Equal reports whether two key paths are identical.
func (k Key) Equal(other []string) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether the key path starts with prefix.
func (k Key) HasPrefix(prefix []string) bool {
	return len(k) >= len(prefix) && Key(k[:len(prefix)]).Equal(prefix)
}

// String renders the key path in TOML syntax.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = FormatKey(p)
	}
	return strings.Join(parts, ".")
}

// FormatKey renders a single key part, bare when possible.
func FormatKey(name string) string {
	if isBareKey(name) {
		return name
	}
	return quoteBasic(name)
}

func isBareKey(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isBareKeyChar(s[i]) {
			return false
		}
	}
	return true
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// quoteBasic renders s as a basic string.
func quoteBasic(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
