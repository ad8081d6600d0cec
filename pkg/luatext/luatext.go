// Package luatext writes Lua table literals of the form "return { ... }".
package luatext

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// Quote returns s as a single-quoted Lua string literal. s is NFC
// normalised so visually identical names produce identical keys.
func Quote(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// IsIdent reports whether s can be used as a bare table key.
func IsIdent(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Key formats s as a table key followed by " = ".
func Key(s string) string {
	if IsIdent(s) {
		return s + " = "
	}
	return "[" + Quote(s) + "] = "
}

// Writer emits a nested Lua table literal. The first write error is kept
// and every later call is a no-op; check Err once at the end.
type Writer struct {
	w     io.Writer
	depth int
	err   error
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) line(s string) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, "%s%s\n", strings.Repeat("\t", w.depth), s)
}

// Begin opens the top-level "return {" table.
func (w *Writer) Begin() {
	w.line("return {")
	w.depth++
}

// End closes the top-level table.
func (w *Writer) End() {
	w.depth--
	w.line("}")
}

// Open starts a table stored under key.
func (w *Writer) Open(key string) {
	w.line(Key(key) + "{")
	w.depth++
}

// OpenItem starts an anonymous table in the sequence part of the current table.
func (w *Writer) OpenItem() {
	w.line("{")
	w.depth++
}

// Close ends the innermost table.
func (w *Writer) Close() {
	w.depth--
	w.line("},")
}

// String writes key = 'v'.
func (w *Writer) String(key, v string) {
	w.line(Key(key) + Quote(v) + ",")
}

// Int writes key = v.
func (w *Writer) Int(key string, v int64) {
	w.line(Key(key) + strconv.FormatInt(v, 10) + ",")
}

// Float writes key = v with six decimals.
func (w *Writer) Float(key string, v float64) {
	w.line(Key(key) + strconv.FormatFloat(v, 'f', 6, 64) + ",")
}

// Bool writes key = true|false.
func (w *Writer) Bool(key string, v bool) {
	w.line(Key(key) + strconv.FormatBool(v) + ",")
}

// Item writes 'v' into the sequence part of the current table.
func (w *Writer) Item(v string) {
	w.line(Quote(v) + ",")
}

// Strings writes key = {'a','b',}.
func (w *Writer) Strings(key string, vs []string) {
	var b strings.Builder
	b.WriteString(Key(key) + "{")
	for _, v := range vs {
		b.WriteString(Quote(v) + ",")
	}
	b.WriteString("},")
	w.line(b.String())
}

// Ints writes key = {1,2,}.
func (w *Writer) Ints(key string, vs []int) {
	var b strings.Builder
	b.WriteString(Key(key) + "{")
	for _, v := range vs {
		b.WriteString(strconv.Itoa(v) + ",")
	}
	b.WriteString("},")
	w.line(b.String())
}
