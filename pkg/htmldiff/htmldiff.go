// Package htmldiff renders word-level differences between two HTML
// fragments as inline <ins>/<del> markup.
package htmldiff

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

type options struct {
	escape bool
}

// Option configures a comparison.
type Option func(*options)

// WithEscape escapes the text of every chunk before it is wrapped, for values
// that must be shown as source rather than rendered.
func WithEscape() Option {
	return func(o *options) { o.escape = true }
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	emptyMark  = regexp.MustCompile(`<(ins|del)>\s*</(ins|del)>`)
)

// Compare diffs current against comparison. Text only present in current is
// wrapped in <ins>, text only present in comparison in <del>, and a replaced
// run renders as "<ins>NEW</ins> <del>OLD</del>".
//
//	Compare("1st", "One") == "<ins>1st</ins> <del>One</del>"
func Compare(current, comparison string, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	orig, final := chunks(comparison), chunks(current)

	// First pass: regroup changed elements so tags are never split.
	var from, to rechunker
	for _, op := range match(orig, final) {
		switch op.Tag {
		case 'e':
			from.push(orig[op.I1:op.I2], false)
			to.push(final[op.J1:op.J2], false)
		case 'r':
			from.push(orig[op.I1:op.I2], true)
			to.push(final[op.J1:op.J2], true)
		case 'd':
			from.push(orig[op.I1:op.I2], true)
		case 'i':
			to.push(final[op.J1:op.J2], true)
		}
	}

	// Second pass: render the regrouped chunks.
	var b strings.Builder
	for _, op := range match(from.out, to.out) {
		was := join(from.out[op.I1:op.I2], o.escape)
		now := join(to.out[op.J1:op.J2], o.escape)
		switch op.Tag {
		case 'e':
			b.WriteString(" " + was + " ")
		case 'r':
			b.WriteString(" <ins>" + now + "</ins> ")
			b.WriteString(" <del>" + was + "</del> ")
		case 'd':
			b.WriteString(" <del>" + was + "</del> ")
		case 'i':
			b.WriteString(" <ins>" + now + "</ins> ")
		}
	}
	return clean(b.String())
}

func match(a, b []string) []difflib.OpCode {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	return difflib.NewMatcherWithJunk(a, b, false, nil).GetOpCodes()
}

func join(items []string, escape bool) string {
	if !escape {
		return strings.Join(items, " ")
	}
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = html.EscapeString(item)
	}
	return strings.Join(escaped, " ")
}

func clean(s string) string {
	s = emptyMark.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Stringify renders a field value as diffable text. Lists are joined with
// commas; nil becomes the empty string.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
