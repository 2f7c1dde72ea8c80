package tui

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var markRe = regexp.MustCompile(`<(ins|del)>(.*?)</(?:ins|del)>`)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Colorize renders diff markup for a terminal: insertions in green,
// deletions in red and struck through. Without color the markers are
// rewritten as {+ +} and [- -].
func Colorize(markup string, color bool) string {
	p := termenv.Ascii
	if color {
		p = termenv.ColorProfile()
	}

	return markRe.ReplaceAllStringFunc(markup, func(m string) string {
		parts := markRe.FindStringSubmatch(m)
		kind, text := parts[1], parts[2]

		if p == termenv.Ascii {
			if kind == "ins" {
				return "{+" + text + "+}"
			}
			return "[-" + text + "-]"
		}

		s := termenv.String(text)
		if kind == "ins" {
			return s.Foreground(p.Color("#22c55e")).Underline().String()
		}
		return s.Foreground(p.Color("#ef4444")).CrossOut().String()
	})
}

// StripTags removes the diff markers, keeping their content.
func StripTags(markup string) string {
	r := strings.NewReplacer("<ins>", "", "</ins>", "", "<del>", "", "</del>", "")
	return r.Replace(markup)
}
