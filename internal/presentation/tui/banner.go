package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _     _     _                    ", "#818cf8"},
		{"| |__ (_)___| |_ ___  _ __ _   _  ", "#a78bfa"},
		{"| '_ \\| / __| __/ _ \\| '__| | | | ", "#c084fc"},
		{"| | | | \\__ \\ || (_) | |  | |_| | ", "#e879f9"},
		{"|_| |_|_|___/\\__\\___/|_|   \\__, | ", "#f472b6"},
		{"          v i e w e r      |___/  ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
