package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the kiteflow ASCII art banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _    _ _        __ _               ", "#818cf8"},
		{"| | _(_) |_ ___ / _| | _____      __", "#a78bfa"},
		{"| |/ / | __/ _ \\ |_| |/ _ \\ \\ /\\ / /", "#c084fc"},
		{"|   <| | ||  __/  _| | (_) \\ V  V / ", "#e879f9"},
		{"|_|\\_\\_|\\__\\___|_| |_|\\___/ \\_/\\_/  ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
