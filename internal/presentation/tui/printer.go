package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/kiteflow/internal/runtime"
	"github.com/aretw0/kiteflow/pkg/domain"
)

// Printer writes dispatch outcomes for humans.
// Without Color the output is plain text, suitable for pipes and tests.
type Printer struct {
	Out    io.Writer
	Color  bool
	Render func(string) (string, error)
}

// NewPrinter returns a plain Printer on w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{Out: w}
}

var levelColors = map[domain.LogLevel]string{
	domain.LogLevelDebug: "#9ca3af",
	domain.LogLevelInfo:  "#60a5fa",
	domain.LogLevelWarn:  "#fbbf24",
	domain.LogLevelError: "#f87171",
}

// PrintResult writes the effects of one dispatch followed by its response line.
func (p *Printer) PrintResult(res runtime.Result, resp domain.EventResponse) {
	for _, eff := range res.Effects {
		switch eff.Type {
		case domain.EffectLog:
			tag := fmt.Sprintf("[%s]", eff.Level)
			fmt.Fprintf(p.Out, "%s %s\n", p.paint(tag, levelColors[eff.Level]), eff.Text)
		case domain.EffectResponseText:
			fmt.Fprintln(p.Out, p.render(eff.Text))
		}
	}

	if resp.Success {
		fmt.Fprintf(p.Out, "%s %s (%s)\n", p.paint("ok", "#34d399"), res.EventKind, strings.Join(res.Matched, ", "))
		return
	}
	fmt.Fprintf(p.Out, "%s %s: %s\n", p.paint("fail", "#f87171"), resp.Error.Code, resp.Error.Message)
}

func (p *Printer) paint(s, color string) string {
	if !p.Color || color == "" {
		return s
	}
	return termenv.String(s).Foreground(termenv.ColorProfile().Color(color)).String()
}

func (p *Printer) render(text string) string {
	if p.Render == nil {
		return text
	}
	out, err := p.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
