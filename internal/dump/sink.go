package dump

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// flusher is implemented by buffered writers that need explicit flushes.
type flusher interface {
	Flush() error
}

// Sink writes styled lines to the primary and error streams. Every
// write flushes immediately so interleavings with other producers on
// the same terminal reflect real event order, not buffering.
//
// Each stream gets its own lipgloss renderer: color degrades
// automatically when a stream is redirected away from a TTY.
type Sink struct {
	out, err   io.Writer
	outR, errR *lipgloss.Renderer
}

// NewSink wraps the two output streams.
func NewSink(out, err io.Writer) *Sink {
	return &Sink{
		out:  out,
		err:  err,
		outR: lipgloss.NewRenderer(out),
		errR: lipgloss.NewRenderer(err),
	}
}

// Style applies st to text for the primary stream and returns the
// result, so callers can compose differently-styled fragments into one
// line before writing it.
func (s *Sink) Style(st Style, text string) string {
	return applyStyle(s.outR, st, text)
}

// Write emits one (possibly multi-line) block to the primary stream,
// left-padded by indent spaces and styled as a whole.
func (s *Sink) Write(text string, indent int, st Style) {
	writeStyled(s.out, s.outR, text, indent, st)
}

// WriteError is Write without indentation, targeting the error stream.
func (s *Sink) WriteError(text string, st Style) {
	writeStyled(s.err, s.errR, text, 0, st)
}

func writeStyled(w io.Writer, r *lipgloss.Renderer, text string, indent int, st Style) {
	if indent > 0 {
		text = leftPad(text, indent)
	}
	io.WriteString(w, applyStyle(r, st, text)+"\n")
	if f, ok := w.(flusher); ok {
		f.Flush()
	}
}

func applyStyle(r *lipgloss.Renderer, st Style, text string) string {
	if st == (Style{}) {
		return text
	}
	ls := r.NewStyle()
	if st.Bold {
		ls = ls.Bold(true)
	}
	if st.Dim {
		ls = ls.Faint(true)
	}
	if st.Blink {
		ls = ls.Blink(true)
	}
	if c := ansiColor(st.Fg); c != "" {
		ls = ls.Foreground(lipgloss.Color(c))
	}
	return ls.Render(text)
}

// leftPad trims the block and pads every line of it.
func leftPad(text string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
