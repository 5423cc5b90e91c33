package dump

import (
	"log/slog"
	"strings"

	"github.com/usestring/powdump/internal/contentview"
	"github.com/usestring/powdump/pkg/flow"
)

// How many preview lines detail level 3 shows before cutting off.
const previewLineCap = 70

// previewStyles maps content-view token tags to terminal styles.
// Unknown tags render unstyled via the zero Style.
var previewStyles = map[string]Style{
	"highlight": {Bold: true},
	"offset":    {Fg: Blue},
	"header":    {Fg: Green, Bold: true},
	"text":      {Fg: Green},
}

// echoMessage previews one message body through the configured content
// view. A view error degrades to an empty preview and a debug log;
// rendering of the rest of the flow continues.
func (d *Dumper) echoMessage(m flow.Message, f flow.Any) {
	label, lines, err := d.views.Render(d.opts.ContentView, m, f)
	if err != nil {
		slog.Debug("content view failed", "view", d.opts.ContentView, "label", label, "error", err)
	}

	limit := -1
	if d.opts.FlowDetail == 3 {
		limit = previewLineCap
	}

	var rendered []string
	for limit != 0 {
		line, ok := lines.Next()
		if !ok {
			break
		}
		rendered = append(rendered, d.colorful(line))
		if limit > 0 {
			limit--
		}
	}

	if content := strings.Join(rendered, "\r\n"); content != "" {
		d.sink.Write("", 0, Style{})
		d.sink.Write(content, 0, Style{})
	}

	// One peek past the cap tells us whether anything was dropped.
	if _, more := lines.Next(); more {
		d.sink.Write("(cut off)", 4, Style{Dim: true})
	}

	if d.opts.FlowDetail >= 2 {
		d.sink.Write("", 0, Style{})
	}
}

func (d *Dumper) colorful(line contentview.Line) string {
	var b strings.Builder
	b.WriteString("    ") // block indent, applied before styling
	for _, tok := range line {
		b.WriteString(d.sink.Style(previewStyles[tok.Style], tok.Text))
	}
	return b.String()
}
