package contentview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/usestring/powdump/pkg/flow"
)

// jsonView pretty-prints a JSON body, tagging object keys as "header"
// tokens so they stand out in the preview.
type jsonView struct{}

func (jsonView) Name() string { return "json" }

func (jsonView) Render(m flow.Message, _ flow.Any) (LineReader, error) {
	data := m.Content()
	if len(data) == 0 {
		return Empty(), nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return Empty(), fmt.Errorf("invalid JSON body: %w", err)
	}

	raw := strings.Split(buf.String(), "\n")
	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, splitKeyLine(l))
	}
	return NewSliceReader(lines), nil
}

// splitKeyLine splits `    "key": value` into a header token for the
// key and a text token for the rest. Lines without a key stay whole.
func splitKeyLine(l string) Line {
	trimmed := strings.TrimLeft(l, " ")
	if !strings.HasPrefix(trimmed, `"`) {
		return Line{{Style: "text", Text: l}}
	}
	i := strings.Index(trimmed, `":`)
	if i < 0 {
		return Line{{Style: "text", Text: l}}
	}
	indent := l[:len(l)-len(trimmed)]
	return Line{
		{Style: "header", Text: indent + trimmed[:i+1]},
		{Style: "text", Text: trimmed[i+1:]},
	}
}
