package contentview

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/usestring/powdump/pkg/contenttype"
	"github.com/usestring/powdump/pkg/flow"
)

// Bodies past this size get a one-line notice instead of a rendering;
// a terminal preview of hundreds of megabytes helps nobody.
const maxRenderSize = 10 << 20

// autoView picks a concrete view from the message content type and the
// body bytes: json for valid JSON, hex for binary, raw otherwise.
type autoView struct{}

func (autoView) Name() string { return "auto" }

func (autoView) Render(m flow.Message, f flow.Any) (LineReader, error) {
	data := m.Content()
	if len(data) > maxRenderSize {
		notice := fmt.Sprintf("content exceeds %s, not rendering (%s total)",
			humanize.IBytes(maxRenderSize), humanize.IBytes(uint64(len(data))))
		return NewSliceReader([]Line{{{Style: "highlight", Text: notice}}}), nil
	}

	ct := m.ContentType()
	switch {
	case contenttype.IsJSON(ct) && json.Valid(data):
		return jsonView{}.Render(m, f)
	case contenttype.IsBinary(ct, data):
		return hexView{}.Render(m, f)
	default:
		return rawView{}.Render(m, f)
	}
}
