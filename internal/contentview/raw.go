package contentview

import (
	"bytes"

	"github.com/usestring/powdump/pkg/flow"
)

// rawView emits the body as-is, one text token per line. Splitting is
// lazy so a capped preview of a large body never walks the whole thing.
type rawView struct{}

func (rawView) Name() string { return "raw" }

func (rawView) Render(m flow.Message, _ flow.Any) (LineReader, error) {
	rest := m.Content()
	done := len(rest) == 0
	return funcReader(func() (Line, bool) {
		if done {
			return nil, false
		}
		var seg []byte
		if i := bytes.IndexByte(rest, '\n'); i < 0 {
			seg = rest
			done = true
		} else {
			seg = rest[:i]
			rest = rest[i+1:]
			if len(rest) == 0 {
				// trailing newline, not an extra empty line
				done = true
			}
		}
		seg = bytes.TrimSuffix(seg, []byte("\r"))
		return Line{{Style: "text", Text: string(seg)}}, true
	}), nil
}
