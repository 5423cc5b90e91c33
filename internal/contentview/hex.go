package contentview

import (
	"fmt"
	"strings"

	"github.com/usestring/powdump/pkg/flow"
)

const hexCols = 16

// hexView emits a classic hexdump: offset column, hex bytes, ASCII
// gutter. Produced 16 bytes per pull, so unbounded bodies stay cheap
// under a capped preview.
type hexView struct{}

func (hexView) Name() string { return "hex" }

func (hexView) Render(m flow.Message, _ flow.Any) (LineReader, error) {
	data := m.Content()
	off := 0
	return funcReader(func() (Line, bool) {
		if off >= len(data) {
			return nil, false
		}
		end := off + hexCols
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		var hexPart strings.Builder
		var ascii strings.Builder
		for i, b := range chunk {
			if i == hexCols/2 {
				hexPart.WriteByte(' ')
			}
			fmt.Fprintf(&hexPart, "%02x ", b)
			if b >= 0x20 && b < 0x7f {
				ascii.WriteByte(b)
			} else {
				ascii.WriteByte('.')
			}
		}

		line := Line{
			{Style: "offset", Text: fmt.Sprintf("%08x:  ", off)},
			{Style: "text", Text: fmt.Sprintf("%-49s ", hexPart.String())},
			{Style: "text", Text: ascii.String()},
		}
		off = end
		return line, true
	}), nil
}
