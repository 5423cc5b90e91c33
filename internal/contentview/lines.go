package contentview

// sliceReader streams a fixed set of lines.
type sliceReader struct {
	lines []Line
}

// NewSliceReader wraps pre-rendered lines in a LineReader.
func NewSliceReader(lines []Line) LineReader {
	return &sliceReader{lines: lines}
}

func (r *sliceReader) Next() (Line, bool) {
	if len(r.lines) == 0 {
		return nil, false
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, true
}

// funcReader adapts a pull function to LineReader, for lazy views.
type funcReader func() (Line, bool)

func (f funcReader) Next() (Line, bool) { return f() }

// Empty returns a reader with no lines.
func Empty() LineReader {
	return NewSliceReader(nil)
}
