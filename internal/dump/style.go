package dump

// Color is powdump's base terminal palette. The zero value leaves the
// foreground untouched.
type Color int

const (
	ColorNone Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
)

// Style describes the text attributes the sink can apply. It is
// deliberately decoupled from any terminal library.
type Style struct {
	Fg    Color
	Bold  bool
	Dim   bool
	Blink bool
}

// ansiColor maps a palette color to its base ANSI index.
func ansiColor(c Color) string {
	switch c {
	case Red:
		return "1"
	case Green:
		return "2"
	case Yellow:
		return "3"
	case Blue:
		return "4"
	case Magenta:
		return "5"
	case Cyan:
		return "6"
	}
	return ""
}
