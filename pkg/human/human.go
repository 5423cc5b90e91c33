// Package human converts byte sizes and network addresses into the
// compact operator-facing text used on flow lines, and escapes control
// characters before anything reaches the terminal.
package human

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	lim    int64
}{
	{"t", 1 << 40},
	{"g", 1 << 30},
	{"m", 1 << 20},
	{"k", 1 << 10},
}

// PrettySize renders n in the compact flow-line form: "0b", "972b",
// "1.2k", "3m". Values below 1k stay exact; larger ones round to at
// most two decimals with trailing zeros dropped.
func PrettySize(n int64) string {
	for _, u := range sizeUnits {
		if n >= u.lim {
			s := strconv.FormatFloat(float64(n)/float64(u.lim), 'f', 2, 64)
			s = strings.TrimRight(s, "0")
			s = strings.TrimRight(s, ".")
			return s + u.suffix
		}
	}
	return strconv.FormatInt(n, 10) + "b"
}

// ParseSize is the inverse of PrettySize, within rounding.
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	lim := int64(1)
	switch s[len(s)-1] {
	case 'b':
	case 'k':
		lim = 1 << 10
	case 'm':
		lim = 1 << 20
	case 'g':
		lim = 1 << 30
	case 't':
		lim = 1 << 40
	default:
		return 0, fmt.Errorf("invalid size suffix in %q", s)
	}
	x, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(x * float64(lim)), nil
}

// FormatAddress normalizes a "host:port" address for display, wrapping
// IPv6 hosts in brackets. Unparseable input is returned unchanged.
func FormatAddress(addr string) string {
	if addr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// Bare IPv6 with a trailing port and no brackets.
		i := strings.LastIndex(addr, ":")
		if i <= 0 {
			return addr
		}
		host, port = addr[:i], addr[i+1:]
		if _, perr := strconv.Atoi(port); perr != nil {
			return addr
		}
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		return "[" + host + "]:" + port
	}
	return host + ":" + port
}

// EscapeControl replaces control characters with "." so a hostile peer
// cannot inject terminal escapes through method names, URLs, or error
// messages. Tabs, newlines, and carriage returns are kept.
func EscapeControl(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeBytes renders raw header bytes as printable text, escaping
// non-printable bytes in \xNN form and backslashes as \\.
func EscapeBytes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c >= 0x20 && c < 0x7f:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	return b.String()
}
