package dump

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/usestring/powdump/pkg/flow"
	"github.com/usestring/powdump/pkg/human"
)

func (d *Dumper) echoHeaders(headers flow.Headers) {
	for _, pair := range headers {
		if len(pair) < 2 {
			continue
		}
		name := d.sink.Style(Style{Fg: Blue}, human.EscapeBytes(pair[0]))
		d.sink.Write(name+": "+human.EscapeBytes(pair[1]), 4, Style{})
	}
}

func (d *Dumper) echoTrailers(trailers flow.Headers) {
	if len(trailers) == 0 {
		return
	}
	d.sink.Write(d.sink.Style(Style{Fg: Magenta}, "--- HTTP Trailers"), 4, Style{})
	d.echoHeaders(trailers)
}

func (d *Dumper) echoRequestLine(f *flow.HTTPFlow) {
	var client string
	if f.ClientConn != nil {
		client = human.EscapeControl(human.FormatAddress(f.ClientConn.Peer))
	} else if f.Replay == flow.ReplayRequest {
		client = d.sink.Style(Style{Fg: Yellow, Bold: true}, "[replay]")
	}

	method := f.Request.Method
	if _, pushed := f.Metadata["h2-pushed-stream"]; pushed {
		method += " PUSH_PROMISE"
	}
	methodColor := Magenta
	switch strings.ToUpper(method) {
	case "GET":
		methodColor = Green
	case "DELETE":
		methodColor = Red
	}
	methodStyled := d.sink.Style(Style{Fg: methodColor, Bold: true}, human.EscapeControl(method))

	url := f.Request.URL
	if d.opts.ShowHost && f.Request.PrettyURL != "" {
		url = f.Request.PrettyURL
	}
	if d.opts.FlowDetail <= 1 {
		// Truncate before styling so escape sequences never count
		// against the width.
		limit := d.termWidth() - 25
		if limit < 50 {
			limit = 50
		}
		if utf8.RuneCountInString(url) > limit {
			url = string([]rune(url)[:limit]) + "…"
		}
	}
	urlStyled := d.sink.Style(Style{Bold: true}, human.EscapeControl(url))

	// Hide the version for plain h1 <-> h1 exchanges; show it for h2
	// and for protocol-mismatched pairs.
	httpVersion := ""
	respVersion := "HTTP/1.1"
	if f.Response != nil {
		respVersion = f.Response.HTTPVersion
	}
	if !(f.Request.IsHTTP10() || f.Request.IsHTTP11()) || f.Request.HTTPVersion != respVersion {
		httpVersion = " " + f.Request.HTTPVersion
	}

	d.sink.Write(fmt.Sprintf("%s: %s %s%s", client, methodStyled, urlStyled, httpVersion), 0, Style{})
}

// statusColor buckets a status code for display.
func statusColor(code int) Color {
	switch {
	case code >= 200 && code < 300:
		return Green
	case code >= 300 && code < 400:
		return Magenta
	case code >= 400 && code < 600:
		return Red
	}
	return ColorNone
}

func (d *Dumper) echoResponseLine(f *flow.HTTPFlow) {
	resp := f.Response

	replayText := ""
	replay := ""
	if f.Replay == flow.ReplayResponse {
		replayText = "[replay]"
		replay = d.sink.Style(Style{Fg: Yellow, Bold: true}, replayText)
	}

	codeColor := statusColor(resp.StatusCode)
	code := d.sink.Style(
		Style{Fg: codeColor, Bold: true, Blink: resp.StatusCode == 418},
		strconv.Itoa(resp.StatusCode),
	)

	// HTTP/2 carries no reason phrase on the wire; fall back to the
	// registered status text (empty for unregistered codes).
	reason := resp.Reason
	if resp.IsHTTP2() {
		reason = http.StatusText(resp.StatusCode)
	}
	reasonStyled := d.sink.Style(Style{Fg: codeColor, Bold: true}, human.EscapeControl(reason))

	size := "(content missing)"
	if resp.Body != nil {
		size = human.PrettySize(int64(len(resp.Body)))
	}
	sizeStyled := d.sink.Style(Style{Bold: true}, size)

	httpVersion := ""
	reqVersion := "HTTP/1.1"
	if f.Request != nil {
		reqVersion = f.Request.HTTPVersion
	}
	if !(resp.IsHTTP10() || resp.IsHTTP11()) || reqVersion != resp.HTTPVersion {
		httpVersion = resp.HTTPVersion + " "
	}

	arrows := d.sink.Style(Style{Bold: true}, " <<")
	if d.opts.FlowDetail == 1 {
		// Align the status under the request method:
		//   127.0.0.1:59519: GET http://example.com/
		//                 << 304 Not Modified 0b
		pad := len(human.FormatAddress(f.ClientPeer())) - (2 + len(httpVersion) + len(replayText))
		if pad < 0 {
			pad = 0
		}
		arrows = strings.Repeat(" ", pad) + arrows
	}

	d.sink.Write(fmt.Sprintf("%s%s %s%s %s %s",
		replay, arrows, httpVersion, code, reasonStyled, sizeStyled), 0, Style{})
}
