// Package dump renders flow lifecycle events as colorized,
// verbosity-controlled lines on a pair of output streams. It is the
// human-readable surface of the capture pipeline: one handler per
// lifecycle event, invoked synchronously, no state shared across
// events beyond the options.
package dump

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"

	"github.com/usestring/powdump/internal/contentview"
	"github.com/usestring/powdump/internal/filter"
	"github.com/usestring/powdump/pkg/flow"
	"github.com/usestring/powdump/pkg/human"
)

// Dumper renders flows. Construct with New, adjust via Configure.
type Dumper struct {
	sink      *Sink
	views     *contentview.Registry
	opts      Options
	matcher   *filter.Matcher
	termWidth func() int
}

// New returns a Dumper writing summaries to out and error notices to
// errOut, with default options and the builtin content views.
func New(out, errOut io.Writer) *Dumper {
	return &Dumper{
		sink:      NewSink(out, errOut),
		views:     contentview.NewRegistry(),
		opts:      DefaultOptions(),
		termWidth: terminalWidth,
	}
}

// Views exposes the content-view registry so callers can add views
// before configuring.
func (d *Dumper) Views() *contentview.Registry { return d.views }

// SetTerminalWidth overrides terminal width detection, e.g. for a
// fixed-width override or piped output.
func (d *Dumper) SetTerminalWidth(fn func() int) {
	if fn != nil {
		d.termWidth = fn
	}
}

func terminalWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}

// Match reports whether f should be rendered at all: detail 0 renders
// nothing, and an active filter must accept the flow.
func (d *Dumper) Match(f flow.Any) bool {
	if d.opts.FlowDetail == 0 {
		return false
	}
	if d.matcher == nil {
		return true
	}
	return d.matcher.Match(f)
}

// Response handles a completed HTTP flow.
func (d *Dumper) Response(f *flow.HTTPFlow) {
	if d.Match(f) {
		d.echoFlow(f)
	}
}

// Error handles an HTTP flow that ended in an error.
func (d *Dumper) Error(f *flow.HTTPFlow) {
	if d.Match(f) {
		d.echoFlow(f)
	}
}

func (d *Dumper) echoFlow(f *flow.HTTPFlow) {
	if f.Request != nil {
		d.echoRequestLine(f)
		if d.opts.FlowDetail >= 2 {
			d.echoHeaders(f.Request.Headers)
		}
		if d.opts.FlowDetail >= 3 {
			d.echoMessage(f.Request, f)
		}
		if d.opts.FlowDetail >= 2 {
			d.echoTrailers(f.Request.Trailers)
		}
	}

	if f.Response != nil {
		d.echoResponseLine(f)
		if d.opts.FlowDetail >= 2 {
			d.echoHeaders(f.Response.Headers)
		}
		if d.opts.FlowDetail >= 3 {
			d.echoMessage(f.Response, f)
		}
		if d.opts.FlowDetail >= 2 {
			d.echoTrailers(f.Response.Trailers)
		}
	}

	if f.Error != nil {
		d.sink.Write(" << "+human.EscapeControl(f.Error.Msg), 0, Style{Fg: Red, Bold: true})
	}
}

// WebSocketMessage handles a newly received WebSocket message.
func (d *Dumper) WebSocketMessage(f *flow.WebSocketFlow) {
	if !d.Match(f) {
		return
	}
	m := f.LastMessage()
	if m == nil {
		return
	}
	d.sink.Write(d.websocketMessageInfo(f, m), 0, Style{})
	if d.opts.FlowDetail >= 3 {
		d.echoMessage(m, f)
	}
}

func (d *Dumper) websocketMessageInfo(f *flow.WebSocketFlow, m *flow.WebSocketMessage) string {
	dir := "->"
	if !m.FromClient {
		dir = "<-"
	}
	kind := "binary"
	if m.IsText {
		kind = "text"
	}
	return fmt.Sprintf("%s %s WebSocket %s message %s %s (%s)",
		human.FormatAddress(f.ClientPeer()), dir, kind, dir,
		human.FormatAddress(f.ServerAddress()), human.PrettySize(int64(len(m.Data))))
}

// WebSocketEnd handles connection close.
func (d *Dumper) WebSocketEnd(f *flow.WebSocketFlow) {
	if !d.Match(f) {
		return
	}
	d.sink.Write(fmt.Sprintf("WebSocket connection closed by %s: %d %s, %s",
		f.CloseSender, f.CloseCode, f.CloseMessage, f.CloseReason), 0, Style{})
}

// WebSocketError reports a connection error. Connection errors are
// user-visible regardless of filter or detail level.
func (d *Dumper) WebSocketError(f *flow.WebSocketFlow) {
	d.connError("WebSocket", f.ServerAddress(), f.Error)
}

// TCPError reports a connection error, unconditionally like
// WebSocketError.
func (d *Dumper) TCPError(f *flow.TCPFlow) {
	d.connError("TCP", f.ServerAddress(), f.Error)
}

func (d *Dumper) connError(proto, server string, ferr *flow.Error) {
	msg := ""
	if ferr != nil {
		msg = human.EscapeControl(ferr.Msg)
	}
	d.sink.WriteError(fmt.Sprintf("Error in %s connection to %s: %s",
		proto, human.FormatAddress(server), msg), Style{Fg: Red})
}

// TCPMessage handles a newly received TCP segment.
func (d *Dumper) TCPMessage(f *flow.TCPFlow) {
	if !d.Match(f) {
		return
	}
	m := f.LastMessage()
	if m == nil {
		return
	}
	dir := "->"
	if !m.FromClient {
		dir = "<-"
	}
	d.sink.Write(fmt.Sprintf("%s %s tcp %s %s",
		human.FormatAddress(f.ClientPeer()), dir, dir,
		human.FormatAddress(f.ServerAddress())), 0, Style{})
	if d.opts.FlowDetail >= 3 {
		d.echoMessage(m, f)
	}
}
