package dump

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/powdump/internal/contentview"
	"github.com/usestring/powdump/pkg/flow"
	"github.com/usestring/powdump/pkg/human"
)

// newTestDumper returns a dumper writing to in-memory buffers with a
// fixed 80-column terminal. Buffers are not TTYs, so styles render as
// plain text and lines can be asserted exactly.
func newTestDumper(t *testing.T) (*Dumper, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	d := New(&out, &errOut)
	d.SetTerminalWidth(func() int { return 80 })
	return d, &out, &errOut
}

func configure(t *testing.T, d *Dumper, opts Options) {
	t.Helper()
	require.NoError(t, d.Configure(opts))
}

func makeFlow() *flow.HTTPFlow {
	return &flow.HTTPFlow{
		Base: flow.Base{
			ClientConn: &flow.Connection{Address: "127.0.0.1:8080", Peer: "127.0.0.1:1234"},
			ServerConn: &flow.Connection{Address: "93.184.216.34:80"},
		},
		Request: &flow.Request{
			Method:      "GET",
			URL:         "http://example.com/",
			HTTPVersion: "HTTP/1.1",
		},
		Response: &flow.Response{
			StatusCode:  304,
			Reason:      "Not Modified",
			HTTPVersion: "HTTP/1.1",
			Body:        []byte{},
		},
	}
}

func outLines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

// --- eligibility ---

func TestMatch_DetailZero(t *testing.T) {
	d, out, _ := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 0, ContentView: "auto"})

	f := makeFlow()
	assert.False(t, d.Match(f))
	d.Response(f)
	assert.Empty(t, out.String())

	// A matching filter does not override detail 0.
	configure(t, d, Options{FlowDetail: 0, ContentView: "auto", Filter: `.method == "GET"`})
	assert.False(t, d.Match(f))
}

func TestMatch_NoFilter(t *testing.T) {
	d, _, _ := newTestDumper(t)

	assert.True(t, d.Match(makeFlow()))
	assert.True(t, d.Match(&flow.WebSocketFlow{}))
	assert.True(t, d.Match(&flow.TCPFlow{}))
}

func TestMatch_Filter(t *testing.T) {
	d, out, _ := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 1, ContentView: "auto", Filter: `.method == "GET"`})

	get := makeFlow()
	assert.True(t, d.Match(get))

	post := makeFlow()
	post.Request.Method = "POST"
	assert.False(t, d.Match(post))

	d.Response(post)
	assert.Empty(t, out.String(), "rejected flows render nothing")
}

// --- configuration ---

func TestConfigure_RejectsInvalidFilter(t *testing.T) {
	d, _, _ := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 2, ContentView: "raw"})

	err := d.Configure(Options{FlowDetail: 3, ContentView: "raw", Filter: "((("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(((")

	// Rejected updates leave the previous options in effect.
	assert.Equal(t, 2, d.Options().FlowDetail)
	assert.Equal(t, "", d.Options().Filter)
	assert.True(t, d.Match(makeFlow()))
}

func TestConfigure_RejectsBadDetailAndView(t *testing.T) {
	d, _, _ := newTestDumper(t)

	assert.Error(t, d.Configure(Options{FlowDetail: 5, ContentView: "auto"}))
	assert.Error(t, d.Configure(Options{FlowDetail: -1, ContentView: "auto"}))
	assert.ErrorContains(t, d.Configure(Options{FlowDetail: 1, ContentView: "nope"}), "nope")
}

// --- request/response lines ---

func TestEndToEnd_RequestResponseAlignment(t *testing.T) {
	d, out, _ := newTestDumper(t)
	d.Response(makeFlow())

	lines := outLines(out)
	require.Len(t, lines, 2)
	assert.Equal(t, "127.0.0.1:1234: GET http://example.com/", lines[0])
	assert.Equal(t, strings.Repeat(" ", 12)+" << 304 Not Modified 0b", lines[1])
}

func TestRequestLine_TruncatesLongURL(t *testing.T) {
	d, out, _ := newTestDumper(t)
	d.SetTerminalWidth(func() int { return 100 })

	f := makeFlow()
	f.Request.URL = "http://example.com/" + strings.Repeat("a", 120)
	f.Response = nil
	d.Response(f)

	want := string([]rune(f.Request.URL)[:75]) + "…"
	line := outLines(out)[0]
	assert.Contains(t, line, want)
	assert.NotContains(t, line, f.Request.URL)
}

func TestRequestLine_NarrowTerminalFloor(t *testing.T) {
	d, out, _ := newTestDumper(t)
	d.SetTerminalWidth(func() int { return 20 })

	f := makeFlow()
	f.Request.URL = "http://example.com/" + strings.Repeat("b", 100)
	f.Response = nil
	d.Response(f)

	// The limit never drops below 50 characters.
	assert.Contains(t, outLines(out)[0], string([]rune(f.Request.URL)[:50])+"…")
}

func TestRequestLine_NoTruncationAtHigherDetail(t *testing.T) {
	d, out, _ := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 2, ContentView: "auto"})

	f := makeFlow()
	f.Request.URL = "http://example.com/" + strings.Repeat("c", 200)
	f.Response = nil
	d.Response(f)

	assert.Contains(t, out.String(), f.Request.URL)
}

func TestRequestLine_Replay(t *testing.T) {
	d, out, _ := newTestDumper(t)

	f := makeFlow()
	f.ClientConn = nil
	f.Replay = flow.ReplayRequest
	f.Response = nil
	d.Response(f)

	assert.Equal(t, "[replay]: GET http://example.com/", outLines(out)[0])
}

func TestRequestLine_PushPromise(t *testing.T) {
	d, out, _ := newTestDumper(t)

	f := makeFlow()
	f.Metadata = map[string]string{"h2-pushed-stream": "1"}
	f.Response = nil
	d.Response(f)

	assert.Contains(t, outLines(out)[0], "GET PUSH_PROMISE ")
}

func TestRequestLine_VersionElision(t *testing.T) {
	d, out, _ := newTestDumper(t)

	// h1 request with no response yet: version hidden.
	f := makeFlow()
	f.Response = nil
	d.Response(f)
	assert.Equal(t, "127.0.0.1:1234: GET http://example.com/", outLines(out)[0])

	// HTTP/2 request: version shown.
	out.Reset()
	f.Request.HTTPVersion = "HTTP/2.0"
	d.Response(f)
	assert.Equal(t, "127.0.0.1:1234: GET http://example.com/ HTTP/2.0", outLines(out)[0])
}

func TestRequestLine_ShowHost(t *testing.T) {
	d, out, _ := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 1, ContentView: "auto", ShowHost: true})

	f := makeFlow()
	f.Request.URL = "http://10.0.0.5/"
	f.Request.PrettyURL = "http://internal.example.com/"
	f.Response = nil
	d.Response(f)

	assert.Contains(t, outLines(out)[0], "http://internal.example.com/")
}

func TestResponseLine_ContentMissing(t *testing.T) {
	d, out, _ := newTestDumper(t)

	f := makeFlow()
	f.Response.Body = nil
	d.Response(f)

	assert.Contains(t, outLines(out)[1], "(content missing)")
}

func TestResponseLine_HTTP2ReasonFallback(t *testing.T) {
	d, out, _ := newTestDumper(t)

	f := makeFlow()
	f.Request.HTTPVersion = "HTTP/2.0"
	f.Response = &flow.Response{StatusCode: 404, HTTPVersion: "HTTP/2.0", Body: []byte{}}
	d.Response(f)

	assert.Contains(t, outLines(out)[1], "HTTP/2.0 404 Not Found 0b")
}

func TestResponseLine_ReplayMarker(t *testing.T) {
	d, out, _ := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 2, ContentView: "auto"})

	f := makeFlow()
	f.Replay = flow.ReplayResponse
	d.Response(f)

	assert.Contains(t, out.String(), "[replay] << 304 Not Modified 0b")
}

func TestStatusColorBuckets(t *testing.T) {
	assert.Equal(t, Green, statusColor(200))
	assert.Equal(t, Green, statusColor(204))
	assert.Equal(t, Magenta, statusColor(301))
	assert.Equal(t, Red, statusColor(404))
	assert.Equal(t, Red, statusColor(418), "418 sits in the 4xx bucket; blink is additive")
	assert.Equal(t, Red, statusColor(503))
	assert.Equal(t, ColorNone, statusColor(100))
	assert.Equal(t, ColorNone, statusColor(700))
}

func TestRoundTrip_StatusAndSize(t *testing.T) {
	d, out, _ := newTestDumper(t)

	f := makeFlow()
	f.Response = &flow.Response{
		StatusCode:  200,
		Reason:      "OK",
		HTTPVersion: "HTTP/1.1",
		Body:        bytes.Repeat([]byte("x"), 1234),
	}
	d.Response(f)

	fields := strings.Fields(outLines(out)[1])
	require.Len(t, fields, 4) // << code reason size
	code, err := strconv.Atoi(fields[1])
	require.NoError(t, err)
	assert.Equal(t, 200, code)

	size, err := human.ParseSize(fields[3])
	require.NoError(t, err)
	assert.InDelta(t, 1234, size, 13)
}

// --- headers, trailers, errors ---

func TestHeadersAndTrailers(t *testing.T) {
	d, out, _ := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 2, ContentView: "auto"})

	f := makeFlow()
	f.Response.Headers = flow.Headers{{"Content-Type", "text/html"}}
	f.Response.Trailers = flow.Headers{{"X-Checksum", "abc123"}}
	d.Response(f)

	s := out.String()
	assert.Contains(t, s, "    Content-Type: text/html")
	assert.Contains(t, s, "    --- HTTP Trailers")
	assert.Contains(t, s, "    X-Checksum: abc123")
}

func TestHeaders_EscapesControlBytes(t *testing.T) {
	d, out, _ := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 2, ContentView: "auto"})

	f := makeFlow()
	f.Request.Headers = flow.Headers{{"X-Weird", "a\x00b"}}
	f.Response = nil
	d.Response(f)

	assert.Contains(t, out.String(), `X-Weird: a\x00b`)
}

func TestHTTPError_OnPrimaryStream(t *testing.T) {
	d, out, errOut := newTestDumper(t)

	f := makeFlow()
	f.Response = nil
	f.Error = &flow.Error{Msg: "connection reset"}
	d.Error(f)

	assert.Contains(t, out.String(), " << connection reset")
	assert.Empty(t, errOut.String())
}

// --- body preview ---

// stubView emits a fixed number of single-token lines.
type stubView struct {
	n int
}

func (stubView) Name() string { return "stub" }

func (v stubView) Render(flow.Message, flow.Any) (contentview.LineReader, error) {
	lines := make([]contentview.Line, v.n)
	for i := range lines {
		lines[i] = contentview.Line{{Style: "text", Text: "line-" + strconv.Itoa(i)}}
	}
	return contentview.NewSliceReader(lines), nil
}

// errView always fails to render.
type errView struct{}

func (errView) Name() string { return "broken" }

func (errView) Render(flow.Message, flow.Any) (contentview.LineReader, error) {
	return contentview.Empty(), assert.AnError
}

func responseOnlyFlow(body []byte) *flow.HTTPFlow {
	return &flow.HTTPFlow{
		Base: flow.Base{
			ClientConn: &flow.Connection{Address: "127.0.0.1:8080", Peer: "127.0.0.1:1234"},
		},
		Response: &flow.Response{
			StatusCode:  200,
			Reason:      "OK",
			HTTPVersion: "HTTP/1.1",
			Body:        body,
		},
	}
}

func TestPreview_CapAtDetailThree(t *testing.T) {
	d, out, _ := newTestDumper(t)
	d.Views().Register(stubView{n: 100})
	configure(t, d, Options{FlowDetail: 3, ContentView: "stub"})

	d.Response(responseOnlyFlow([]byte("ignored by stub")))

	s := out.String()
	assert.Equal(t, 70, strings.Count(s, "line-"))
	assert.Contains(t, s, "    (cut off)")
}

func TestPreview_UnboundedAtDetailFour(t *testing.T) {
	d, out, _ := newTestDumper(t)
	d.Views().Register(stubView{n: 100})
	configure(t, d, Options{FlowDetail: 4, ContentView: "stub"})

	d.Response(responseOnlyFlow([]byte("ignored by stub")))

	s := out.String()
	assert.Equal(t, 100, strings.Count(s, "line-"))
	assert.NotContains(t, s, "(cut off)")
}

func TestPreview_ExactCapNoMarker(t *testing.T) {
	d, out, _ := newTestDumper(t)
	d.Views().Register(stubView{n: 70})
	configure(t, d, Options{FlowDetail: 3, ContentView: "stub"})

	d.Response(responseOnlyFlow(nil))

	s := out.String()
	assert.Equal(t, 70, strings.Count(s, "line-"))
	assert.NotContains(t, s, "(cut off)", "a preview that fits exactly is not cut off")
}

func TestPreview_RenderErrorDegrades(t *testing.T) {
	d, out, _ := newTestDumper(t)
	d.Views().Register(errView{})
	configure(t, d, Options{FlowDetail: 3, ContentView: "broken"})

	d.echoMessage(responseOnlyFlow(nil).Response, responseOnlyFlow(nil))

	// Empty preview: no content block, no cut-off marker, just the
	// detail>=2 separator line.
	assert.Equal(t, "\n", out.String())
}

func TestPreview_IndentsAndJoinsWithCRLF(t *testing.T) {
	d, out, _ := newTestDumper(t)
	d.Views().Register(stubView{n: 2})
	configure(t, d, Options{FlowDetail: 4, ContentView: "stub"})

	d.echoMessage(responseOnlyFlow(nil).Response, responseOnlyFlow(nil))

	assert.Contains(t, out.String(), "    line-0\r\n    line-1")
}

// --- websocket / tcp events ---

func wsFlow() *flow.WebSocketFlow {
	return &flow.WebSocketFlow{
		Base: flow.Base{
			ClientConn: &flow.Connection{Address: "127.0.0.1:8080", Peer: "127.0.0.1:1234"},
			ServerConn: &flow.Connection{Address: "93.184.216.34:443"},
		},
	}
}

func TestWebSocketEnd(t *testing.T) {
	d, out, _ := newTestDumper(t)

	f := wsFlow()
	f.CloseSender = flow.SideClient
	f.CloseCode = 1000
	f.CloseMessage = "bye"
	f.CloseReason = "normal"
	d.WebSocketEnd(f)

	lines := outLines(out)
	require.Len(t, lines, 1)
	assert.Equal(t, "WebSocket connection closed by client: 1000 bye, normal", lines[0])
}

func TestWebSocketMessage(t *testing.T) {
	d, out, _ := newTestDumper(t)

	f := wsFlow()
	f.Messages = []flow.WebSocketMessage{
		{FromClient: true, IsText: true, Data: []byte("hello")},
	}
	d.WebSocketMessage(f)

	assert.Equal(t,
		"127.0.0.1:1234 -> WebSocket text message -> 93.184.216.34:443 (5b)",
		outLines(out)[0])
}

func TestWebSocketError_Unconditional(t *testing.T) {
	d, out, errOut := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 0, ContentView: "auto", Filter: `.type == "never"`})

	f := wsFlow()
	f.Error = &flow.Error{Msg: "handshake failed"}
	d.WebSocketError(f)

	assert.Empty(t, out.String())
	assert.Equal(t,
		"Error in WebSocket connection to 93.184.216.34:443: handshake failed\n",
		errOut.String())
}

func TestTCPMessage(t *testing.T) {
	d, out, _ := newTestDumper(t)

	f := &flow.TCPFlow{
		Base: flow.Base{
			ClientConn: &flow.Connection{Address: "127.0.0.1:8080", Peer: "127.0.0.1:1234"},
			ServerConn: &flow.Connection{Address: "93.184.216.34:25"},
		},
		Messages: []flow.TCPMessage{{FromClient: true, Data: []byte("EHLO")}},
	}
	d.TCPMessage(f)
	assert.Equal(t, "127.0.0.1:1234 -> tcp -> 93.184.216.34:25", outLines(out)[0])

	out.Reset()
	f.Messages = append(f.Messages, flow.TCPMessage{FromClient: false, Data: []byte("250 OK")})
	d.TCPMessage(f)
	assert.Equal(t, "127.0.0.1:1234 <- tcp <- 93.184.216.34:25", outLines(out)[0])
}

func TestTCPError_Unconditional(t *testing.T) {
	d, _, errOut := newTestDumper(t)
	configure(t, d, Options{FlowDetail: 0, ContentView: "auto"})

	f := &flow.TCPFlow{
		Base:  flow.Base{ServerConn: &flow.Connection{Address: "93.184.216.34:25"}},
		Error: &flow.Error{Msg: "timeout"},
	}
	d.TCPError(f)

	assert.Equal(t, "Error in TCP connection to 93.184.216.34:25: timeout\n", errOut.String())
}
