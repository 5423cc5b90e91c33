package eventstream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/powdump/pkg/flow"
)

// recorder counts handler invocations by event name.
type recorder struct {
	calls []string
}

func (r *recorder) Response(*flow.HTTPFlow)              { r.calls = append(r.calls, "response") }
func (r *recorder) Error(*flow.HTTPFlow)                 { r.calls = append(r.calls, "error") }
func (r *recorder) WebSocketMessage(*flow.WebSocketFlow) { r.calls = append(r.calls, "ws_message") }
func (r *recorder) WebSocketEnd(*flow.WebSocketFlow)     { r.calls = append(r.calls, "ws_end") }
func (r *recorder) WebSocketError(*flow.WebSocketFlow)   { r.calls = append(r.calls, "ws_error") }
func (r *recorder) TCPMessage(*flow.TCPFlow)             { r.calls = append(r.calls, "tcp_message") }
func (r *recorder) TCPError(*flow.TCPFlow)               { r.calls = append(r.calls, "tcp_error") }

func TestReader_Next(t *testing.T) {
	input := `{"event":"response","httpFlow":{"request":{"method":"GET","url":"http://a/","httpVersion":"HTTP/1.1"}}}

{"event":"tcp_message","tcpFlow":{"messages":[{"fromClient":true}]}}
`
	r := NewReader(strings.NewReader(input))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, EventResponse, ev.Type)
	require.NotNil(t, ev.HTTP)
	assert.Equal(t, "GET", ev.HTTP.Request.Method)

	ev, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, EventTCPMessage, ev.Type)
	require.NotNil(t, ev.TCP)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_BadJSON(t *testing.T) {
	r := NewReader(strings.NewReader("{not json}\n"))
	_, err := r.Next()
	assert.Error(t, err)
}

func TestDispatch_Routing(t *testing.T) {
	rec := &recorder{}

	events := []*Event{
		{Type: EventResponse, HTTP: &flow.HTTPFlow{}},
		{Type: EventError, HTTP: &flow.HTTPFlow{}},
		{Type: EventWebSocketMessage, WebSocket: &flow.WebSocketFlow{}},
		{Type: EventWebSocketEnd, WebSocket: &flow.WebSocketFlow{}},
		{Type: EventWebSocketError, WebSocket: &flow.WebSocketFlow{}},
		{Type: EventTCPMessage, TCP: &flow.TCPFlow{}},
		{Type: EventTCPError, TCP: &flow.TCPFlow{}},
	}
	for _, ev := range events {
		require.NoError(t, Dispatch(rec, ev))
	}
	assert.Equal(t, []string{
		"response", "error", "ws_message", "ws_end", "ws_error", "tcp_message", "tcp_error",
	}, rec.calls)
}

func TestDispatch_Invalid(t *testing.T) {
	rec := &recorder{}

	err := Dispatch(rec, &Event{Type: "bogus"})
	assert.ErrorContains(t, err, "bogus")

	err = Dispatch(rec, &Event{Type: EventResponse})
	assert.ErrorContains(t, err, "without httpFlow")

	err = Dispatch(rec, &Event{Type: EventWebSocketEnd})
	assert.ErrorContains(t, err, "without webSocketFlow")

	assert.Empty(t, rec.calls)
}
