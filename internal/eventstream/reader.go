// Package eventstream decodes flow lifecycle events from a JSON-lines
// stream and routes them to a handler, one event at a time. This is the
// seam between the capture side and the renderer: the reader imposes
// the serialization the renderer's contract requires.
package eventstream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/usestring/powdump/pkg/flow"
)

// Lifecycle event names, matching the capture side's hook names.
const (
	EventResponse         = "response"
	EventError            = "error"
	EventWebSocketMessage = "websocket_message"
	EventWebSocketEnd     = "websocket_end"
	EventWebSocketError   = "websocket_error"
	EventTCPMessage       = "tcp_message"
	EventTCPError         = "tcp_error"
)

// Event is one JSONL envelope. Exactly one flow payload should be set,
// matching the event type.
type Event struct {
	Type      string              `json:"event"`
	HTTP      *flow.HTTPFlow      `json:"httpFlow,omitempty"`
	WebSocket *flow.WebSocketFlow `json:"webSocketFlow,omitempty"`
	TCP       *flow.TCPFlow       `json:"tcpFlow,omitempty"`
}

// Handler receives decoded lifecycle events. *dump.Dumper satisfies it.
type Handler interface {
	Response(*flow.HTTPFlow)
	Error(*flow.HTTPFlow)
	WebSocketMessage(*flow.WebSocketFlow)
	WebSocketEnd(*flow.WebSocketFlow)
	WebSocketError(*flow.WebSocketFlow)
	TCPMessage(*flow.TCPFlow)
	TCPError(*flow.TCPFlow)
}

// Dispatch routes one event to the matching handler method. Unknown
// event types and missing payloads are reported, not fatal; the caller
// decides whether to skip or stop.
func Dispatch(h Handler, ev *Event) error {
	switch ev.Type {
	case EventResponse, EventError:
		if ev.HTTP == nil {
			return fmt.Errorf("%s event without httpFlow payload", ev.Type)
		}
		if ev.Type == EventResponse {
			h.Response(ev.HTTP)
		} else {
			h.Error(ev.HTTP)
		}
	case EventWebSocketMessage, EventWebSocketEnd, EventWebSocketError:
		if ev.WebSocket == nil {
			return fmt.Errorf("%s event without webSocketFlow payload", ev.Type)
		}
		switch ev.Type {
		case EventWebSocketMessage:
			h.WebSocketMessage(ev.WebSocket)
		case EventWebSocketEnd:
			h.WebSocketEnd(ev.WebSocket)
		default:
			h.WebSocketError(ev.WebSocket)
		}
	case EventTCPMessage, EventTCPError:
		if ev.TCP == nil {
			return fmt.Errorf("%s event without tcpFlow payload", ev.Type)
		}
		if ev.Type == EventTCPMessage {
			h.TCPMessage(ev.TCP)
		} else {
			h.TCPError(ev.TCP)
		}
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// Reader streams events from a JSONL source.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r. Lines can be large (bodies travel base64-encoded
// inline), so the scanner buffer allows up to 64 MiB per event.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)
	return &Reader{scanner: sc}
}

// Next decodes the next event. It returns io.EOF at end of stream and
// skips blank lines.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("decoding event: %w", err)
		}
		return &ev, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
