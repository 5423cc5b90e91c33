// Package flow defines the intercepted-traffic data model that powdump
// renders: one logical exchange per flow, in an HTTP, WebSocket, or TCP
// variant, plus its connection endpoints and optional error.
package flow

import "strings"

// Replay marker values. A replayed flow originated from a recording, not
// a live connection.
const (
	ReplayNone     = ""
	ReplayRequest  = "request"
	ReplayResponse = "response"
)

// WebSocket close sender sides.
const (
	SideClient = "client"
	SideServer = "server"
)

// Connection is one endpoint of an intercepted exchange.
type Connection struct {
	Address string `json:"address"`
	Peer    string `json:"peer,omitempty"`
}

// Error carries a flow-level failure message.
type Error struct {
	Msg string `json:"msg"`
}

// Base holds the fields shared by all flow variants.
type Base struct {
	ClientConn *Connection       `json:"clientConn,omitempty"`
	ServerConn *Connection       `json:"serverConn,omitempty"`
	Replay     string            `json:"replay,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ClientPeer returns the client connection's peer address, or "" when no
// client connection exists (e.g. replayed flows).
func (b *Base) ClientPeer() string {
	if b.ClientConn == nil {
		return ""
	}
	return b.ClientConn.Peer
}

// ServerAddress returns the server connection's address, or "".
func (b *Base) ServerAddress() string {
	if b.ServerConn == nil {
		return ""
	}
	return b.ServerConn.Address
}

// Any is implemented by the three flow variants. Code that handles flows
// generically switches on the concrete type, not on Kind.
type Any interface {
	// Kind names the variant: "http", "websocket", or "tcp".
	Kind() string
}

// Headers is an ordered sequence of (name, value) pairs. Names and
// values may contain control characters; they are escaped at render
// time, never here.
type Headers [][]string

// Get returns the first value for name (case-insensitive), or "".
func (h Headers) Get(name string) string {
	name = strings.ToLower(name)
	for _, pair := range h {
		if len(pair) >= 2 && strings.ToLower(pair[0]) == name {
			return pair[1]
		}
	}
	return ""
}

// Message is one previewable payload: an HTTP message body, a WebSocket
// message, or a TCP segment. Content views consume this interface.
type Message interface {
	Content() []byte
	ContentType() string
}
