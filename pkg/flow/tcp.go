package flow

// TCPFlow is a raw proxied TCP stream and its ordered segments.
type TCPFlow struct {
	Base
	Messages []TCPMessage `json:"messages,omitempty"`
	Error    *Error       `json:"error,omitempty"`
}

func (*TCPFlow) Kind() string { return "tcp" }

// LastMessage returns the most recent segment, or nil.
func (f *TCPFlow) LastMessage() *TCPMessage {
	if len(f.Messages) == 0 {
		return nil
	}
	return &f.Messages[len(f.Messages)-1]
}

// TCPMessage is one captured segment of a TCP stream.
type TCPMessage struct {
	FromClient bool   `json:"fromClient"`
	Data       []byte `json:"data,omitempty"`
}

func (m *TCPMessage) Content() []byte { return m.Data }

func (m *TCPMessage) ContentType() string { return "" }
