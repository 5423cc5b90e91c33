package flow

// WebSocketFlow is an upgraded connection and its ordered message
// history, plus close metadata once the connection has ended.
type WebSocketFlow struct {
	Base
	Messages     []WebSocketMessage `json:"messages,omitempty"`
	CloseSender  string             `json:"closeSender,omitempty"`
	CloseCode    int                `json:"closeCode,omitempty"`
	CloseMessage string             `json:"closeMessage,omitempty"`
	CloseReason  string             `json:"closeReason,omitempty"`
	Error        *Error             `json:"error,omitempty"`
}

func (*WebSocketFlow) Kind() string { return "websocket" }

// LastMessage returns the most recent message, or nil.
func (f *WebSocketFlow) LastMessage() *WebSocketMessage {
	if len(f.Messages) == 0 {
		return nil
	}
	return &f.Messages[len(f.Messages)-1]
}

// WebSocketMessage is a single frame payload. Text frames keep their
// bytes in Data too; IsText only records the frame type.
type WebSocketMessage struct {
	FromClient bool   `json:"fromClient"`
	IsText     bool   `json:"isText,omitempty"`
	Data       []byte `json:"data,omitempty"`
}

func (m *WebSocketMessage) Content() []byte { return m.Data }

func (m *WebSocketMessage) ContentType() string {
	if m.IsText {
		return "text/plain"
	}
	return ""
}
