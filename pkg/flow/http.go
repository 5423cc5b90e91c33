package flow

// HTTPFlow is one intercepted request/response exchange. Request,
// Response, and Error are each optional: an errored flow may carry only
// a request, a replayed one no client connection at all.
type HTTPFlow struct {
	Base
	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`
	Error    *Error    `json:"error,omitempty"`
}

func (*HTTPFlow) Kind() string { return "http" }

// Request is the client half of an HTTP exchange.
type Request struct {
	Method      string  `json:"method"`
	URL         string  `json:"url"`
	PrettyURL   string  `json:"prettyUrl,omitempty"`
	HTTPVersion string  `json:"httpVersion"`
	Headers     Headers `json:"headers,omitempty"`
	Trailers    Headers `json:"trailers,omitempty"`
	Body        []byte  `json:"body,omitempty"`
}

func (r *Request) IsHTTP10() bool { return r.HTTPVersion == "HTTP/1.0" }
func (r *Request) IsHTTP11() bool { return r.HTTPVersion == "HTTP/1.1" }

func (r *Request) Content() []byte { return r.Body }

func (r *Request) ContentType() string { return r.Headers.Get("content-type") }

// Response is the server half of an HTTP exchange. A nil Body means the
// content was not captured ("content missing"), as opposed to an empty
// but present body.
type Response struct {
	StatusCode  int     `json:"statusCode"`
	Reason      string  `json:"reason,omitempty"`
	HTTPVersion string  `json:"httpVersion"`
	Headers     Headers `json:"headers,omitempty"`
	Trailers    Headers `json:"trailers,omitempty"`
	Body        []byte  `json:"body,omitempty"`
}

func (r *Response) IsHTTP10() bool { return r.HTTPVersion == "HTTP/1.0" }
func (r *Response) IsHTTP11() bool { return r.HTTPVersion == "HTTP/1.1" }

// IsHTTP2 accepts both spellings seen on the wire side.
func (r *Response) IsHTTP2() bool {
	return r.HTTPVersion == "HTTP/2.0" || r.HTTPVersion == "HTTP/2" || r.HTTPVersion == "h2"
}

func (r *Response) Content() []byte { return r.Body }

func (r *Response) ContentType() string { return r.Headers.Get("content-type") }
