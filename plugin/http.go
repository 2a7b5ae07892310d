package plugin

// RequestOptions describes one outbound HTTP call made on behalf of a node.
type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is JSON-encoded when JSON is set; nil means no body.
	Body  any
	Query map[string]any
	// JSON asks the transport to encode Body and decode the response as JSON.
	JSON bool
}

// TransportError marks a failure of the HTTP exchange itself: the request
// could not complete, or the server answered with a non-2xx status.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int // 0 when no response was received
	Message    string
	Payload    any // decoded response body, if any
	Cause      error
}

func (e *TransportError) Error() string { return e.Message }

func (e *TransportError) Unwrap() error { return e.Cause }
