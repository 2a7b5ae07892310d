package plugin

import (
	"errors"
	"fmt"
)

// NodeAPIError reports a failed call to a remote service made by a node.
type NodeAPIError struct {
	Node       string
	Message    string
	StatusCode int
	Payload    any
	Cause      error
}

func (e *NodeAPIError) Error() string { return e.Message }

func (e *NodeAPIError) Unwrap() error { return e.Cause }

// NewNodeAPIError builds a NodeAPIError from a transport failure, copying the
// status and response payload when the cause carries them.
func NewNodeAPIError(node string, cause error, message string) *NodeAPIError {
	e := &NodeAPIError{Node: node, Message: message, Cause: cause}
	var te *TransportError
	if errors.As(cause, &te) {
		e.StatusCode = te.StatusCode
		e.Payload = te.Payload
	}
	return e
}

// NodeOperationError reports a failure inside a node that is not a remote
// API failure: bad parameters, unknown operations, unexpected errors.
type NodeOperationError struct {
	Node      string
	Message   string
	ItemIndex int
	Cause     error
}

func (e *NodeOperationError) Error() string { return e.Message }

func (e *NodeOperationError) Unwrap() error { return e.Cause }

func NewNodeOperationError(node string, itemIndex int, format string, a ...any) *NodeOperationError {
	return &NodeOperationError{Node: node, Message: fmt.Sprintf(format, a...), ItemIndex: itemIndex}
}
