package nautobot

import (
	"context"
	"fmt"
)

// Operation selects what a single node run does.
type Operation string

const (
	OperationGetDevice Operation = "getDevice"
)

const (
	paramOperation = "operation"
	paramDeviceID  = "deviceId"
)

// validationError is a parameter problem found before any request is made.
// Its message is surfaced to the user verbatim.
type validationError string

func (e validationError) Error() string { return string(e) }

// operation resolves its own parameters and performs exactly one client call.
// A non-nil error means no call was made.
type operation func(ctx context.Context, host Host, c *Client) (Result, error)

var operations = map[Operation]operation{
	OperationGetDevice: getDevice,
}

func getDevice(ctx context.Context, host Host, c *Client) (Result, error) {
	raw, err := host.GetNodeParameter(paramDeviceID, 0, "")
	if err != nil {
		return Result{Kind: ResultOtherError, Err: err}, nil
	}
	id := paramString(raw)
	if id == "" {
		return Result{}, validationError("Device ID is required for getDevice operation.")
	}
	return c.GetDevice(ctx, id), nil
}

// paramString renders scalar parameters as strings; nil is "".
func paramString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
