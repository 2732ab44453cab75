// Package platform carries method calls from Go to native plugins such as
// SimpleGPSLocation. A MethodChannel encodes the call, the installed
// NativeBridge runs it on the native side, and the answer is delivered back
// on the application's event queue through Dispatch.
package platform

import (
	"encoding/json"
	"errors"
)

// MessageCodec converts call arguments and plugin answers to and from the
// bytes a NativeBridge carries.
type MessageCodec interface {
	Encode(value any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// JsonCodec is the wire format plugins speak. Numbers decode as float64 and
// objects as map[string]any.
type JsonCodec struct{}

func (JsonCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode treats an empty answer as a null result, which is how plugins
// acknowledge calls such as getPermission that carry no payload.
func (JsonCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DefaultCodec is the codec new channels use.
var DefaultCodec MessageCodec = JsonCodec{}

var (
	// ErrChannelNotFound is returned by a bridge that does not serve the channel.
	ErrChannelNotFound = errors.New("platform channel not found")

	// ErrInvalidArguments is returned by a bridge that cannot read the call's arguments.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrPlatformUnavailable means no native bridge is installed.
	ErrPlatformUnavailable = errors.New("platform feature unavailable")
)

// ChannelError is a failure reported by the plugin itself. Code is the
// plugin's error code as a string, numeric or symbolic. Details holds any
// structured payload the plugin attached, decoded with the channel codec.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// NewChannelError returns a plugin failure without details.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}

// NewChannelErrorWithDetails returns a plugin failure carrying details.
func NewChannelErrorWithDetails(code, message string, details any) *ChannelError {
	return &ChannelError{Code: code, Message: message, Details: details}
}
