package platform

import (
	"fmt"
	"sync"

	"github.com/go-drift/gpslocation/pkg/errors"
)

// NativeBridge defines the interface for calling native platform code.
type NativeBridge interface {
	// InvokeMethod calls a method on the native side and blocks until the
	// native plugin answers. Plugin failures are returned as *ChannelError.
	InvokeMethod(channel, method string, args []byte) ([]byte, error)
}

var (
	bridgeMu     sync.RWMutex
	nativeBridge NativeBridge
)

// SetNativeBridge sets the native bridge implementation.
// Called by the embedding application (or a simulator) during initialization.
func SetNativeBridge(bridge NativeBridge) {
	bridgeMu.Lock()
	nativeBridge = bridge
	bridgeMu.Unlock()
}

func currentBridge() NativeBridge {
	bridgeMu.RLock()
	defer bridgeMu.RUnlock()
	return nativeBridge
}

// invokeNative encodes args with codec, calls the bridge and decodes the answer.
func invokeNative(codec MessageCodec, channel, method string, args any) (any, error) {
	bridge := currentBridge()
	if bridge == nil {
		return nil, ErrPlatformUnavailable
	}

	argsData, err := codec.Encode(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s.%s arguments: %w", channel, method, err)
	}

	resultData, err := bridge.InvokeMethod(channel, method, argsData)
	if err != nil {
		return nil, err
	}

	result, err := codec.Decode(resultData)
	if err != nil {
		errors.Report(&errors.OpError{
			Op:      "platform.invokeNative",
			Kind:    errors.KindParsing,
			Channel: channel,
			Err:     err,
		})
		return nil, fmt.Errorf("decode %s.%s result: %w", channel, method, err)
	}
	return result, nil
}

// ResetForTest clears the native bridge and the dispatch function so tests
// start from an uninitialized platform. This should only be called from tests.
func ResetForTest() {
	SetNativeBridge(nil)
	RegisterDispatch(nil)
}
