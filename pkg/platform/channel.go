package platform

import "github.com/go-drift/gpslocation/pkg/errors"

// MethodChannel calls named methods on a native plugin. Calls are
// one-directional: Go invokes, the plugin answers through the installed
// NativeBridge.
type MethodChannel struct {
	name  string
	codec MessageCodec
}

// NewMethodChannel creates a channel for the plugin registered under name.
func NewMethodChannel(name string) *MethodChannel {
	return &MethodChannel{name: name, codec: DefaultCodec}
}

// Name returns the channel name.
func (c *MethodChannel) Name() string {
	return c.name
}

// Invoke calls a method on the native side and returns the result.
// This blocks until the native side responds or an error occurs.
func (c *MethodChannel) Invoke(method string, args any) (any, error) {
	return invokeNative(c.codec, c.name, method, args)
}

// InvokeAsync calls a method on the native side without blocking the caller.
// Exactly one of onResult or onError is delivered through Dispatch, so callers
// observe results on the application's event queue when one is registered.
// Nil callbacks are skipped.
func (c *MethodChannel) InvokeAsync(method string, args any, onResult func(any), onError func(error)) {
	RunAsync(c.name+"."+method, func() (any, error) {
		return c.Invoke(method, args)
	}, onResult, onError)
}

// RunAsync runs call on a new goroutine and delivers its outcome through
// Dispatch. When no dispatcher is registered, or the dispatcher rejects the
// callback, the outcome is delivered on that goroutine instead. Panics in
// the delivered callbacks are recovered and reported under op.
func RunAsync(op string, call func() (any, error), onResult func(any), onError func(error)) {
	go func() {
		result, err := call()
		deliver := func() {
			defer errors.Recover(op)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			if onResult != nil {
				onResult(result)
			}
		}
		if !Dispatch(deliver) {
			deliver()
		}
	}()
}
