package platform

import (
	stderrors "errors"
	"testing"
	"time"
)

// cannedBridge returns a canned response or error for method calls and
// records the last call it saw.
type cannedBridge struct {
	response any
	err      error

	channel string
	method  string
	args    any
}

func (b *cannedBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	b.channel, b.method = channel, method
	b.args, _ = DefaultCodec.Decode(args)
	if b.err != nil {
		return nil, b.err
	}
	return DefaultCodec.Encode(b.response)
}

func TestInvokeWithoutBridge(t *testing.T) {
	ResetForTest()
	ch := NewMethodChannel("test/unavailable")

	_, err := ch.Invoke("anything", nil)
	if !stderrors.Is(err, ErrPlatformUnavailable) {
		t.Fatalf("expected ErrPlatformUnavailable, got %v", err)
	}
}

func TestInvokeRoundTrip(t *testing.T) {
	bridge := &cannedBridge{response: map[string]any{"latitude": 52.5}}
	SetupTestBridge(t.Cleanup, bridge)

	ch := NewMethodChannel("SimpleGPSLocation")
	result, err := ch.Invoke("getLocation", []any{5000, true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bridge.channel != "SimpleGPSLocation" || bridge.method != "getLocation" {
		t.Errorf("bridge saw %s.%s", bridge.channel, bridge.method)
	}
	args, ok := bridge.args.([]any)
	if !ok || len(args) != 2 || args[0] != float64(5000) || args[1] != true {
		t.Errorf("unexpected args %#v", bridge.args)
	}
	m, ok := result.(map[string]any)
	if !ok || m["latitude"] != 52.5 {
		t.Errorf("unexpected result %#v", result)
	}
}

func TestInvokePropagatesChannelError(t *testing.T) {
	want := NewChannelError("2", "GPS is disabled on this device.")
	SetupTestBridge(t.Cleanup, &cannedBridge{err: want})

	_, err := NewMethodChannel("test/error").Invoke("getLocation", nil)
	var got *ChannelError
	if !stderrors.As(err, &got) {
		t.Fatalf("expected *ChannelError, got %T", err)
	}
	if got.Code != "2" {
		t.Errorf("Code = %q, want %q", got.Code, "2")
	}
}

func TestInvokeAsyncDeliversThroughDispatch(t *testing.T) {
	SetupTestBridge(t.Cleanup, &cannedBridge{response: "ok"})

	dispatched := make(chan func(), 1)
	RegisterDispatch(func(cb func()) bool {
		dispatched <- cb
		return true
	})

	results := make(chan any, 1)
	NewMethodChannel("test/async").InvokeAsync("ping", nil, func(v any) { results <- v }, func(err error) {
		t.Errorf("unexpected error: %v", err)
	})

	select {
	case cb := <-dispatched:
		cb()
	case <-time.After(time.Second):
		t.Fatal("callback was never dispatched")
	}

	if got := <-results; got != "ok" {
		t.Errorf("result = %v, want ok", got)
	}
}

func TestInvokeAsyncWithoutDispatcher(t *testing.T) {
	ResetForTest()
	errs := make(chan error, 1)
	NewMethodChannel("test/async-nodispatch").InvokeAsync("ping", nil, nil, func(err error) { errs <- err })

	select {
	case err := <-errs:
		if !stderrors.Is(err, ErrPlatformUnavailable) {
			t.Errorf("expected ErrPlatformUnavailable, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("error callback never ran")
	}
}

func TestInvokeAsyncAfterQueueClosed(t *testing.T) {
	SetupTestBridge(t.Cleanup, &cannedBridge{response: "ok"})

	q := NewQueue()
	q.Close()
	RegisterDispatch(q.Dispatch)

	results := make(chan any, 1)
	NewMethodChannel("test/async-closed").InvokeAsync("ping", nil, func(v any) { results <- v }, func(err error) {
		t.Errorf("unexpected error: %v", err)
	})

	select {
	case got := <-results:
		if got != "ok" {
			t.Errorf("result = %v, want ok", got)
		}
	case <-time.After(time.Second):
		t.Fatal("result was dropped by the closed queue")
	}
}

func TestChannelErrorString(t *testing.T) {
	tests := []struct {
		err  *ChannelError
		want string
	}{
		{NewChannelError("ILLEGAL_ACCESS_EXCEPTION", ""), "ILLEGAL_ACCESS_EXCEPTION"},
		{NewChannelError("99", "unknown action"), "99: unknown action"},
		{NewChannelErrorWithDetails("2", "GPS off", map[string]any{"code": 2}), "2: GPS off"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
