package platform

// noopBridge is a NativeBridge that accepts all calls and answers with nil.
type noopBridge struct{}

func (noopBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	return DefaultCodec.Encode(nil)
}

// BridgeFunc adapts a function to the NativeBridge interface.
type BridgeFunc func(channel, method string, args []byte) ([]byte, error)

// InvokeMethod calls f.
func (f BridgeFunc) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	return f(channel, method, args)
}

// SetupTestBridge installs bridge (a no-op bridge when nil) and a synchronous
// dispatch function for testing. The cleanup function should be
// testing.T.Cleanup or equivalent; it registers a teardown that calls ResetForTest.
//
//	platform.SetupTestBridge(t.Cleanup, nil)
func SetupTestBridge(cleanup func(func()), bridge NativeBridge) {
	if bridge == nil {
		bridge = noopBridge{}
	}
	SetNativeBridge(bridge)
	RegisterDispatch(func(cb func()) bool {
		cb()
		return true
	})
	cleanup(ResetForTest)
}
