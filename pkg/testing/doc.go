// Package testing provides test doubles for gpslocation.
//
// FakeClock drives request timeouts deterministically and FakeNative plays
// the native location plugin, answering only when the test says so:
//
//	func TestLateFix(t *testing.T) {
//	    clock := geotest.NewFakeClock()
//	    native := geotest.NewFakeNative()
//	    coord := geolocation.New(native, geolocation.WithClock(clock))
//
//	    coord.GetCurrentPosition(onFix, onErr, &geolocation.PositionOptions{
//	        Timeout: geolocation.Duration(time.Second),
//	    })
//	    clock.Advance(time.Second)                       // TIMEOUT fires
//	    native.Succeed(geolocation.RawPosition{...})     // discarded
//	}
package testing
