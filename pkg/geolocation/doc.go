// Package geolocation acquires the device's current position through a
// native location plugin.
//
// A Coordinator answers each request in one of three ways:
//
//   - from its cache, when the last resolved position is no older than the
//     request's MaximumAge;
//   - with an immediate TIMEOUT error, when Timeout is zero and the cache
//     cannot answer;
//   - by asking the native layer for permission and then a fix, racing the
//     answer against the request's Timeout.
//
// Exactly one of the success or error callbacks fires per request. Results
// that lose the race are dropped.
//
//	coord := geolocation.New(geolocation.NewPluginNative())
//	coord.GetCurrentPosition(
//		func(p geolocation.Position) { fmt.Println(p) },
//		func(err *geolocation.PositionError) { log.Println(err) },
//		&geolocation.PositionOptions{Timeout: geolocation.Duration(10 * time.Second)},
//	)
//
// A nil error callback silently drops failures, including timeouts. Pass
// one whenever the caller needs to know the request ended.
package geolocation
