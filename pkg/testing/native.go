package testing

import (
	"sync"
	"time"

	"github.com/go-drift/gpslocation/pkg/geolocation"
)

// PermissionCall is a recorded RequestPermission call.
type PermissionCall struct {
	OnGranted func()
	OnDenied  func()
}

// FetchCall is a recorded FetchLocation call.
type FetchCall struct {
	MaximumAge      time.Duration
	UseLastLocation bool
	OnSuccess       func(geolocation.RawPosition)
	OnFailure       func(geolocation.RawError)
}

// FakeNative is a scriptable geolocation.Native. It records every call and
// answers only when the test says so, which lets tests order native answers
// against timer expiry.
type FakeNative struct {
	// AutoGrant grants permission synchronously inside RequestPermission.
	AutoGrant bool

	mu          sync.Mutex
	permissions []PermissionCall
	fetches     []FetchCall
}

// NewFakeNative returns a FakeNative that grants permission automatically.
func NewFakeNative() *FakeNative {
	return &FakeNative{AutoGrant: true}
}

// RequestPermission records the call and grants it when AutoGrant is set.
func (f *FakeNative) RequestPermission(onGranted func(), onDenied func()) {
	f.mu.Lock()
	f.permissions = append(f.permissions, PermissionCall{OnGranted: onGranted, OnDenied: onDenied})
	auto := f.AutoGrant
	f.mu.Unlock()
	if auto {
		onGranted()
	}
}

// FetchLocation records the call.
func (f *FakeNative) FetchLocation(maximumAge time.Duration, useLastLocation bool, onSuccess func(geolocation.RawPosition), onFailure func(geolocation.RawError)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, FetchCall{
		MaximumAge:      maximumAge,
		UseLastLocation: useLastLocation,
		OnSuccess:       onSuccess,
		OnFailure:       onFailure,
	})
}

// PermissionRequests returns the number of RequestPermission calls.
func (f *FakeNative) PermissionRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.permissions)
}

// Fetches returns the recorded FetchLocation calls.
func (f *FakeNative) Fetches() []FetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FetchCall(nil), f.fetches...)
}

// Calls returns the total number of native calls.
func (f *FakeNative) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.permissions) + len(f.fetches)
}

// Grant answers the most recent permission request with a grant.
// It reports false when no permission was requested.
func (f *FakeNative) Grant() bool {
	call, ok := f.lastPermission()
	if ok {
		call.OnGranted()
	}
	return ok
}

// Deny answers the most recent permission request with a denial.
func (f *FakeNative) Deny() bool {
	call, ok := f.lastPermission()
	if ok {
		call.OnDenied()
	}
	return ok
}

// Succeed answers the most recent fetch with raw.
// It reports false when nothing was fetched.
func (f *FakeNative) Succeed(raw geolocation.RawPosition) bool {
	call, ok := f.lastFetch()
	if ok {
		call.OnSuccess(raw)
	}
	return ok
}

// Fail answers the most recent fetch with a native failure.
func (f *FakeNative) Fail(raw geolocation.RawError) bool {
	call, ok := f.lastFetch()
	if ok {
		call.OnFailure(raw)
	}
	return ok
}

func (f *FakeNative) lastPermission() (PermissionCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.permissions) == 0 {
		return PermissionCall{}, false
	}
	return f.permissions[len(f.permissions)-1], true
}

func (f *FakeNative) lastFetch() (FetchCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.fetches) == 0 {
		return FetchCall{}, false
	}
	return f.fetches[len(f.fetches)-1], true
}
