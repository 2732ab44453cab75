package geolocation

import (
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/go-drift/gpslocation/pkg/errors"
	"github.com/go-drift/gpslocation/pkg/platform"
)

// PluginChannel is the method channel served by the native location plugin.
const PluginChannel = "SimpleGPSLocation"

// Plugin method names.
const (
	methodGetPermission = "getPermission"
	methodGetLocation   = "getLocation"
)

// PluginNative implements Native over the SimpleGPSLocation plugin channel.
//
// getPermission takes no arguments and succeeds when permission is granted;
// any error counts as a denial. getLocation takes [maximumAgeMillis,
// useLastLocation] and answers with a map of raw position fields, or a
// *platform.ChannelError carrying the plugin's code and message.
type PluginNative struct {
	channel *platform.MethodChannel

	// The platform shows one permission dialog at a time, so concurrent
	// requests share a single getPermission call.
	permission singleflight.Group
}

// NewPluginNative creates a PluginNative on the SimpleGPSLocation channel.
func NewPluginNative() *PluginNative {
	return &PluginNative{channel: platform.NewMethodChannel(PluginChannel)}
}

// RequestPermission asks the plugin for location permission.
func (n *PluginNative) RequestPermission(onGranted func(), onDenied func()) {
	platform.RunAsync(PluginChannel+"."+methodGetPermission, func() (any, error) {
		v, err, _ := n.permission.Do(methodGetPermission, func() (any, error) {
			return n.channel.Invoke(methodGetPermission, nil)
		})
		return v, err
	}, func(any) {
		onGranted()
	}, func(err error) {
		var chErr *platform.ChannelError
		if !stderrors.As(err, &chErr) {
			errors.Report(&errors.OpError{
				Op:      "geolocation.requestPermission",
				Kind:    errors.KindPermission,
				Channel: PluginChannel,
				Err:     err,
			})
		}
		onDenied()
	})
}

// FetchLocation asks the plugin for a fix.
func (n *PluginNative) FetchLocation(maximumAge time.Duration, useLastLocation bool, onSuccess func(RawPosition), onFailure func(RawError)) {
	args := []any{maximumAge.Milliseconds(), useLastLocation}
	n.channel.InvokeAsync(methodGetLocation, args, func(result any) {
		m := parseMap(result)
		if m == nil {
			errors.Report(&errors.OpError{
				Op:      "geolocation.fetchLocation",
				Kind:    errors.KindParsing,
				Channel: PluginChannel,
				Err:     &errors.ParseError{Channel: PluginChannel, DataType: "Position", Got: result},
			})
			onFailure(RawError{Code: int(PositionUnavailable), Message: msgMalformedFix})
			return
		}
		onSuccess(RawPosition(m))
	}, func(err error) {
		onFailure(rawErrorFrom(err))
	})
}

// rawErrorFrom extracts the plugin's code and message. Plugins send numeric
// codes either as the ChannelError code or inside its details map.
func rawErrorFrom(err error) RawError {
	var chErr *platform.ChannelError
	if !stderrors.As(err, &chErr) {
		errors.Report(&errors.OpError{
			Op:      "geolocation.fetchLocation",
			Kind:    errors.KindPlatform,
			Channel: PluginChannel,
			Err:     err,
		})
		return RawError{Message: err.Error()}
	}

	raw := RawError{Message: chErr.Message}
	if code, ok := toInt(chErr.Code); ok {
		raw.Code = code
	}
	if details := parseMap(chErr.Details); details != nil {
		if raw.Code == 0 {
			raw.Code, _ = toInt(details["code"])
		}
		if raw.Message == "" {
			raw.Message = parseString(details["message"])
		}
	}
	if raw.Message == "" && raw.Code == 0 && chErr.Code != "" {
		raw.Message = fmt.Sprintf("native error %s", chErr.Code)
	}
	return raw
}
