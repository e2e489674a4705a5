package platform

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrPermissionDenied means accessibility trust has not been granted.
	ErrPermissionDenied = errors.New("accessibility permission required: grant it at System Settings > Privacy & Security > Accessibility, then restart the app")

	// ErrTargetNotRunning means no process matches the requested bundle id.
	ErrTargetNotRunning = errors.New("target application is not running")

	// ErrAttributeUnavailable means one attribute of one node could not be read.
	ErrAttributeUnavailable = errors.New("attribute unavailable")

	// ErrInvalidNode is returned for nil or foreign node handles.
	ErrInvalidNode = errors.New("invalid node handle")
)

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("accessibility host is not supported on %s/%s; supported: darwin/amd64, darwin/arm64 (or use --fixture)", runtime.GOOS, runtime.GOARCH)

// IsUserVisible reports whether err should be shown to the user rather than
// absorbed as "nothing found".
func IsUserVisible(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrTargetNotRunning)
}
