package platform

// NewHostFunc is set by platform-specific packages via init().
// See internal/platform/darwin/init.go for the macOS registration.
var NewHostFunc func() (Host, error)

// NewHost returns the accessibility Host for the current OS.
func NewHost() (Host, error) {
	if NewHostFunc == nil {
		return nil, ErrUnsupported
	}
	return NewHostFunc()
}
