//go:build darwin && cgo

package darwin

import "github.com/mj1618/composebox/internal/platform"

func init() {
	platform.NewHostFunc = func() (platform.Host, error) {
		return NewHost(), nil
	}
	platform.NewClipboardFunc = func() platform.Clipboard {
		return NewClipboard()
	}
}
