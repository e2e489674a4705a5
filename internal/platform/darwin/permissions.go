//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include "ax_host.h"
*/
import "C"

import "github.com/mj1618/composebox/internal/platform"

// requireTrust returns platform.ErrPermissionDenied until the user adds the
// process under System Settings > Privacy & Security > Accessibility.
// Writes check this up front because AX reports denial as a generic failure
// for setters.
func requireTrust() error {
	if C.axh_is_trusted() == 0 {
		return platform.ErrPermissionDenied
	}
	return nil
}

// IsTrusted reports the current grant. macOS does not notify on change, so
// callers waiting for a grant poll this.
func (h *DarwinHost) IsTrusted() bool {
	return C.axh_is_trusted() != 0
}

// PromptForTrust shows the system dialog that links to the Accessibility
// pane. It returns immediately; the grant arrives later, if at all.
func (h *DarwinHost) PromptForTrust() {
	C.axh_prompt_trust()
}
