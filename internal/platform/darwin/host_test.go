//go:build darwin && cgo

package darwin

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/mj1618/composebox/internal/platform"
	"github.com/mj1618/composebox/internal/scanner"
)

// exitedPID returns the pid of a process that has already been reaped.
func exitedPID(t *testing.T) int {
	t.Helper()
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run true: %v", err)
	}
	return cmd.Process.Pid
}

func TestExitedApplicationIsUnreachable(t *testing.T) {
	h := NewHost()
	if !h.IsTrusted() {
		t.Skip("accessibility permission not granted")
	}
	dead := h.appNode(exitedPID(t))

	if _, err := h.StringAttr(dead, platform.AttrRole); !errors.Is(err, platform.ErrInvalidNode) {
		t.Errorf("StringAttr(role) err = %v, want ErrInvalidNode", err)
	}
	if snap := scanner.Scan(h, dead, 5); snap.Len() != 0 {
		t.Errorf("scan of exited application gave %d elements, want 0", snap.Len())
	}
}
