package cmd

import (
	"fmt"
	"log/slog"

	"github.com/mj1618/composebox/internal/platform"
)

// copyText writes text to the system clipboard.
func copyText(text string) error {
	cb := platform.NewClipboard()
	if cb == nil {
		return fmt.Errorf("clipboard not supported on this platform")
	}
	if err := cb.SetText(text); err != nil {
		return err
	}
	slog.Debug("copied to clipboard", "chars", len(text))
	return nil
}
