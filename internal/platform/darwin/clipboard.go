//go:build darwin && cgo

package darwin

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Clipboard implements platform.Clipboard over pbcopy/pbpaste. It is the
// fallback for corrected text when the compose box rejects AXValue writes.
type Clipboard struct{}

func NewClipboard() *Clipboard {
	return &Clipboard{}
}

func (c *Clipboard) GetText() (string, error) {
	var out bytes.Buffer
	if err := pb("pbpaste", nil, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (c *Clipboard) SetText(text string) error {
	return pb("pbcopy", strings.NewReader(text), nil)
}

// pb runs a pasteboard tool. A launchd-started process has no LANG, and
// pbcopy then treats input as MacRoman, which mangles translated text.
func pb(name string, in io.Reader, out io.Writer) error {
	cmd := exec.Command(name)
	cmd.Env = append(os.Environ(), "LANG=en_US.UTF-8")
	cmd.Stdin = in
	cmd.Stdout = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
