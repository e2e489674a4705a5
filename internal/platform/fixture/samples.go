package fixture

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
)

//go:embed samples/*.yaml
var samples embed.FS

// SamplePrefix selects a built-in sample instead of a file path.
const SamplePrefix = "sample:"

// Sample returns a Host over a built-in sample tree, e.g. "desktop".
func Sample(name string) (*Host, error) {
	data, err := samples.ReadFile("samples/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("fixture: unknown sample %q", name)
	}
	return Parse(bytes.NewReader(data))
}

// Open loads "sample:<name>" from the built-in samples and anything else
// from disk.
func Open(src string) (*Host, error) {
	if name, ok := strings.CutPrefix(src, SamplePrefix); ok {
		return Sample(name)
	}
	return Load(src)
}
