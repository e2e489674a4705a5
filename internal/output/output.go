// Package output prints command results in the format selected by the root
// command's --format and --pretty flags.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mj1618/composebox/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// IsValid reports whether f is a supported format.
func (f Format) IsValid() bool {
	return f == FormatYAML || f == FormatJSON
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Stdout is where Print writes. Tests replace it.
var Stdout io.Writer = os.Stdout

// ScanResult is the output of the `scan` command.
type ScanResult struct {
	App      string                    `yaml:"app"               json:"app"`
	BundleID string                    `yaml:"bundle_id"         json:"bundle_id"`
	ScanID   string                    `yaml:"scan_id"           json:"scan_id"`
	TS       int64                     `yaml:"ts"                json:"ts"`
	Count    int                       `yaml:"count"             json:"count"`
	Elements []model.ElementDescriptor `yaml:"elements"          json:"elements"`
	Located  *model.LocatedElement     `yaml:"located,omitempty" json:"located,omitempty"`
}

// PositionResult is the output of the `position` command.
type PositionResult struct {
	App      string         `yaml:"app"                json:"app"`
	Source   string         `yaml:"source"             json:"source"` // scan or saved
	Strategy model.Strategy `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Element  int            `yaml:"element,omitempty"  json:"element,omitempty"`
	Point    model.Point    `yaml:"point"              json:"point"`
	Screen   *model.Size    `yaml:"screen,omitempty"   json:"screen,omitempty"`
}

// Placement is one saved overlay point.
type Placement struct {
	App   string      `yaml:"app"   json:"app"`
	Point model.Point `yaml:"point" json:"point"`
}

// PlacementList is the output of `placement list`.
type PlacementList struct {
	Backend    string      `yaml:"backend"    json:"backend"`
	Placements []Placement `yaml:"placements" json:"placements"`
}

// NewPlacementList returns the placements sorted by app key.
func NewPlacementList(backend string, all map[string]model.Point) PlacementList {
	list := PlacementList{Backend: backend, Placements: make([]Placement, 0, len(all))}
	for app, pt := range all {
		list.Placements = append(list.Placements, Placement{App: app, Point: pt})
	}
	sort.Slice(list.Placements, func(i, j int) bool {
		return list.Placements[i].App < list.Placements[j].App
	})
	return list
}

// Print serializes v to Stdout in the current output format.
func Print(v interface{}) error {
	return Write(Stdout, v)
}

// Write serializes v to w in the current output format.
func Write(w io.Writer, v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		return WriteJSON(w, v, PrettyOutput)
	case FormatYAML:
		return WriteYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}
