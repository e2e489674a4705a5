// Package overlay places the floating affordance next to a located element
// and remembers where it was last shown per application.
package overlay

import (
	"errors"
	"fmt"

	"github.com/mj1618/composebox/internal/model"
)

// Default icon geometry in points.
const (
	DefaultIconSize = 24
	DefaultPadding  = 6
)

// ErrNoGeometry is returned when the located element did not report both a
// position and a size.
var ErrNoGeometry = errors.New("element has no geometry")

// ComputePosition returns the bottom-left-origin point at which an icon of
// iconSize should be drawn so that it sits inside the top-right corner of
// an element reported in top-left-origin coordinates, inset by padding:
//
//	x = ex + ew - icon - pad
//	y = sh - ey - icon - pad
//
// The result is not clamped to the screen.
func ComputePosition(pos model.Point, size model.Size, screenHeight, iconSize, padding float64) model.Point {
	return model.Point{
		X: pos.X + size.Width - iconSize - padding,
		Y: screenHeight - pos.Y - iconSize - padding,
	}
}

// Positioner binds icon geometry to ComputePosition.
type Positioner struct {
	IconSize float64
	Padding  float64
}

// NewPositioner returns a Positioner with the default icon geometry.
func NewPositioner() Positioner {
	return Positioner{IconSize: DefaultIconSize, Padding: DefaultPadding}
}

// Position computes the overlay point for a located element.
func (p Positioner) Position(loc model.LocatedElement, screenHeight float64) (model.Point, error) {
	el := loc.Element
	if !el.HasGeometry() {
		return model.Point{}, fmt.Errorf("element %d (%s): %w", el.ID, loc.Strategy, ErrNoGeometry)
	}
	return ComputePosition(*el.Position, *el.Size, screenHeight, p.IconSize, p.Padding), nil
}

// ToTopLeft converts an overlay point back into top-left-origin coordinates
// of the icon's upper-left corner.
func (p Positioner) ToTopLeft(pt model.Point, screenHeight float64) model.Point {
	return model.Point{X: pt.X, Y: screenHeight - pt.Y - p.IconSize}
}
