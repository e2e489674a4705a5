// Package preview renders a schematic PNG of a scan: element boxes, the
// located compose box and the overlay icon where it would be drawn.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/overlay"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultScale maps screen points to image pixels.
const DefaultScale = 0.5

// LabelMode controls what text is drawn next to each element box.
type LabelMode int

const (
	// LabelNone draws boxes only.
	LabelNone LabelMode = iota
	// LabelIDs draws "[id]" element IDs.
	LabelIDs
	// LabelRoles draws "[id] role".
	LabelRoles
)

// Scene is everything a preview shows. Element geometry and the screen size
// are in top-left-origin points; Overlay is the bottom-left-origin point
// produced by the overlay positioner.
type Scene struct {
	Screen   model.Size
	Elements []model.ElementDescriptor
	Located  *model.LocatedElement
	Overlay  *model.Point
	IconSize float64
	Scale    float64
	Labels   LabelMode
}

var (
	background   = color.RGBA{R: 32, G: 32, B: 36, A: 255}
	boxColor     = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	locatedColor = color.RGBA{R: 40, G: 200, B: 90, A: 255}
	iconColor    = color.RGBA{R: 60, G: 140, B: 255, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// Render draws the scene onto a new RGBA image.
func Render(s Scene) (*image.RGBA, error) {
	if s.Screen.Width <= 0 || s.Screen.Height <= 0 {
		return nil, fmt.Errorf("invalid screen size %vx%v", s.Screen.Width, s.Screen.Height)
	}
	scale := s.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	w := int(s.Screen.Width * scale)
	h := int(s.Screen.Height * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for _, el := range s.Elements {
		if !el.HasGeometry() {
			continue
		}
		r := toRect(el.Bounds(), scale)
		drawRectangle(img, r, boxColor)
		if label := labelFor(el, s.Labels); label != "" {
			drawTextWithOutline(img, label, r.Min.X+2, r.Min.Y+12, textColor, outlineColor)
		}
	}

	if s.Located != nil && s.Located.Strategy != model.StrategyNone && s.Located.Element.HasGeometry() {
		r := toRect(s.Located.Element.Bounds(), scale)
		drawRectangle(img, r, locatedColor)
		drawRectangle(img, r.Inset(1), locatedColor)
		drawTextWithOutline(img, string(s.Located.Strategy), r.Min.X+2, r.Max.Y-4, locatedColor, outlineColor)
	}

	if s.Overlay != nil {
		p := overlay.Positioner{IconSize: s.IconSize}
		if p.IconSize <= 0 {
			p.IconSize = overlay.DefaultIconSize
		}
		tl := p.ToTopLeft(*s.Overlay, s.Screen.Height)
		r := toRect([4]float64{tl.X, tl.Y, p.IconSize, p.IconSize}, scale)
		fillRectangle(img, r, iconColor)
	}
	return img, nil
}

// Encode renders the scene and writes it as PNG.
func Encode(w io.Writer, s Scene) error {
	img, err := Render(s)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func labelFor(el model.ElementDescriptor, mode LabelMode) string {
	switch mode {
	case LabelIDs:
		return fmt.Sprintf("[%d]", el.ID)
	case LabelRoles:
		return fmt.Sprintf("[%d] %s", el.ID, el.Role)
	default:
		return ""
	}
}

func toRect(b [4]float64, scale float64) image.Rectangle {
	x := int(b[0] * scale)
	y := int(b[1] * scale)
	return image.Rect(x, y, x+int(b[2]*scale), y+int(b[3]*scale))
}

// drawRectangle draws the outline of r clipped to the image.
func drawRectangle(img *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

func fillRectangle(img *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// drawTextWithOutline draws text with its baseline at (x, y) and a one pixel
// dark outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, fg, outline color.Color) {
	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	d.Src = image.NewUniform(outline)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = fixed.P(x+dx, y+dy)
			d.DrawString(text)
		}
	}
	d.Src = image.NewUniform(fg)
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
