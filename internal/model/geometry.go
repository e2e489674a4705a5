package model

// Point is a screen coordinate. Whether the origin is top-left (accessibility
// host) or bottom-left (overlay host) depends on where it came from.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Size is a width/height pair in screen points.
type Size struct {
	Width  float64 `yaml:"w" json:"w"`
	Height float64 `yaml:"h" json:"h"`
}

// Area returns Width*Height.
func (s Size) Area() float64 {
	return s.Width * s.Height
}
