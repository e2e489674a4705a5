package overlay

import (
	"errors"
	"testing"

	"github.com/mj1618/composebox/internal/model"
)

func TestComputePosition(t *testing.T) {
	tests := []struct {
		name string
		pos  model.Point
		size model.Size
		sh   float64
		icon float64
		pad  float64
		want model.Point
	}{
		{"reference", model.Point{X: 100, Y: 50}, model.Size{Width: 300, Height: 40}, 1080, 24, 6, model.Point{X: 370, Y: 1000}},
		{"origin", model.Point{}, model.Size{Width: 30, Height: 30}, 900, 24, 6, model.Point{X: 0, Y: 870}},
		{"height is ignored", model.Point{X: 100, Y: 50}, model.Size{Width: 300, Height: 4000}, 1080, 24, 6, model.Point{X: 370, Y: 1000}},
		{"unclamped negative x", model.Point{X: 0, Y: 0}, model.Size{Width: 10, Height: 10}, 500, 24, 6, model.Point{X: -20, Y: 470}},
		{"below screen", model.Point{X: 0, Y: 1200}, model.Size{Width: 100, Height: 10}, 1080, 24, 6, model.Point{X: 70, Y: -150}},
		{"zero padding", model.Point{X: 340, Y: 780}, model.Size{Width: 1000, Height: 44}, 1080, 24, 0, model.Point{X: 1316, Y: 276}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePosition(tt.pos, tt.size, tt.sh, tt.icon, tt.pad)
			if got != tt.want {
				t.Errorf("ComputePosition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositioner_Position(t *testing.T) {
	p := NewPositioner()
	loc := model.LocatedElement{
		Element: model.ElementDescriptor{
			ID:       7,
			Position: &model.Point{X: 100, Y: 50},
			Size:     &model.Size{Width: 300, Height: 40},
		},
		Strategy: model.StrategyKeyword,
	}
	got, err := p.Position(loc, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if got != (model.Point{X: 370, Y: 1000}) {
		t.Errorf("Position = %v, want (370, 1000)", got)
	}

	if tl := p.ToTopLeft(got, 1080); tl != (model.Point{X: 370, Y: 56}) {
		t.Errorf("ToTopLeft = %v, want (370, 56)", tl)
	}

	loc.Element.Size = nil
	if _, err := p.Position(loc, 1080); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("err = %v, want ErrNoGeometry", err)
	}
}
