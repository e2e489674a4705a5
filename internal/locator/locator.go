// Package locator picks the compose box out of a scanned element list.
package locator

import (
	"strings"

	"github.com/mj1618/composebox/internal/model"
)

// Hints are the per-application inputs to Locate.
type Hints struct {
	// Keywords are matched case-insensitively as substrings of the title,
	// value, description and identifier of candidate elements.
	Keywords []string
	// TextRoles are the role tags that count as text inputs. Meta-roles such
	// as "editable" are expanded.
	TextRoles []string
	// ScrollAreaFallback enables the last-resort strategy for editors that
	// only expose a scroll container.
	ScrollAreaFallback bool
	// ScrollAreaRoles default to scroll-area when empty.
	ScrollAreaRoles []string
}

// DefaultTextRoles are used when Hints.TextRoles is empty.
var DefaultTextRoles = []string{model.RoleTextArea, model.RoleTextField}

// Locate applies the strategies in order and returns the first hit:
//
//  1. keyword: first text input whose attributes contain a keyword
//  2. focus: first focused text input
//  3. largest-area: text input with the largest reported area
//  4. fallback-scroll-area: largest scroll area, when enabled
//
// When nothing qualifies it returns StrategyNone and false. Locate is a pure
// function of its inputs.
func Locate(elements []model.ElementDescriptor, hints Hints) (model.LocatedElement, bool) {
	roles := hints.TextRoles
	if len(roles) == 0 {
		roles = DefaultTextRoles
	}
	inputs := model.FilterByRoles(elements, roles)

	if el, ok := byKeyword(inputs, hints.Keywords); ok {
		return located(el, model.StrategyKeyword)
	}
	if el, ok := byFocus(inputs); ok {
		return located(el, model.StrategyFocus)
	}
	if el, ok := largest(inputs); ok {
		return located(el, model.StrategyLargestArea)
	}
	if hints.ScrollAreaFallback {
		scrollRoles := hints.ScrollAreaRoles
		if len(scrollRoles) == 0 {
			scrollRoles = []string{model.RoleScrollArea}
		}
		areas := model.FilterByRoles(elements, scrollRoles)
		if el, ok := largest(areas); ok {
			return located(el, model.StrategyFallbackScrollArea)
		}
	}
	return model.LocatedElement{Strategy: model.StrategyNone}, false
}

func located(el model.ElementDescriptor, s model.Strategy) (model.LocatedElement, bool) {
	return model.LocatedElement{Element: el, Strategy: s}, true
}

func byKeyword(inputs []model.ElementDescriptor, keywords []string) (model.ElementDescriptor, bool) {
	needles := lowerAll(keywords)
	if len(needles) == 0 {
		return model.ElementDescriptor{}, false
	}
	for _, el := range inputs {
		if model.ContainsAny(el, needles) {
			return el, true
		}
	}
	return model.ElementDescriptor{}, false
}

func byFocus(inputs []model.ElementDescriptor) (model.ElementDescriptor, bool) {
	for _, el := range inputs {
		if el.Focused {
			return el, true
		}
	}
	return model.ElementDescriptor{}, false
}

// largest returns the element with the greatest area among those reporting
// both position and size. Ties keep the earliest.
func largest(candidates []model.ElementDescriptor) (model.ElementDescriptor, bool) {
	var best model.ElementDescriptor
	bestArea := -1.0
	for _, el := range candidates {
		if !el.HasGeometry() {
			continue
		}
		if a := el.Area(); a > bestArea {
			best, bestArea = el, a
		}
	}
	return best, bestArea >= 0
}

func lowerAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
