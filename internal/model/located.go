package model

// Strategy names the locator rule that picked an element.
type Strategy string

const (
	StrategyKeyword            Strategy = "keyword"
	StrategyFocus              Strategy = "focus"
	StrategyLargestArea        Strategy = "largest-area"
	StrategyFallbackScrollArea Strategy = "fallback-scroll-area"
	StrategyNone               Strategy = "none"
)

// LocatedElement is the element chosen for a target application plus the
// strategy that chose it. It lives for one locate call.
type LocatedElement struct {
	Element  ElementDescriptor `yaml:"element"  json:"element"`
	Strategy Strategy          `yaml:"strategy" json:"strategy"`
}
