package model

import "strings"

// FilterByRoles returns the elements whose role is in roles, keeping scan
// order. An empty role list returns the input unchanged. Meta-roles such as
// "editable" are expanded.
func FilterByRoles(elements []ElementDescriptor, roles []string) []ElementDescriptor {
	if len(roles) == 0 {
		return elements
	}
	set := RoleSet(roles)
	var result []ElementDescriptor
	for _, el := range elements {
		if set[el.Role] {
			result = append(result, el)
		}
	}
	return result
}

// FilterByText returns the elements whose title, value, description or
// identifier contains text (case-insensitive), keeping scan order.
func FilterByText(elements []ElementDescriptor, text string) []ElementDescriptor {
	if text == "" {
		return elements
	}
	textLower := strings.ToLower(text)
	var result []ElementDescriptor
	for _, el := range elements {
		if ContainsAny(el, []string{textLower}) {
			result = append(result, el)
		}
	}
	return result
}

// FilterByFocused returns only focused elements.
func FilterByFocused(elements []ElementDescriptor) []ElementDescriptor {
	var result []ElementDescriptor
	for _, el := range elements {
		if el.Focused {
			result = append(result, el)
		}
	}
	return result
}

// FilterByDepth drops elements deeper than maxDepth. A negative maxDepth
// keeps everything.
func FilterByDepth(elements []ElementDescriptor, maxDepth int) []ElementDescriptor {
	if maxDepth < 0 {
		return elements
	}
	var result []ElementDescriptor
	for _, el := range elements {
		if el.Depth <= maxDepth {
			result = append(result, el)
		}
	}
	return result
}

// ContainsAny reports whether any text field of el contains any of the
// lowercased needles as a substring. Empty needles never match.
func ContainsAny(el ElementDescriptor, needlesLower []string) bool {
	fields := [...]string{el.Title, el.Value, el.Description, el.Identifier}
	for _, f := range fields {
		if f == "" {
			continue
		}
		fl := strings.ToLower(f)
		for _, n := range needlesLower {
			if n != "" && strings.Contains(fl, n) {
				return true
			}
		}
	}
	return false
}

// isEmptyGroup returns true if the element has role "group" or "other"
// and carries no text, i.e. it is a structural-only container.
func isEmptyGroup(el ElementDescriptor) bool {
	return (el.Role == RoleGroup || el.Role == RoleOther) &&
		el.Title == "" && el.Value == "" && el.Description == "" && el.Identifier == ""
}

// PruneEmptyGroups removes anonymous group/other elements. Path breadcrumbs
// of the remaining elements are not modified, preserving full ancestry.
func PruneEmptyGroups(elements []ElementDescriptor) []ElementDescriptor {
	var result []ElementDescriptor
	for _, el := range elements {
		if isEmptyGroup(el) {
			continue
		}
		result = append(result, el)
	}
	return result
}
