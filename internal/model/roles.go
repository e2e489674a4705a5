package model

// Role tags produced by MapRole. The set is open: third-party applications
// expose arbitrary roles, which all collapse to RoleOther.
const (
	RoleTextArea   = "text-area"
	RoleTextField  = "text-field"
	RoleScrollArea = "scroll-area"
	RoleButton     = "button"
	RoleGroup      = "group"
	RoleWindow     = "window"
	RoleWebArea    = "web-area"
	RoleOther      = "other"
)

// RoleMap maps macOS AXRole values to role tags.
var RoleMap = map[string]string{
	"AXTextArea":    RoleTextArea,
	"AXTextField":   RoleTextField,
	"AXComboBox":    RoleTextField,
	"AXSearchField": RoleTextField,
	"AXScrollArea":  RoleScrollArea,
	"AXButton":      RoleButton,
	"AXGroup":       RoleGroup,
	"AXSplitGroup":  RoleGroup,
	"AXWindow":      RoleWindow,
	"AXWebArea":     RoleWebArea,
	"AXApplication": "application",
	"AXStaticText":  "text",
	"AXLink":        "link",
	"AXImage":       "image",
	"AXCheckBox":    "checkbox",
	"AXRadioButton": "radio",
	"AXMenu":        "menu",
	"AXMenuBar":     "menu",
	"AXMenuItem":    "menu-item",
	"AXTabGroup":    "tab-group",
	"AXList":        "list",
	"AXTable":       "list",
	"AXOutline":     "list",
	"AXRow":         "row",
	"AXCell":        "cell",
	"AXToolbar":     "toolbar",
	"AXPopUpButton": "popup",
	"AXSplitter":    "splitter",
	"AXLayoutArea":  "layout-area",
	"AXUnknown":     RoleOther,
}

// MetaRoles maps meta-role names to the concrete roles they expand to.
// "editable" covers every role that may hold user-editable text.
var MetaRoles = map[string][]string{
	"editable": {RoleTextArea, RoleTextField},
}

// ExpandRoles expands any meta-roles in the given list to their concrete roles.
// Non-meta roles are passed through unchanged. Duplicates are removed.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var expanded []string
	for _, r := range roles {
		if concrete, ok := MetaRoles[r]; ok {
			for _, c := range concrete {
				if !seen[c] {
					seen[c] = true
					expanded = append(expanded, c)
				}
			}
		} else if !seen[r] {
			seen[r] = true
			expanded = append(expanded, r)
		}
	}
	return expanded
}

// RoleSet builds a lookup set from a role list, expanding meta-roles.
func RoleSet(roles []string) map[string]bool {
	expanded := ExpandRoles(roles)
	set := make(map[string]bool, len(expanded))
	for _, r := range expanded {
		set[r] = true
	}
	return set
}

// MapRole converts a raw accessibility role to a role tag. Values that are
// already tags (as written in fixture trees) pass through.
func MapRole(axRole string) string {
	if tag, ok := RoleMap[axRole]; ok {
		return tag
	}
	if isTag(axRole) {
		return axRole
	}
	return RoleOther
}

func isTag(s string) bool {
	for _, tag := range RoleMap {
		if tag == s {
			return true
		}
	}
	return false
}
