package model

import "testing"

func TestMapRole_KnownRoles(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AXTextArea", "text-area"},
		{"AXTextField", "text-field"},
		{"AXSearchField", "text-field"},
		{"AXScrollArea", "scroll-area"},
		{"AXButton", "button"},
		{"AXGroup", "group"},
		{"AXSplitGroup", "group"},
		{"AXWindow", "window"},
		{"AXWebArea", "web-area"},
		{"AXStaticText", "text"},
		{"AXTable", "list"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := MapRole(tt.input)
			if got != tt.want {
				t.Errorf("MapRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMapRole_TagsPassThrough(t *testing.T) {
	for _, tag := range []string{"text-area", "scroll-area", "window"} {
		if got := MapRole(tag); got != tag {
			t.Errorf("MapRole(%q) = %q, want unchanged", tag, got)
		}
	}
}

func TestMapRole_UnknownFallback(t *testing.T) {
	unknowns := []string{"AXSlider", "AXProgressIndicator", "SomethingElse", ""}
	for _, role := range unknowns {
		got := MapRole(role)
		if got != "other" {
			t.Errorf("MapRole(%q) = %q, want %q", role, got, "other")
		}
	}
}

func TestExpandRoles_MetaRole(t *testing.T) {
	got := ExpandRoles([]string{"editable", "text-area", "scroll-area"})
	want := []string{"text-area", "text-field", "scroll-area"}
	if len(got) != len(want) {
		t.Fatalf("ExpandRoles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExpandRoles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
