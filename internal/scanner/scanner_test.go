package scanner

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/platform"
	"github.com/mj1618/composebox/internal/platform/fixture"
)

const loopTree = `
apps:
  - bundle_id: com.example.loop
    focused_window: w
    windows:
      - id: w
        role: AXWindow
        children:
          - id: g
            role: AXGroup
            children:
              - ref: w
              - role: AXTextArea
                title: Body
`

func mustParse(t *testing.T, doc string) *fixture.Host {
	t.Helper()
	h, err := fixture.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func desktop(t *testing.T) *fixture.Host {
	t.Helper()
	h, err := fixture.Sample("desktop")
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestScanApplication_PreOrder(t *testing.T) {
	h := desktop(t)
	snap, err := ScanApplication(h, []string{"com.microsoft.teams2"}, 25)
	if err != nil {
		t.Fatal(err)
	}
	if snap.App != "com.microsoft.teams2" {
		t.Errorf("App = %q", snap.App)
	}
	if snap.ScanID == "" {
		t.Error("ScanID is empty")
	}

	want := []struct {
		role   string
		depth  int
		parent int
	}{
		{model.RoleWindow, 0, 0},
		{model.RoleGroup, 1, 1},
		{model.RoleWebArea, 2, 2},
		{model.RoleTextField, 3, 3},
		{model.RoleGroup, 3, 3},
		{model.RoleGroup, 3, 3},
		{model.RoleTextArea, 4, 6},
		{model.RoleButton, 4, 6},
	}
	if len(snap.Elements) != len(want) {
		t.Fatalf("got %d elements, want %d", len(snap.Elements), len(want))
	}
	for i, w := range want {
		el := snap.Elements[i]
		if el.ID != i+1 {
			t.Errorf("[%d] ID = %d, want %d", i, el.ID, i+1)
		}
		if el.Role != w.role || el.Depth != w.depth || el.ParentID != w.parent {
			t.Errorf("[%d] = (%s, depth %d, parent %d), want (%s, %d, %d)",
				i, el.Role, el.Depth, el.ParentID, w.role, w.depth, w.parent)
		}
	}

	compose := snap.Elements[6]
	if compose.Description != "Type a message" || !compose.Focused {
		t.Errorf("compose = %+v", compose)
	}
	if compose.Position == nil || compose.Position.X != 340 || compose.Size == nil || compose.Size.Height != 44 {
		t.Errorf("compose geometry = %v %v", compose.Position, compose.Size)
	}
	if compose.RawRole != "AXTextArea" {
		t.Errorf("RawRole = %q", compose.RawRole)
	}
	if !strings.HasSuffix(compose.Path, "group > text-area") {
		t.Errorf("Path = %q", compose.Path)
	}
}

func TestScanApplication_AbsentAttributes(t *testing.T) {
	h := desktop(t)
	snap, err := ScanApplication(h, []string{"com.apple.Notes"}, 25)
	if err != nil {
		t.Fatal(err)
	}
	var editor *model.ElementDescriptor
	for i := range snap.Elements {
		if snap.Elements[i].Role == model.RoleTextArea {
			editor = &snap.Elements[i]
		}
	}
	if editor == nil {
		t.Fatal("no text area scanned")
	}
	if editor.Position != nil || editor.Size != nil {
		t.Errorf("geometry = %v %v, want absent", editor.Position, editor.Size)
	}
	if editor.Title != "" || editor.Focused {
		t.Errorf("editor = %+v", editor)
	}
}

func TestScan_CyclicTreeTerminates(t *testing.T) {
	for _, maxDepth := range []int{0, 1, 4, 9} {
		t.Run(fmt.Sprintf("depth=%d", maxDepth), func(t *testing.T) {
			h := mustParse(t, loopTree)
			app, err := h.FindRunningApplication("com.example.loop")
			if err != nil {
				t.Fatal(err)
			}
			win, err := h.FocusedWindow(app)
			if err != nil {
				t.Fatal(err)
			}

			snap := Scan(h, win, maxDepth)

			deepest, expanded := 0, 0
			for _, el := range snap.Elements {
				if el.Depth > maxDepth {
					t.Fatalf("element %d at depth %d exceeds %d", el.ID, el.Depth, maxDepth)
				}
				if el.Depth > deepest {
					deepest = el.Depth
				}
				if el.Depth < maxDepth {
					expanded++
				}
			}
			if deepest != maxDepth {
				t.Errorf("deepest = %d, want %d", deepest, maxDepth)
			}
			if got := h.ChildrenCalls(); got != int64(expanded) {
				t.Errorf("ChildrenCalls = %d, want %d (one per node above the bound)", got, expanded)
			}
		})
	}
}

func TestScan_DepthZeroRecordsRootOnly(t *testing.T) {
	h := desktop(t)
	app, _ := h.FindRunningApplication("com.microsoft.teams2")
	win, _ := h.FocusedWindow(app)
	snap := Scan(h, win, 0)
	if snap.Len() != 1 || snap.Elements[0].Role != model.RoleWindow {
		t.Errorf("Scan(depth 0) = %+v", snap.Elements)
	}
	if h.ChildrenCalls() != 0 {
		t.Errorf("ChildrenCalls = %d, want 0", h.ChildrenCalls())
	}
}

func TestScan_UnreachableRoot(t *testing.T) {
	h := desktop(t)
	if snap := Scan(h, nil, 10); snap.Len() != 0 {
		t.Errorf("nil root gave %d elements", snap.Len())
	}

	app, _ := h.FindRunningApplication("com.apple.Notes")
	win, _ := h.FocusedWindow(app)
	h.SetRunning("com.apple.Notes", false)
	if snap := Scan(h, win, 10); snap.Len() != 0 {
		t.Errorf("stale root gave %d elements", snap.Len())
	}
}

func TestScanApplication_Errors(t *testing.T) {
	h := desktop(t)

	snap, err := ScanApplication(h, []string{"com.example.missing"}, 25)
	if !errors.Is(err, platform.ErrTargetNotRunning) {
		t.Errorf("err = %v, want ErrTargetNotRunning", err)
	}
	if snap == nil || snap.Len() != 0 {
		t.Errorf("snapshot = %+v, want empty", snap)
	}

	h.SetTrusted(false)
	_, err = ScanApplication(h, []string{"com.microsoft.teams2"}, 25)
	if !errors.Is(err, platform.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
	if h.ChildrenCalls() != 0 {
		t.Error("scanned without permission")
	}
}

func TestScanApplication_FirstRunningBundle(t *testing.T) {
	h := desktop(t)
	snap, err := ScanApplication(h, []string{"com.microsoft.teams", "com.microsoft.teams2"}, 25)
	if err != nil {
		t.Fatal(err)
	}
	if snap.App != "com.microsoft.teams2" {
		t.Errorf("App = %q, want com.microsoft.teams2", snap.App)
	}
}

func TestScanApplication_RootPreference(t *testing.T) {
	h := mustParse(t, `
apps:
  - bundle_id: a.windows
    windows:
      - role: AXWindow
        title: one
      - role: AXWindow
        title: two
  - bundle_id: a.bare
    children:
      - role: AXMenuBar
`)
	snap, err := ScanApplication(h, []string{"a.windows"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 2 || snap.Elements[0].Title != "one" || snap.Elements[1].Title != "two" {
		t.Errorf("windows fallback = %+v", snap.Elements)
	}
	for _, el := range snap.Elements {
		if el.Depth != 0 || el.ParentID != 0 {
			t.Errorf("window root %d at depth %d parent %d", el.ID, el.Depth, el.ParentID)
		}
	}

	snap, err = ScanApplication(h, []string{"a.bare"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 2 || snap.Elements[0].Role != "application" {
		t.Errorf("application fallback = %+v", snap.Elements)
	}
}

func TestSnapshot_Node(t *testing.T) {
	h := desktop(t)
	snap, err := ScanApplication(h, []string{"com.microsoft.teams2"}, 25)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := snap.Node(7)
	if !ok {
		t.Fatal("Node(7) missing")
	}
	v, err := h.StringAttr(n, platform.AttrValue)
	if err != nil || v != "i has went to the meeting yesterday" {
		t.Errorf("value = %q, %v", v, err)
	}
	for _, id := range []int{0, -1, snap.Len() + 1} {
		if _, ok := snap.Node(id); ok {
			t.Errorf("Node(%d) ok, want missing", id)
		}
	}
}

func TestScan_FreshSnapshots(t *testing.T) {
	h := desktop(t)
	a, _ := ScanApplication(h, []string{"com.microsoft.teams2"}, 25)
	b, _ := ScanApplication(h, []string{"com.microsoft.teams2"}, 25)
	if a.ScanID == b.ScanID {
		t.Error("scan ids repeat")
	}
	a.Elements[0].Title = "mutated"
	if b.Elements[0].Title == "mutated" {
		t.Error("snapshots share element storage")
	}
}
