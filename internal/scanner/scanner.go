// Package scanner walks an accessibility tree into a flat list of element
// descriptors.
//
// The walk is a pre-order depth-first traversal bounded only by depth. There
// is no visited set: hosts may expose cyclic or extremely deep trees, and the
// depth cap is what guarantees termination, at a cost of at most
// O(children^maxDepth) node visits.
package scanner

import (
	"errors"
	"log/slog"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/platform"
)

// Scan walks the tree under root. A node at depth == maxDepth is recorded
// but its children are not requested. An unreachable root yields an empty
// snapshot.
func Scan(host platform.Host, root platform.Node, maxDepth int) *Snapshot {
	return ScanRoots(host, []platform.Node{root}, maxDepth)
}

// ScanRoots scans several roots into one snapshot, each starting at depth 0.
func ScanRoots(host platform.Host, roots []platform.Node, maxDepth int) *Snapshot {
	snap := newSnapshot()
	if maxDepth < 0 {
		maxDepth = 0
	}
	w := &walker{host: host, maxDepth: maxDepth, snap: snap}
	for _, root := range roots {
		if !reachable(host, root) {
			continue
		}
		w.visit(root, 0, 0, "")
	}
	return snap
}

// ScanApplication scans the first running application among bundleIDs.
// It prefers the focused window, then all top-level windows, then the
// application node itself. A missing permission returns
// platform.ErrPermissionDenied; no running application returns an empty
// snapshot with platform.ErrTargetNotRunning.
func ScanApplication(host platform.Host, bundleIDs []string, maxDepth int) (*Snapshot, error) {
	if !host.IsTrusted() {
		return newSnapshot(), platform.ErrPermissionDenied
	}

	app, bundleID, err := findApplication(host, bundleIDs)
	if err != nil {
		return newSnapshot(), err
	}

	roots := selectRoots(host, app)
	snap := ScanRoots(host, roots, maxDepth)
	snap.App = bundleID
	slog.Debug("scanned application", "bundle_id", bundleID, "roots", len(roots), "elements", snap.Len(), "max_depth", maxDepth)
	return snap, nil
}

func findApplication(host platform.Host, bundleIDs []string) (platform.Node, string, error) {
	for _, id := range bundleIDs {
		app, err := host.FindRunningApplication(id)
		if err == nil && app != nil {
			return app, id, nil
		}
		if err != nil && !errors.Is(err, platform.ErrTargetNotRunning) {
			slog.Debug("application lookup failed", "bundle_id", id, "err", err)
		}
	}
	return nil, "", platform.ErrTargetNotRunning
}

func selectRoots(host platform.Host, app platform.Node) []platform.Node {
	if win, err := host.FocusedWindow(app); err == nil && win != nil {
		return []platform.Node{win}
	}
	if wins, err := host.Windows(app); err == nil && len(wins) > 0 {
		return wins
	}
	return []platform.Node{app}
}

// reachable reports whether root answers at all. A node that merely lacks a
// role is still reachable.
func reachable(host platform.Host, root platform.Node) bool {
	if root == nil {
		return false
	}
	_, err := host.StringAttr(root, platform.AttrRole)
	return err == nil || errors.Is(err, platform.ErrAttributeUnavailable)
}

type walker struct {
	host     platform.Host
	maxDepth int
	snap     *Snapshot
	nextID   int
}

func (w *walker) visit(n platform.Node, depth, parentID int, parentPath string) {
	el := w.describe(n, depth, parentID, parentPath)
	w.snap.add(el, n)

	if depth >= w.maxDepth {
		return
	}
	children, err := w.host.Children(n)
	if err != nil {
		return
	}
	for _, c := range children {
		w.visit(c, depth+1, el.ID, el.Path)
	}
}

// describe reads every attribute of n independently. A failed query leaves
// its field absent and never aborts the node.
func (w *walker) describe(n platform.Node, depth, parentID int, parentPath string) model.ElementDescriptor {
	w.nextID++
	el := model.ElementDescriptor{
		ID:       w.nextID,
		ParentID: parentID,
		Depth:    depth,
		Enabled:  true,
	}

	el.RawRole = w.str(n, platform.AttrRole)
	el.Role = model.MapRole(el.RawRole)
	el.Title = w.str(n, platform.AttrTitle)
	el.Value = w.str(n, platform.AttrValue)
	el.Description = w.str(n, platform.AttrDescription)
	el.Identifier = w.str(n, platform.AttrIdentifier)

	if p, err := w.host.PointAttr(n, platform.AttrPosition); err == nil {
		el.Position = &p
	}
	if s, err := w.host.SizeAttr(n, platform.AttrSize); err == nil {
		el.Size = &s
	}
	if v, err := w.host.BoolAttr(n, platform.AttrEnabled); err == nil {
		el.Enabled = v
	}
	if v, err := w.host.BoolAttr(n, platform.AttrFocused); err == nil {
		el.Focused = v
	}

	el.Path = el.Role
	if parentPath != "" {
		el.Path = parentPath + " > " + el.Role
	}
	return el
}

func (w *walker) str(n platform.Node, attr string) string {
	v, err := w.host.StringAttr(n, attr)
	if err != nil {
		return ""
	}
	return v
}
