//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation -framework CoreGraphics -framework AppKit -framework Foundation
#include "ax_host.h"
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/platform"
)

// axNode owns one retained AXUIElementRef. The reference is released when
// the node becomes unreachable.
type axNode struct {
	ref C.AXUIElementRef
}

func newNode(ref C.AXUIElementRef) *axNode {
	n := &axNode{ref: ref}
	runtime.SetFinalizer(n, func(n *axNode) { C.axh_release(n.ref) })
	return n
}

// DarwinHost implements platform.Host over the macOS Accessibility API.
type DarwinHost struct{}

// NewHost creates a new macOS accessibility host.
func NewHost() *DarwinHost {
	return &DarwinHost{}
}

func (h *DarwinHost) FindRunningApplication(bundleID string) (platform.Node, error) {
	cID := C.CString(bundleID)
	defer C.free(unsafe.Pointer(cID))

	pid := C.axh_pid_for_bundle(cID)
	if pid == 0 {
		return nil, fmt.Errorf("%s: %w", bundleID, platform.ErrTargetNotRunning)
	}
	return h.appNode(int(pid)), nil
}

// appNode returns the application element for pid. AX does not check that
// the process exists until the element is queried.
func (h *DarwinHost) appNode(pid int) *axNode {
	return newNode(C.axh_create_app(C.pid_t(pid)))
}

func (h *DarwinHost) FocusedWindow(app platform.Node) (platform.Node, error) {
	n, err := asNode(app)
	if err != nil {
		return nil, err
	}
	name := C.CString("AXFocusedWindow")
	defer C.free(unsafe.Pointer(name))

	var out C.AXUIElementRef
	if err := attrError(C.axh_element_attr(n.ref, name, &out), "AXFocusedWindow"); err != nil {
		return nil, err
	}
	return newNode(out), nil
}

func (h *DarwinHost) Windows(app platform.Node) ([]platform.Node, error) {
	return h.elementArray(app, "AXWindows")
}

func (h *DarwinHost) Children(node platform.Node) ([]platform.Node, error) {
	return h.elementArray(node, "AXChildren")
}

func (h *DarwinHost) elementArray(node platform.Node, attr string) ([]platform.Node, error) {
	n, err := asNode(node)
	if err != nil {
		return nil, err
	}
	name := C.CString(attr)
	defer C.free(unsafe.Pointer(name))

	var items *C.AXUIElementRef
	var count C.int
	if err := attrError(C.axh_array_attr(n.ref, name, &items, &count), attr); err != nil {
		return nil, err
	}
	defer C.free(unsafe.Pointer(items))

	refs := unsafe.Slice(items, int(count))
	nodes := make([]platform.Node, 0, len(refs))
	for _, ref := range refs {
		nodes = append(nodes, newNode(ref))
	}
	return nodes, nil
}

func (h *DarwinHost) StringAttr(node platform.Node, name string) (string, error) {
	n, err := asNode(node)
	if err != nil {
		return "", err
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var out *C.char
	if err := attrError(C.axh_string_attr(n.ref, cName, &out), name); err != nil {
		return "", err
	}
	defer C.free(unsafe.Pointer(out))
	return C.GoString(out), nil
}

func (h *DarwinHost) BoolAttr(node platform.Node, name string) (bool, error) {
	n, err := asNode(node)
	if err != nil {
		return false, err
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var out C.int
	if err := attrError(C.axh_bool_attr(n.ref, cName, &out), name); err != nil {
		return false, err
	}
	return out != 0, nil
}

func (h *DarwinHost) PointAttr(node platform.Node, name string) (model.Point, error) {
	n, err := asNode(node)
	if err != nil {
		return model.Point{}, err
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var x, y C.double
	if err := attrError(C.axh_point_attr(n.ref, cName, &x, &y), name); err != nil {
		return model.Point{}, err
	}
	return model.Point{X: float64(x), Y: float64(y)}, nil
}

func (h *DarwinHost) SizeAttr(node platform.Node, name string) (model.Size, error) {
	n, err := asNode(node)
	if err != nil {
		return model.Size{}, err
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var w, ht C.double
	if err := attrError(C.axh_size_attr(n.ref, cName, &w, &ht), name); err != nil {
		return model.Size{}, err
	}
	return model.Size{Width: float64(w), Height: float64(ht)}, nil
}

func (h *DarwinHost) SetStringAttr(node platform.Node, name, value string) error {
	if err := requireTrust(); err != nil {
		return err
	}
	n, err := asNode(node)
	if err != nil {
		return err
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	cValue := C.CString(value)
	defer C.free(unsafe.Pointer(cValue))

	switch rc := C.axh_set_string_attr(n.ref, cName, cValue); rc {
	case C.AXH_OK:
		return nil
	case C.AXH_FAILED:
		return fmt.Errorf("failed to set %s", name)
	default:
		return attrError(rc, name)
	}
}

func (h *DarwinHost) MainScreenSize() (model.Size, error) {
	var w, ht C.double
	C.axh_main_screen_size(&w, &ht)
	if w <= 0 || ht <= 0 {
		return model.Size{}, fmt.Errorf("main display size unavailable")
	}
	return model.Size{Width: float64(w), Height: float64(ht)}, nil
}

func (h *DarwinHost) FrontmostBundleID() (string, error) {
	out := C.axh_frontmost_bundle()
	if out == nil {
		return "", fmt.Errorf("no frontmost application")
	}
	defer C.free(unsafe.Pointer(out))
	return C.GoString(out), nil
}

func asNode(node platform.Node) (*axNode, error) {
	n, ok := node.(*axNode)
	if !ok || n == nil {
		return nil, platform.ErrInvalidNode
	}
	return n, nil
}

// attrError maps an ax_host.h return code to a platform error.
func attrError(rc C.int, attr string) error {
	switch rc {
	case C.AXH_OK:
		return nil
	case C.AXH_UNAVAILABLE:
		return fmt.Errorf("%s: %w", attr, platform.ErrAttributeUnavailable)
	case C.AXH_INVALID:
		return fmt.Errorf("%s: %w", attr, platform.ErrInvalidNode)
	case C.AXH_DENIED:
		return platform.ErrPermissionDenied
	default:
		return fmt.Errorf("%s: accessibility call failed (%d)", attr, int(rc))
	}
}
