package platform

import "github.com/mj1618/composebox/internal/model"

// Node is an opaque handle to one accessibility-tree node. Handles carry no
// identity across scans.
type Node interface{}

// Accessibility attribute names queried by the scanner.
const (
	AttrRole        = "AXRole"
	AttrTitle       = "AXTitle"
	AttrValue       = "AXValue"
	AttrDescription = "AXDescription"
	AttrIdentifier  = "AXIdentifier"
	AttrPosition    = "AXPosition"
	AttrSize        = "AXSize"
	AttrEnabled     = "AXEnabled"
	AttrFocused     = "AXFocused"
)

// Host is the accessibility tree query service. Every attribute query is
// independently fallible: a node that does not support an attribute returns
// ErrAttributeUnavailable for it without affecting other queries.
type Host interface {
	// IsTrusted reports whether the process holds accessibility permission.
	IsTrusted() bool

	// PromptForTrust asks the OS to show its permission prompt.
	PromptForTrust()

	// FindRunningApplication returns the application node for a bundle id,
	// or ErrTargetNotRunning.
	FindRunningApplication(bundleID string) (Node, error)

	// FocusedWindow returns the application's focused window, if any.
	FocusedWindow(app Node) (Node, error)

	// Windows returns the application's top-level windows.
	Windows(app Node) ([]Node, error)

	// Children returns the node's children in host order.
	Children(node Node) ([]Node, error)

	StringAttr(node Node, name string) (string, error)
	BoolAttr(node Node, name string) (bool, error)
	PointAttr(node Node, name string) (model.Point, error)
	SizeAttr(node Node, name string) (model.Size, error)

	// SetStringAttr writes a string attribute, e.g. AXValue of a text area.
	SetStringAttr(node Node, name, value string) error

	// MainScreenSize returns the main display size in points.
	MainScreenSize() (model.Size, error)

	// FrontmostBundleID returns the bundle id of the frontmost application.
	FrontmostBundleID() (string, error)
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	GetText() (string, error)
	SetText(text string) error
}

// NewClipboardFunc is set by platform-specific packages via init().
var NewClipboardFunc func() Clipboard

// NewClipboard returns the system clipboard, or nil when unsupported.
func NewClipboard() Clipboard {
	if NewClipboardFunc == nil {
		return nil
	}
	return NewClipboardFunc()
}
