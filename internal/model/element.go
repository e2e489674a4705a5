package model

// ElementDescriptor is a snapshot of one accessibility-tree node taken during
// a scan. Descriptors are never mutated after the scan that produced them.
type ElementDescriptor struct {
	ID          int    `yaml:"i"            json:"i"`            // Sequential id, unique within one scan
	ParentID    int    `yaml:"pi,omitempty" json:"pi,omitempty"` // 0 for scan roots
	Role        string `yaml:"r"            json:"r"`            // Role tag (see RoleMap)
	RawRole     string `yaml:"rr,omitempty" json:"rr,omitempty"` // Host role name, e.g. AXTextArea
	Title       string `yaml:"t,omitempty"  json:"t,omitempty"`
	Value       string `yaml:"v,omitempty"  json:"v,omitempty"` // Current text content
	Description string `yaml:"d,omitempty"  json:"d,omitempty"`
	Identifier  string `yaml:"id,omitempty" json:"id,omitempty"`
	Position    *Point `yaml:"p,omitempty"  json:"p,omitempty"` // Top-left origin, nil when not reported
	Size        *Size  `yaml:"s,omitempty"  json:"s,omitempty"`
	Depth       int    `yaml:"dp"           json:"dp"`
	Enabled     bool   `yaml:"e"            json:"e"`
	Focused     bool   `yaml:"f,omitempty"  json:"f,omitempty"`
	Path        string `yaml:"path,omitempty" json:"path,omitempty"` // Role breadcrumb from the scan root
}

// HasGeometry reports whether the element reported both position and size.
func (e ElementDescriptor) HasGeometry() bool {
	return e.Position != nil && e.Size != nil
}

// Area returns width*height, or 0 when the element has no size.
func (e ElementDescriptor) Area() float64 {
	if e.Size == nil {
		return 0
	}
	return e.Size.Area()
}

// Bounds returns [x, y, width, height], zero-filled for missing geometry.
func (e ElementDescriptor) Bounds() [4]float64 {
	var b [4]float64
	if e.Position != nil {
		b[0], b[1] = e.Position.X, e.Position.Y
	}
	if e.Size != nil {
		b[2], b[3] = e.Size.Width, e.Size.Height
	}
	return b
}
