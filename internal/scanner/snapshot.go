package scanner

import (
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/platform"
)

// Snapshot is the result of one scan: a flat, pre-ordered element list.
// Each scan produces a fresh snapshot; nothing is shared between scans.
type Snapshot struct {
	ScanID     string                    `yaml:"scan_id"         json:"scan_id"`
	App        string                    `yaml:"app,omitempty"   json:"app,omitempty"`
	CapturedAt time.Time                 `yaml:"captured_at"     json:"captured_at"`
	Elements   []model.ElementDescriptor `yaml:"elements"        json:"elements"`

	// nodes[i] is the host handle Elements[i] was read from.
	nodes []platform.Node
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		ScanID:     uuid.NewString(),
		CapturedAt: time.Now(),
		Elements:   []model.ElementDescriptor{},
	}
}

func (s *Snapshot) add(el model.ElementDescriptor, n platform.Node) {
	s.Elements = append(s.Elements, el)
	s.nodes = append(s.nodes, n)
}

// Len returns the number of scanned elements.
func (s *Snapshot) Len() int {
	return len(s.Elements)
}

// Node returns the host handle for the element with the given id. Handles
// may go stale once the application changes its UI.
func (s *Snapshot) Node(id int) (platform.Node, bool) {
	// Ids are assigned sequentially from 1 in element order.
	i := id - 1
	if i < 0 || i >= len(s.nodes) {
		return nil, false
	}
	return s.nodes[i], true
}
