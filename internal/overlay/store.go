package overlay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/composebox/internal/model"
)

// Store persists the last overlay point per application key. A key that was
// never saved is reported with ok == false, never as a zero point.
type Store interface {
	Save(ctx context.Context, appKey string, pt model.Point) error
	Load(ctx context.Context, appKey string) (pt model.Point, ok bool, err error)
	List(ctx context.Context) (map[string]model.Point, error)
	Close() error
}

// Backend names accepted by OpenStore.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrEmptyKey is returned for a blank application key.
var ErrEmptyKey = errors.New("empty placement key")

// OpenStore opens the backend by name. File and sqlite backends need a path.
func OpenStore(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		if path == "" {
			return nil, fmt.Errorf("placement backend %q requires a path", backend)
		}
		return NewFileStore(path), nil
	case BackendSQLite:
		if path == "" {
			return nil, fmt.Errorf("placement backend %q requires a path", backend)
		}
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown placement backend %q (want memory, file or sqlite)", backend)
	}
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
