package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/goccy/go-yaml"
)

//go:embed catalog.yaml
var catalog []byte

var (
	ErrEmptyCatalog = errors.New("catalog has no applications")
	ErrMissingID    = errors.New("application id is required")
	ErrDuplicateID  = errors.New("duplicate application id")
	ErrUnknownKind  = errors.New("unknown application kind")
	ErrBadSize      = errors.New("default size must be positive")
)

type document struct {
	Apps []types.Descriptor `yaml:"apps"`
}

// Registry is the immutable application catalog
type Registry struct {
	apps  []types.Descriptor
	index map[string]int
}

// Default returns the registry built from the embedded catalog
func Default() (*Registry, error) {
	return Parse(catalog)
}

// MustDefault is Default for process wiring, where a broken embedded
// catalog is a build defect
func MustDefault() *Registry {
	reg, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return reg
}

// LoadFile builds a registry from a catalog file on disk
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(doc.Apps)
}

// New validates descriptors and builds a registry preserving their order
func New(apps []types.Descriptor) (*Registry, error) {
	if len(apps) == 0 {
		return nil, ErrEmptyCatalog
	}

	r := &Registry{
		apps:  make([]types.Descriptor, 0, len(apps)),
		index: make(map[string]int, len(apps)),
	}

	for i, desc := range apps {
		if desc.ID == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMissingID)
		}
		if _, exists := r.index[desc.ID]; exists {
			return nil, fmt.Errorf("%s: %w", desc.ID, ErrDuplicateID)
		}
		if !desc.Kind.Valid() {
			return nil, fmt.Errorf("%s: %w %q", desc.ID, ErrUnknownKind, desc.Kind)
		}
		if s := desc.DefaultSize; s != nil && (s.Width <= 0 || s.Height <= 0) {
			return nil, fmt.Errorf("%s: %w", desc.ID, ErrBadSize)
		}
		if desc.Title == "" {
			desc.Title = desc.ID
		}

		r.index[desc.ID] = len(r.apps)
		r.apps = append(r.apps, clone(desc))
	}

	return r, nil
}

// Lookup returns the descriptor for id
func (r *Registry) Lookup(id string) (types.Descriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return types.Descriptor{}, false
	}
	return clone(r.apps[i]), true
}

// List returns every descriptor in declaration order
func (r *Registry) List() []types.Descriptor {
	out := make([]types.Descriptor, len(r.apps))
	for i, desc := range r.apps {
		out[i] = clone(desc)
	}
	return out
}

// Len returns the number of applications
func (r *Registry) Len() int {
	return len(r.apps)
}

// clone keeps callers from mutating the catalog through DefaultSize
func clone(desc types.Descriptor) types.Descriptor {
	if desc.DefaultSize != nil {
		size := *desc.DefaultSize
		desc.DefaultSize = &size
	}
	return desc
}
