package reader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ndev-kit/bioimg/internal/plugins"
)

// ErrUnsupportedFormat signals that no installed reader could open a
// file. Callers should test for it with errors.Is; the error returned by
// Open wraps it together with install suggestions.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Reader decodes one format family into the Image model.
//
// Name must match the plugin id the reader implements (e.g.
// "bioio-imageio"), so the registry contents line up with the plugin
// catalog's view of installed plugins.
type Reader interface {
	Name() string
	Extensions() []string

	// CanRead reports whether the reader believes it can decode the
	// file, based on a cheap header/extension check. It must not decode
	// pixel data.
	CanRead(path string) bool

	// Read fully decodes the file.
	Read(path string) (*Image, error)
}

// Registry is a thread-safe collection of readers keyed by name.
type Registry struct {
	mu      sync.RWMutex
	readers map[string]Reader
	log     *logrus.Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		readers: make(map[string]Reader),
		log:     logrus.WithField("component", "reader-registry"),
	}
}

// DefaultRegistry returns a registry populated with the built-in core
// readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Registration of built-ins cannot collide.
	_ = r.Register(NewImageIOReader())
	_ = r.Register(NewTIFFReader())
	return r
}

// Register adds a reader. Registering a nil reader, an unnamed reader,
// or a duplicate name is an error.
func (r *Registry) Register(rd Reader) error {
	if rd == nil {
		return fmt.Errorf("cannot register nil reader")
	}
	name := rd.Name()
	if name == "" {
		return fmt.Errorf("reader name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.readers[name]; exists {
		return fmt.Errorf("reader already registered: %s", name)
	}
	r.readers[name] = rd
	return nil
}

// Get returns a reader by name.
func (r *Registry) Get(name string) (Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rd, ok := r.readers[name]
	if !ok {
		return nil, fmt.Errorf("reader not found: %s", name)
	}
	return rd, nil
}

// Names returns all registered reader names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.readers))
	for name := range r.readers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks whether a reader is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.readers[name]
	return ok
}

// Feasibility produces a per-reader support report for one path. Every
// registered reader appears in the report; Supported is the result of
// its CanRead check.
func (r *Registry) Feasibility(path string) plugins.FeasibilityReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := make(plugins.FeasibilityReport, len(r.readers))
	for name, rd := range r.readers {
		if rd.CanRead(path) {
			report[name] = plugins.Support{Supported: true}
		} else {
			report[name] = plugins.Support{
				Err: fmt.Errorf("%s does not recognize %q", name, path),
			}
		}
	}
	return report
}

// claimsExtension reports whether any of exts matches the end of the
// lowercased file name. Compound extensions are honored.
func claimsExtension(path string, exts []string) bool {
	name := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
