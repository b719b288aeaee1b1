package reader

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ndev-kit/bioimg/internal/plugins"
)

// Opener decodes files through a registry with catalog-driven reader
// priority, an optional preferred reader, and a decoded-image cache.
type Opener struct {
	registry *Registry
	catalog  *plugins.Catalog
	cache    *Cache

	// Preferred names the reader to try first, when installed. Empty
	// means pure catalog order.
	Preferred string

	log *logrus.Entry
}

// NewOpener wires a registry and catalog together. A nil cache disables
// caching.
func NewOpener(registry *Registry, catalog *plugins.Catalog, cache *Cache) *Opener {
	return &Opener{
		registry: registry,
		catalog:  catalog,
		cache:    cache,
		log:      logrus.WithField("component", "opener"),
	}
}

// Registry exposes the underlying reader registry.
func (o *Opener) Registry() *Registry { return o.registry }

// Catalog exposes the plugin catalog the opener consults.
func (o *Opener) Catalog() *plugins.Catalog { return o.catalog }

// Open decodes a file, trying readers in priority order.
//
// Order is: the preferred reader (when installed), then installed
// readers in catalog priority order, then any registered reader that
// claims support but is absent from the catalog. When every reader fails
// or declines, the returned error wraps ErrUnsupportedFormat and carries
// install suggestions for the file's extension; errors.Is against
// ErrUnsupportedFormat keeps working on it.
func (o *Opener) Open(path string) (*Image, error) {
	if o.cache != nil {
		if img, ok := o.cache.Get(path); ok {
			return img, nil
		}
	}

	report := o.registry.Feasibility(path)
	manager := plugins.NewManager(o.catalog, path, report)

	tried := make(map[string]bool)
	for _, name := range manager.PriorityList(o.Preferred) {
		tried[name] = true
		img, err := o.tryRead(name, path, report)
		if err != nil {
			continue
		}
		return o.finish(path, img)
	}

	// Readers registered under ids the catalog does not know still get
	// a chance, in sorted name order.
	for _, name := range o.registry.Names() {
		if tried[name] {
			continue
		}
		img, err := o.tryRead(name, path, report)
		if err != nil {
			continue
		}
		return o.finish(path, img)
	}

	base := fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	return nil, o.catalog.EnrichUnsupported(path, base, report)
}

// tryRead attempts one reader, skipping those whose feasibility check
// already declined the file.
func (o *Opener) tryRead(name, path string, report plugins.FeasibilityReport) (*Image, error) {
	if support, ok := report[name]; ok && !support.Supported {
		return nil, support.Err
	}

	rd, err := o.registry.Get(name)
	if err != nil {
		return nil, err
	}

	img, err := rd.Read(path)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"reader": name,
			"file":   path,
		}).WithError(err).Debug("reader failed, trying next")
		return nil, err
	}
	return img, nil
}

func (o *Opener) finish(path string, img *Image) (*Image, error) {
	for i := range img.Scenes {
		if err := img.Scenes[i].Validate(); err != nil {
			return nil, fmt.Errorf("reader %s produced inconsistent scene: %w", img.Reader, err)
		}
	}
	o.log.WithFields(logrus.Fields{
		"reader": img.Reader,
		"file":   path,
		"scenes": len(img.Scenes),
	}).Info("image decoded")

	if o.cache != nil {
		o.cache.Put(path, img)
	}
	return img, nil
}
