package plugins

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry describes a single bioio reader plugin: the extensions it claims,
// a human description, and whether it ships with the core distribution.
//
// Core entries are excluded from install suggestions since installing
// them again is a no-op. Note carries caveats such as external runtime
// requirements.
type Entry struct {
	ID          string   `yaml:"id"`
	Extensions  []string `yaml:"extensions"`
	Description string   `yaml:"description"`
	Repository  string   `yaml:"repository"`
	Core        bool     `yaml:"core,omitempty"`
	Note        string   `yaml:"note,omitempty"`
}

// Catalog is an immutable mapping from plugin id to Entry, with derived
// indexes for extension lookup. Construct it once with NewCatalog (or
// Default) and share it freely; it is never mutated afterwards.
type Catalog struct {
	entries map[string]Entry
	order   []string            // priority order = construction order
	byExt   map[string][]string // extension -> plugin ids, construction order
	// Compound suffixes (more than one dot) sorted longest first, so
	// ".tiles.ome.tif" wins over ".ome.tif" which wins over ".tif".
	compound []string
}

// NewCatalog builds a catalog from entries, preserving their order as the
// reader priority order.
//
// Validation rules:
//   - plugin ids must be unique and non-empty
//   - every extension must be lowercase and dot-prefixed
//   - extensions must be unique within a single entry
//
// Multiple entries may claim the same extension; ambiguous format support
// is expected (e.g. plain ".tiff" is claimed by three plugins).
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[string]Entry, len(entries)),
		byExt:   make(map[string][]string),
	}

	seenCompound := make(map[string]bool)
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry with empty id")
		}
		if _, dup := c.entries[e.ID]; dup {
			return nil, fmt.Errorf("duplicate plugin id: %s", e.ID)
		}

		seenExt := make(map[string]bool, len(e.Extensions))
		for _, ext := range e.Extensions {
			if !strings.HasPrefix(ext, ".") || ext != strings.ToLower(ext) {
				return nil, fmt.Errorf("plugin %s: extension %q must be lowercase and dot-prefixed", e.ID, ext)
			}
			if seenExt[ext] {
				return nil, fmt.Errorf("plugin %s: duplicate extension %q", e.ID, ext)
			}
			seenExt[ext] = true

			c.byExt[ext] = append(c.byExt[ext], e.ID)
			if strings.Count(ext, ".") > 1 && !seenCompound[ext] {
				seenCompound[ext] = true
				c.compound = append(c.compound, ext)
			}
		}

		c.entries[e.ID] = e
		c.order = append(c.order, e.ID)
	}

	// Longest compound suffix must be tried first.
	sort.Slice(c.compound, func(i, j int) bool {
		if len(c.compound[i]) != len(c.compound[j]) {
			return len(c.compound[i]) > len(c.compound[j])
		}
		return c.compound[i] < c.compound[j]
	})

	return c, nil
}

// Default returns a catalog of the known bioio plugins.
//
// The table mirrors the upstream plugin ecosystem; see
// https://github.com/bioio-devs/bioio. Order matters: it is the priority
// order used when building reader preference lists.
func Default() *Catalog {
	c, err := NewCatalog(builtinEntries())
	if err != nil {
		// The builtin table is validated by tests; a failure here is a
		// programming error.
		panic(fmt.Sprintf("builtin plugin catalog invalid: %v", err))
	}
	return c
}

func builtinEntries() []Entry {
	return []Entry{
		{
			ID:          "bioio-czi",
			Extensions:  []string{".czi"},
			Description: "Zeiss CZI files",
			Repository:  "https://github.com/bioio-devs/bioio-czi",
		},
		{
			ID:          "bioio-dv",
			Extensions:  []string{".dv", ".r3d"},
			Description: "DeltaVision files",
			Repository:  "https://github.com/bioio-devs/bioio-dv",
		},
		{
			ID:          "bioio-imageio",
			Extensions:  []string{".bmp", ".gif", ".jpg", ".jpeg", ".png"},
			Description: "Generic image formats (PNG, JPG, etc.)",
			Repository:  "https://github.com/bioio-devs/bioio-imageio",
			Core:        true,
		},
		{
			ID:          "bioio-lif",
			Extensions:  []string{".lif"},
			Description: "Leica LIF files",
			Repository:  "https://github.com/bioio-devs/bioio-lif",
		},
		{
			ID:          "bioio-nd2",
			Extensions:  []string{".nd2"},
			Description: "Nikon ND2 files",
			Repository:  "https://github.com/bioio-devs/bioio-nd2",
		},
		{
			ID:          "bioio-ome-tiff",
			Extensions:  []string{".ome.tif", ".ome.tiff", ".tif", ".tiff"},
			Description: "OME-TIFF files with valid OME-XML metadata",
			Repository:  "https://github.com/bioio-devs/bioio-ome-tiff",
			Core:        true,
		},
		{
			ID:          "bioio-ome-tiled-tiff",
			Extensions:  []string{".tiles.ome.tif"},
			Description: "Tiled OME-TIFF files",
			Repository:  "https://github.com/bioio-devs/bioio-ome-tiled-tiff",
		},
		{
			ID:          "bioio-ome-zarr",
			Extensions:  []string{".zarr"},
			Description: "OME-Zarr files",
			Repository:  "https://github.com/bioio-devs/bioio-ome-zarr",
			Core:        true,
		},
		{
			ID:          "bioio-sldy",
			Extensions:  []string{".sldy", ".dir"},
			Description: "3i SlideBook files",
			Repository:  "https://github.com/bioio-devs/bioio-sldy",
		},
		{
			ID:          "bioio-tifffile",
			Extensions:  []string{".tif", ".tiff"},
			Description: "TIFF files (including those without OME metadata)",
			Repository:  "https://github.com/bioio-devs/bioio-tifffile",
		},
		{
			ID:          "bioio-tiff-glob",
			Extensions:  []string{".tiff"},
			Description: "TIFF sequences (glob patterns)",
			Repository:  "https://github.com/bioio-devs/bioio-tiff-glob",
		},
		{
			ID:          "bioio-bioformats",
			Extensions:  []string{".oib", ".oif", ".vsi", ".ims", ".lsm", ".stk"},
			Description: "Proprietary microscopy formats (requires Java)",
			Repository:  "https://github.com/bioio-devs/bioio-bioformats",
			Note:        "Requires Java Runtime Environment",
		},
	}
}

// LoadWithOverlay builds the default catalog extended by user entries
// from a YAML file. Overlay entries are appended after the builtin table,
// so builtin plugins keep priority; an overlay entry may not reuse a
// builtin id.
//
// The file holds a list of entries:
//
//   - id: bioio-custom
//     extensions: [".xyz"]
//     description: Custom format
//     repository: https://example.com/bioio-custom
func LoadWithOverlay(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog overlay: %w", err)
	}

	var overlay []Entry
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse catalog overlay: %w", err)
	}

	return NewCatalog(append(builtinEntries(), overlay...))
}

// Get returns the entry for a plugin id.
func (c *Catalog) Get(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// IDs returns all plugin ids in priority order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of entries in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Extensions returns every extension known to the catalog, sorted.
func (c *Catalog) Extensions() []string {
	out := make([]string, 0, len(c.byExt))
	for ext := range c.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
