package plugins

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ResolveExtension determines the catalog-relevant suffix of a path.
//
// Compound suffixes known to the catalog (".ome.tiff", ".tiles.ome.tif")
// are matched first, longest first; otherwise the single trailing suffix
// is returned. Matching is case-insensitive and the result is lowercase.
// An empty string means the path has no suffix at all.
func (c *Catalog) ResolveExtension(path string) string {
	name := strings.ToLower(filepath.Base(path))

	for _, suffix := range c.compound {
		if strings.HasSuffix(name, suffix) {
			return suffix
		}
	}
	return filepath.Ext(name)
}

// ResolveForPath returns every catalog entry claiming the path's suffix,
// in catalog priority order.
//
// An empty result is a valid, non-exceptional outcome: it means no known
// plugin recognizes the extension. Paths without any extension resolve
// to an empty result rather than an error.
func (c *Catalog) ResolveForPath(path string) []Entry {
	return c.ResolveForExtension(c.ResolveExtension(path))
}

// ResolveForExtension returns every entry claiming the given extension.
// The extension is lowercased before lookup; a missing leading dot is
// tolerated.
func (c *Catalog) ResolveForExtension(ext string) []Entry {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	ids := c.byExt[ext]
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.entries[id])
	}
	return out
}

// maxSuggestDistance bounds how far an unknown extension may be from a
// known one before fuzzy matching gives up on it.
const maxSuggestDistance = 2

// NearestExtensions returns known extensions within a small edit distance
// of ext, closest first (ties broken alphabetically). Used to produce
// "did you mean" hints for probable typos such as ".tift".
func (c *Catalog) NearestExtensions(ext string, max int) []string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == "" || max <= 0 {
		return nil
	}

	type candidate struct {
		ext  string
		dist int
	}
	var found []candidate
	for known := range c.byExt {
		d := levenshtein.ComputeDistance(ext, known)
		if d > 0 && d <= maxSuggestDistance {
			found = append(found, candidate{known, d})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].ext < found[j].ext
	})

	if len(found) > max {
		found = found[:max]
	}
	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.ext
	}
	return out
}
