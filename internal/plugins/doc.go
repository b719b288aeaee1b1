// Package plugins tracks the bioio reader plugin ecosystem and produces
// installation suggestions when no installed reader can open a file.
//
// The package is built around an immutable Catalog mapping plugin ids to
// the file extensions they support. Three operations sit on top of it:
//
//   - extension resolution: map a file path to the catalog entries that
//     claim its suffix, preferring compound suffixes such as ".ome.tiff"
//     over the trailing ".tiff"
//   - suggestion formatting: turn matched, non-core entries into a
//     human-readable install message with deterministic ordering
//   - failure enrichment: attach that message to an unsupported-format
//     error without losing the original error for errors.Is checks
//
// The Catalog is read-only after construction, so it is safe to share
// across goroutines without locking. Empty resolution results are valid
// outcomes, not errors: a file nobody recognizes simply yields the
// neutral "no known plugin" message.
package plugins
