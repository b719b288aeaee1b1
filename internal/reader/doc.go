// Package reader provides the format reader registry and the built-in
// core readers.
//
// A Reader decodes one file format family into the dimension-aware Image
// model (TCZYX plus an optional Samples axis for RGB data). Readers are
// registered under their catalog plugin id, so the set of registered
// readers doubles as the "installed plugins" view consulted by the
// suggestion system.
//
// Open tries readers in priority order (preferred reader first, then
// catalog order) and, when every reader declines, returns an error
// wrapping ErrUnsupportedFormat enriched with install suggestions.
package reader
