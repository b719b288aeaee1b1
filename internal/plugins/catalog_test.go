package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	require.NotZero(t, c.Len())

	czi, ok := c.Get("bioio-czi")
	require.True(t, ok)
	assert.Equal(t, "Zeiss CZI files", czi.Description)
	assert.False(t, czi.Core)
	assert.Equal(t, []string{".czi"}, czi.Extensions)

	imageio, ok := c.Get("bioio-imageio")
	require.True(t, ok)
	assert.True(t, imageio.Core)

	bf, ok := c.Get("bioio-bioformats")
	require.True(t, ok)
	assert.NotEmpty(t, bf.Note)
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{
			name: "empty id",
			entries: []Entry{
				{ID: "", Extensions: []string{".a"}},
			},
		},
		{
			name: "duplicate id",
			entries: []Entry{
				{ID: "x", Extensions: []string{".a"}},
				{ID: "x", Extensions: []string{".b"}},
			},
		},
		{
			name: "uppercase extension",
			entries: []Entry{
				{ID: "x", Extensions: []string{".CZI"}},
			},
		},
		{
			name: "missing dot",
			entries: []Entry{
				{ID: "x", Extensions: []string{"czi"}},
			},
		},
		{
			name: "duplicate extension within entry",
			entries: []Entry{
				{ID: "x", Extensions: []string{".a", ".a"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.entries)
			assert.Error(t, err)
		})
	}
}

func TestNewCatalogSharedExtensionAllowed(t *testing.T) {
	// Two entries claiming the same extension is valid ambiguity.
	c, err := NewCatalog([]Entry{
		{ID: "a", Extensions: []string{".czi"}},
		{ID: "b", Extensions: []string{".czi"}},
	})
	require.NoError(t, err)
	assert.Len(t, c.ResolveForExtension(".czi"), 2)
}

func TestCatalogIDsPreserveOrder(t *testing.T) {
	c, err := NewCatalog([]Entry{
		{ID: "zeta", Extensions: []string{".z"}},
		{ID: "alpha", Extensions: []string{".a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, c.IDs())
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "catalog.yaml")
	content := `
- id: bioio-custom
  extensions: [".xyz"]
  description: Custom format
  repository: https://example.com/bioio-custom
`
	require.NoError(t, os.WriteFile(overlay, []byte(content), 0o644))

	c, err := LoadWithOverlay(overlay)
	require.NoError(t, err)

	custom, ok := c.Get("bioio-custom")
	require.True(t, ok)
	assert.Equal(t, "Custom format", custom.Description)

	// Builtin entries are still present and keep priority.
	assert.Equal(t, "bioio-czi", c.IDs()[0])
	assert.Equal(t, "bioio-custom", c.IDs()[c.Len()-1])
}

func TestLoadWithOverlayRejectsBuiltinID(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "catalog.yaml")
	content := `
- id: bioio-czi
  extensions: [".czi2"]
  description: Conflicting entry
`
	require.NoError(t, os.WriteFile(overlay, []byte(content), 0o644))

	_, err := LoadWithOverlay(overlay)
	assert.Error(t, err)
}

func TestLoadWithOverlayMissingFile(t *testing.T) {
	_, err := LoadWithOverlay(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
