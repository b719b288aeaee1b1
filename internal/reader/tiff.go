package reader

import (
	"fmt"
	"os"

	"golang.org/x/image/tiff"
)

// TIFFReader decodes TIFF files, including single-image OME-TIFFs. It
// implements the "bioio-ome-tiff" plugin entry of the catalog.
//
// Multi-page TIFFs are decoded first-page-only; the page count is not
// exposed by the underlying decoder.
type TIFFReader struct{}

// NewTIFFReader returns the TIFF format reader.
func NewTIFFReader() *TIFFReader {
	return &TIFFReader{}
}

// Name returns the catalog plugin id this reader implements.
func (r *TIFFReader) Name() string { return "bioio-ome-tiff" }

// Extensions returns the suffixes this reader claims. Compound OME
// suffixes are listed so extension matching prefers them.
func (r *TIFFReader) Extensions() []string {
	return []string{".ome.tif", ".ome.tiff", ".tif", ".tiff"}
}

// CanRead reports whether the file has a TIFF extension and a header the
// TIFF decoder accepts.
func (r *TIFFReader) CanRead(path string) bool {
	if !claimsExtension(path, r.Extensions()) {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, err = tiff.DecodeConfig(f)
	return err == nil
}

// Read decodes the file into a single-scene Image.
func (r *TIFFReader) Read(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tiff: %w", err)
	}

	scene := sceneFromPlane(img, defaultSceneName(0))
	meta := baseMetadata(path, "tiff", scene)

	return &Image{
		Path:     path,
		Reader:   r.Name(),
		Metadata: meta,
		Scenes:   []Scene{scene},
	}, nil
}
