package reader

import (
	"fmt"
	"image"
)

// Dimension names follow the TCZYX convention used across bioimaging
// metadata, with S (Samples) for interleaved RGB(A) data.
const (
	DimT = "T"
	DimC = "C"
	DimZ = "Z"
	DimY = "Y"
	DimX = "X"
	DimS = "S"
)

// PhysicalSize is the physical extent of one pixel step along a
// dimension, e.g. {0.2, "µm"} for X or {1.5, "s"} for T.
type PhysicalSize struct {
	Value float64
	Unit  string
}

// Scene is one position/sub-acquisition within an image file. Pixel data
// is stored as decoded YX(S) planes indexed by T, C, Z.
type Scene struct {
	Name         string
	Dims         string // ordered subset of "TCZYXS", always ending in "YX" or "YXS"
	Shape        []int  // lengths matching Dims
	ChannelNames []string
	PixelSizes   map[string]PhysicalSize // keyed by dimension name

	// Planes[t][c][z] holds the decoded plane for that index. Dimensions
	// absent from Dims have length 1 here.
	Planes [][][]image.Image

	// RGB marks interleaved-sample data (Dims ends in "YXS").
	RGB      bool
	BitDepth int // bits per channel sample: 8 or 16
}

// SizeT returns the number of timepoints in the scene.
func (s *Scene) SizeT() int { return s.dimLen(DimT) }

// SizeC returns the number of channels in the scene.
func (s *Scene) SizeC() int { return s.dimLen(DimC) }

// SizeZ returns the number of Z slices in the scene.
func (s *Scene) SizeZ() int { return s.dimLen(DimZ) }

// SizeY returns the image height in pixels.
func (s *Scene) SizeY() int { return s.dimLen(DimY) }

// SizeX returns the image width in pixels.
func (s *Scene) SizeX() int { return s.dimLen(DimX) }

func (s *Scene) dimLen(dim string) int {
	for i := 0; i < len(s.Dims); i++ {
		if string(s.Dims[i]) == dim {
			return s.Shape[i]
		}
	}
	return 1
}

// Plane returns the decoded plane at (t, c, z), tolerating indexes along
// dimensions the scene does not have as long as they are zero.
func (s *Scene) Plane(t, c, z int) (image.Image, error) {
	if t < 0 || c < 0 || z < 0 ||
		t >= len(s.Planes) || c >= len(s.Planes[t]) || z >= len(s.Planes[t][c]) {
		return nil, fmt.Errorf("plane index (t=%d, c=%d, z=%d) out of range for shape %v", t, c, z, s.Shape)
	}
	return s.Planes[t][c][z], nil
}

// Validate checks internal consistency between Dims, Shape and Planes.
func (s *Scene) Validate() error {
	if len(s.Dims) != len(s.Shape) {
		return fmt.Errorf("scene %s: dims %q and shape %v length mismatch", s.Name, s.Dims, s.Shape)
	}
	if len(s.Planes) != s.SizeT() {
		return fmt.Errorf("scene %s: expected %d timepoints, got %d", s.Name, s.SizeT(), len(s.Planes))
	}
	for t := range s.Planes {
		if len(s.Planes[t]) != s.SizeC() {
			return fmt.Errorf("scene %s: t=%d expected %d channels, got %d", s.Name, t, s.SizeC(), len(s.Planes[t]))
		}
		for c := range s.Planes[t] {
			if len(s.Planes[t][c]) != s.SizeZ() {
				return fmt.Errorf("scene %s: t=%d c=%d expected %d z slices, got %d", s.Name, t, c, s.SizeZ(), len(s.Planes[t][c]))
			}
			for z, p := range s.Planes[t][c] {
				if p == nil {
					return fmt.Errorf("scene %s: plane (t=%d, c=%d, z=%d) is nil", s.Name, t, c, z)
				}
				b := p.Bounds()
				if b.Dy() != s.SizeY() || b.Dx() != s.SizeX() {
					return fmt.Errorf("scene %s: plane (t=%d, c=%d, z=%d) is %dx%d, want %dx%d",
						s.Name, t, c, z, b.Dx(), b.Dy(), s.SizeX(), s.SizeY())
				}
			}
		}
	}
	return nil
}

// Image is a fully decoded image file: one or more scenes plus the raw
// metadata the reader extracted.
type Image struct {
	Path     string
	Reader   string // registry name of the reader that produced this
	Metadata map[string]interface{}
	Scenes   []Scene
}

// Scene returns the scene at index i.
func (img *Image) Scene(i int) (*Scene, error) {
	if i < 0 || i >= len(img.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range (have %d)", i, len(img.Scenes))
	}
	return &img.Scenes[i], nil
}

// SceneNames returns the names of all scenes in order.
func (img *Image) SceneNames() []string {
	names := make([]string, len(img.Scenes))
	for i, s := range img.Scenes {
		names[i] = s.Name
	}
	return names
}

// defaultSceneName mirrors the "Image:N" convention used by OME metadata.
func defaultSceneName(i int) string {
	return fmt.Sprintf("Image:%d", i)
}
