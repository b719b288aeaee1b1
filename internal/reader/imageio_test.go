package reader

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageIOReadGrayscale(t *testing.T) {
	r := NewImageIOReader()
	path := writeTestPNG(t, "gray.png", grayImage(8, 6, 100))

	assert.True(t, r.CanRead(path))

	img, err := r.Read(path)
	require.NoError(t, err)
	require.Len(t, img.Scenes, 1)

	scene := img.Scenes[0]
	assert.Equal(t, "YX", scene.Dims)
	assert.Equal(t, []int{6, 8}, scene.Shape)
	assert.False(t, scene.RGB)
	assert.Equal(t, 8, scene.BitDepth)
	assert.Equal(t, []string{"Channel:0"}, scene.ChannelNames)
	assert.NoError(t, scene.Validate())

	assert.Equal(t, "bioio-imageio", img.Reader)
	assert.Equal(t, 8, img.Metadata["width"])
	assert.Equal(t, 6, img.Metadata["height"])
}

func TestImageIOReadColor(t *testing.T) {
	r := NewImageIOReader()
	path := writeTestPNG(t, "rgb.png", rgbaImage(5, 4, color.RGBA{200, 10, 10, 255}))

	img, err := r.Read(path)
	require.NoError(t, err)

	scene := img.Scenes[0]
	assert.Equal(t, "YXS", scene.Dims)
	assert.Equal(t, []int{4, 5, 3}, scene.Shape)
	assert.True(t, scene.RGB)
	assert.NoError(t, scene.Validate())
}

func TestImageIOReadGIFFrames(t *testing.T) {
	r := NewImageIOReader()
	path := writeTestGIF(t, 3)

	img, err := r.Read(path)
	require.NoError(t, err)

	scene := img.Scenes[0]
	assert.Equal(t, "TYXS", scene.Dims)
	assert.Equal(t, 3, scene.SizeT())
	assert.True(t, scene.RGB)
	assert.NoError(t, scene.Validate())

	// Frame delay becomes the physical step of T, in seconds.
	ps, ok := scene.PixelSizes[DimT]
	require.True(t, ok)
	assert.InDelta(t, 0.1, ps.Value, 1e-9)
	assert.Equal(t, "s", ps.Unit)

	assert.Equal(t, 3, img.Metadata["frame_count"])
}

func TestImageIOReadGIFPartialFrames(t *testing.T) {
	r := NewImageIOReader()

	// Optimized GIF: the second frame only covers a sub-rectangle of the
	// canvas and must be composited over the first.
	palette := color.Palette{color.Black, color.White}
	full := image.NewPaletted(image.Rect(0, 0, 10, 10), palette)
	for i := range full.Pix {
		full.Pix[i] = 1 // white
	}
	patch := image.NewPaletted(image.Rect(5, 5, 8, 8), palette) // black

	g := &gif.GIF{
		Image: []*image.Paletted{full, patch},
		Delay: []int{10, 10},
	}
	path := filepath.Join(t.TempDir(), "partial.gif")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gif.EncodeAll(f, g))
	require.NoError(t, f.Close())

	img, err := r.Read(path)
	require.NoError(t, err)

	scene := img.Scenes[0]
	assert.Equal(t, []int{2, 10, 10, 3}, scene.Shape)
	require.NoError(t, scene.Validate())

	// Every stored plane has full canvas bounds.
	for ti := 0; ti < scene.SizeT(); ti++ {
		plane, err := scene.Plane(ti, 0, 0)
		require.NoError(t, err)
		b := plane.Bounds()
		assert.Equal(t, 10, b.Dx())
		assert.Equal(t, 10, b.Dy())
	}

	// The second plane keeps the first frame's pixels outside the patch
	// and takes the patch's pixels inside it.
	plane, err := scene.Plane(1, 0, 0)
	require.NoError(t, err)
	rOut, _, _, _ := plane.At(0, 0).RGBA()
	rIn, _, _, _ := plane.At(6, 6).RGBA()
	assert.Equal(t, uint32(0xffff), rOut)
	assert.Equal(t, uint32(0), rIn)
}

func TestImageIOCanReadRejects(t *testing.T) {
	r := NewImageIOReader()

	// Wrong extension.
	assert.False(t, r.CanRead("file.czi"))
	// Claimed extension but no such file.
	assert.False(t, r.CanRead("missing.png"))
}

func TestImageIOReadMissingFile(t *testing.T) {
	r := NewImageIOReader()
	_, err := r.Read("missing.png")
	assert.Error(t, err)
}

func TestTIFFReaderName(t *testing.T) {
	r := NewTIFFReader()
	assert.Equal(t, "bioio-ome-tiff", r.Name())
	assert.Contains(t, r.Extensions(), ".ome.tiff")
	assert.False(t, r.CanRead("img.png"))
}
