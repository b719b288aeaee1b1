package nimage

import (
	"bytes"
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndev-kit/bioimg/internal/layer"
	"github.com/ndev-kit/bioimg/internal/reader"
	"github.com/ndev-kit/bioimg/internal/settings"
)

func writeBytes(path string, n int) error {
	return os.WriteFile(path, bytes.Repeat([]byte{0xAB}, n), 0o644)
}

// grayPlane returns a small grayscale plane for synthetic scenes.
func grayPlane(t *testing.T) image.Image {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 16)
	}
	return img
}

// makePlanes builds a [t][c][z] plane grid filled with gray planes.
func makePlanes(t *testing.T, sizeT, sizeC, sizeZ int) [][][]image.Image {
	t.Helper()
	planes := make([][][]image.Image, sizeT)
	for ti := 0; ti < sizeT; ti++ {
		planes[ti] = make([][]image.Image, sizeC)
		for c := 0; c < sizeC; c++ {
			planes[ti][c] = make([]image.Image, sizeZ)
			for z := 0; z < sizeZ; z++ {
				planes[ti][c][z] = grayPlane(t)
			}
		}
	}
	return planes
}

// multiSceneImage builds a two-scene image: a multichannel Z stack with
// physical pixel sizes, and a single-channel time series.
func multiSceneImage(t *testing.T) *reader.Image {
	t.Helper()
	return &reader.Image{
		Path:   "/data/experiment42.czi",
		Reader: "bioio-czi",
		Metadata: map[string]interface{}{
			"format": "czi",
		},
		Scenes: []reader.Scene{
			{
				Name:         "Scene:0",
				Dims:         "CZYX",
				Shape:        []int{3, 2, 4, 4},
				ChannelNames: []string{"DAPI", "GFP", "nuclei_mask"},
				PixelSizes: map[string]reader.PhysicalSize{
					reader.DimZ: {Value: 2.0, Unit: "µm"},
					reader.DimY: {Value: 0.5, Unit: "µm"},
					reader.DimX: {Value: 0.5, Unit: "µm"},
				},
				Planes:   makePlanes(t, 1, 3, 2),
				BitDepth: 8,
			},
			{
				Name:     "Scene:1",
				Dims:     "TYX",
				Shape:    []int{5, 4, 4},
				Planes:   makePlanes(t, 5, 1, 1),
				BitDepth: 8,
			},
		},
	}
}

func singleSceneImage(t *testing.T) *reader.Image {
	t.Helper()
	return &reader.Image{
		Path:   "/data/photo.png",
		Reader: "bioio-imageio",
		Scenes: []reader.Scene{{
			Name:     "Image:0",
			Dims:     "YXS",
			Shape:    []int{4, 4, 3},
			Planes:   makePlanes(t, 1, 1, 1),
			RGB:      true,
			BitDepth: 8,
		}},
	}
}

func TestScenes(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	scenes, err := n.Scenes()
	require.NoError(t, err)
	assert.Equal(t, []string{"Scene:0", "Scene:1"}, scenes)

	current, err := n.CurrentScene()
	require.NoError(t, err)
	assert.Equal(t, "Scene:0", current)
	assert.Equal(t, 0, n.CurrentSceneIndex())
}

func TestSetScene(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	require.NoError(t, n.SetScene("Scene:1"))
	assert.Equal(t, 1, n.CurrentSceneIndex())

	err := n.SetScene("Scene:9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Scene:9")
	assert.Contains(t, err.Error(), "Scene:0, Scene:1")
	// Failed switch leaves the active scene alone.
	assert.Equal(t, 1, n.CurrentSceneIndex())
}

func TestSetSceneIndex(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	require.NoError(t, n.SetSceneIndex(1))
	assert.Equal(t, 1, n.CurrentSceneIndex())

	assert.Error(t, n.SetSceneIndex(2))
	assert.Error(t, n.SetSceneIndex(-1))
}

func TestLayerAxisLabels(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	// Channel is split into layers, so it drops out of the axis labels.
	labels, err := n.LayerAxisLabels()
	require.NoError(t, err)
	assert.Equal(t, []string{"Z", "Y", "X"}, labels)

	require.NoError(t, n.SetSceneIndex(1))
	labels, err = n.LayerAxisLabels()
	require.NoError(t, err)
	assert.Equal(t, []string{"T", "Y", "X"}, labels)
}

func TestLayerAxisLabelsRGB(t *testing.T) {
	n := FromImage(singleSceneImage(t))

	// Samples fold into the RGB layer.
	labels, err := n.LayerAxisLabels()
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X"}, labels)
}

func TestLayerScaleAndUnits(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	scale, err := n.LayerScale()
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 0.5, 0.5}, scale)

	units, err := n.LayerUnits()
	require.NoError(t, err)
	assert.Equal(t, []string{"µm", "µm", "µm"}, units)

	// Scene without pixel size metadata defaults to 1.0 and no unit.
	require.NoError(t, n.SetSceneIndex(1))
	scale, err = n.LayerScale()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 1.0, 1.0}, scale)

	units, err = n.LayerUnits()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", ""}, units)
}

func TestLayerMetadata(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	meta, err := n.LayerMetadata()
	require.NoError(t, err)
	assert.Equal(t, "bioio-czi", meta["reader"])
	assert.Equal(t, "/data/experiment42.czi", meta["source_path"])
	assert.NotNil(t, meta["raw_image_metadata"])
}

func TestLayerDataChannelSplit(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	layers, err := n.LayerData(LayerOptions{})
	require.NoError(t, err)
	require.Len(t, layers, 3)

	// Names include channel, scene parts and file stem.
	assert.Equal(t, "DAPI :: 0 :: Scene:0 :: experiment42", layers[0].Kwargs.Name)
	assert.Equal(t, "GFP :: 0 :: Scene:0 :: experiment42", layers[1].Kwargs.Name)

	// Label channel detected by name.
	assert.Equal(t, layer.TypeImage, layers[0].Type)
	assert.Equal(t, layer.TypeImage, layers[1].Type)
	assert.Equal(t, layer.TypeLabels, layers[2].Type)

	// Each channel stack holds the Z planes for that channel.
	assert.Equal(t, "ZYX", layers[0].Data.Dims)
	assert.Equal(t, []int{2, 4, 4}, layers[0].Data.Shape)
	assert.Len(t, layers[0].Data.Planes, 2)

	// Secondary intensity channels blend additively.
	assert.Equal(t, layer.BlendingTranslucent, layers[0].Kwargs.Blending)
	assert.Equal(t, layer.BlendingAdditive, layers[1].Kwargs.Blending)

	assert.Equal(t, []float64{2.0, 0.5, 0.5}, layers[0].Kwargs.Scale)
	assert.Equal(t, []string{"Z", "Y", "X"}, layers[0].Kwargs.AxisLabels)
}

func TestLayerDataGlobalOverride(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	layers, err := n.LayerData(LayerOptions{LayerType: layer.TypeLabels})
	require.NoError(t, err)
	for _, l := range layers {
		assert.Equal(t, layer.TypeLabels, l.Type)
	}
}

func TestLayerDataChannelTypes(t *testing.T) {
	n := FromImage(multiSceneImage(t))

	layers, err := n.LayerData(LayerOptions{
		ChannelTypes: map[string]string{"GFP": layer.TypeLabels},
	})
	require.NoError(t, err)
	assert.Equal(t, layer.TypeImage, layers[0].Type)
	assert.Equal(t, layer.TypeLabels, layers[1].Type)
}

func TestLayerDataRGB(t *testing.T) {
	n := FromImage(singleSceneImage(t))

	layers, err := n.LayerData(LayerOptions{})
	require.NoError(t, err)
	require.Len(t, layers, 1)

	l := layers[0]
	assert.True(t, l.Kwargs.RGB)
	assert.Equal(t, layer.TypeImage, l.Type)
	assert.Equal(t, "YXS", l.Data.Dims)
	assert.Equal(t, []int{4, 4, 3}, l.Data.Shape)
	// Single-scene file with the default scene name keeps the name short.
	assert.Equal(t, "photo", l.Kwargs.Name)
}

func TestLayerDataPadsChannelNames(t *testing.T) {
	img := &reader.Image{
		Path:   "/data/unnamed.tif",
		Reader: "bioio-ome-tiff",
		Scenes: []reader.Scene{{
			Name:     "Image:0",
			Dims:     "CYX",
			Shape:    []int{2, 4, 4},
			Planes:   makePlanes(t, 1, 2, 1),
			BitDepth: 8,
		}},
	}
	n := FromImage(img)

	layers, err := n.LayerData(LayerOptions{})
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "channel_0 :: unnamed", layers[0].Kwargs.Name)
	assert.Equal(t, "channel_1 :: unnamed", layers[1].Kwargs.Name)
}

func TestDetermineInMemory(t *testing.T) {
	cfg := settings.MemorySettings{MaxInMemBytes: 4e9, MaxInMemPercent: 0.30}

	// Empty path and unstattable files load eagerly.
	assert.True(t, DetermineInMemory("", cfg))
	assert.True(t, DetermineInMemory("/no/such/file", cfg))

	// A tiny real file is under any sane threshold.
	path := t.TempDir() + "/small.bin"
	require.NoError(t, writeBytes(path, 128))
	assert.True(t, DetermineInMemory(path, cfg))

	// A zero byte cap forces deferred loading for any real file.
	tight := settings.MemorySettings{MaxInMemBytes: 0, MaxInMemPercent: 0.30}
	assert.False(t, DetermineInMemory(path, tight))
}
