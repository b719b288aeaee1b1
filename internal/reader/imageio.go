package reader

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"

	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp" // register BMP decoder
)

// ImageIOReader decodes generic raster formats: PNG, JPEG, GIF and BMP.
// It implements the "bioio-imageio" plugin entry of the catalog.
//
// Decoded data maps onto the dimension model as follows:
//   - grayscale images become single-channel "YX" scenes
//   - color images become interleaved "YXS" RGB scenes
//   - animated GIFs contribute their frames as the T dimension
type ImageIOReader struct{}

// NewImageIOReader returns the generic raster format reader.
func NewImageIOReader() *ImageIOReader {
	return &ImageIOReader{}
}

// Name returns the catalog plugin id this reader implements.
func (r *ImageIOReader) Name() string { return "bioio-imageio" }

// Extensions returns the suffixes this reader claims.
func (r *ImageIOReader) Extensions() []string {
	return []string{".bmp", ".gif", ".jpg", ".jpeg", ".png"}
}

// CanRead reports whether the file has a claimed extension and a header
// one of the registered decoders recognizes.
func (r *ImageIOReader) CanRead(path string) bool {
	if !claimsExtension(path, r.Extensions()) {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.DecodeConfig(f)
	return err == nil
}

// Read decodes the file into a single-scene Image.
func (r *ImageIOReader) Read(path string) (*Image, error) {
	if claimsExtension(path, []string{".gif"}) {
		return r.readGIF(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	scene := sceneFromPlane(img, defaultSceneName(0))
	meta := baseMetadata(path, format, scene)

	return &Image{
		Path:     path,
		Reader:   r.Name(),
		Metadata: meta,
		Scenes:   []Scene{scene},
	}, nil
}

// readGIF decodes all frames, mapping them to the T dimension. Frame
// delay, when present and uniform, becomes the physical step of T.
//
// Optimized GIFs encode frames as partial-update rectangles, so each
// frame is composited onto the full canvas (honoring the previous
// frame's disposal mode) before it becomes a T plane. Every stored
// plane therefore has canvas bounds.
func (r *ImageIOReader) readGIF(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames: %s", path)
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}

	canvas := image.NewRGBA(bounds)
	planes := make([][][]image.Image, len(g.Image))
	for t, frame := range g.Image {
		var previous *image.RGBA
		if t < len(g.Disposal) && g.Disposal[t] == gif.DisposalPrevious {
			previous = image.NewRGBA(bounds)
			copy(previous.Pix, canvas.Pix)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		composited := image.NewRGBA(bounds)
		copy(composited.Pix, canvas.Pix)
		planes[t] = [][]image.Image{{composited}}

		if t < len(g.Disposal) {
			switch g.Disposal[t] {
			case gif.DisposalBackground:
				draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				canvas = previous
			}
		}
	}

	scene := Scene{
		Name:       defaultSceneName(0),
		Dims:       "TYXS",
		Shape:      []int{len(g.Image), bounds.Dy(), bounds.Dx(), 3},
		PixelSizes: map[string]PhysicalSize{},
		Planes:     planes,
		RGB:        true,
		BitDepth:   8,
	}

	// GIF delays are hundredths of a second per frame.
	if len(g.Delay) > 0 && g.Delay[0] > 0 {
		scene.PixelSizes[DimT] = PhysicalSize{Value: float64(g.Delay[0]) / 100.0, Unit: "s"}
	}

	meta := baseMetadata(path, "gif", scene)
	meta["frame_count"] = len(g.Image)
	meta["loop_count"] = g.LoopCount

	return &Image{
		Path:     path,
		Reader:   r.Name(),
		Metadata: meta,
		Scenes:   []Scene{scene},
	}, nil
}

// sceneFromPlane wraps a single decoded plane into a Scene, classifying
// grayscale vs RGB and 8 vs 16 bit from the concrete image type.
func sceneFromPlane(img image.Image, name string) Scene {
	bounds := img.Bounds()

	gray := false
	bitDepth := 8
	switch img.(type) {
	case *image.Gray:
		gray = true
	case *image.Gray16:
		gray = true
		bitDepth = 16
	case *image.RGBA64, *image.NRGBA64:
		bitDepth = 16
	}

	if gray {
		return Scene{
			Name:         name,
			Dims:         "YX",
			Shape:        []int{bounds.Dy(), bounds.Dx()},
			ChannelNames: []string{"Channel:0"},
			PixelSizes:   map[string]PhysicalSize{},
			Planes:       [][][]image.Image{{{img}}},
			BitDepth:     bitDepth,
		}
	}

	return Scene{
		Name:       name,
		Dims:       "YXS",
		Shape:      []int{bounds.Dy(), bounds.Dx(), 3},
		PixelSizes: map[string]PhysicalSize{},
		Planes:     [][][]image.Image{{{img}}},
		RGB:        true,
		BitDepth:   bitDepth,
	}
}

// baseMetadata collects the raw metadata every built-in reader reports.
func baseMetadata(path, format string, scene Scene) map[string]interface{} {
	meta := map[string]interface{}{
		"format":    format,
		"width":     scene.SizeX(),
		"height":    scene.SizeY(),
		"bit_depth": scene.BitDepth,
		"rgb":       scene.RGB,
	}
	if stat, err := os.Stat(path); err == nil {
		meta["file_size_bytes"] = stat.Size()
	}
	return meta
}
