// Package writer exports layers to ordinary raster files. Each plane of
// a layer becomes one output image, tinted through the layer's colormap
// (or the label palette for labels layers), optionally cropped, scaled
// and gamma-adjusted.
package writer

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ndev-kit/bioimg/internal/layer"
)

// Region is a crop rectangle in pixel coordinates: (X1, Y1) inclusive
// top-left, (X2, Y2) exclusive bottom-right.
type Region struct {
	X1, Y1, X2, Y2 int
}

// Options control export rendering.
type Options struct {
	// Region crops each plane before scaling. Nil exports the full
	// plane.
	Region *Region

	// Scale resizes each plane by this factor after cropping. Zero or
	// 1.0 keeps the original size.
	Scale float64

	// Gamma applies a display gamma after tinting. Zero or 1.0 keeps
	// intensities linear.
	Gamma float64
}

// WriteLayers exports every layer into dir, one file per plane, and
// returns the written paths. The output format is chosen by ext
// (".png" or ".tif"); file names derive from the layer names with a
// _pNNN plane suffix when a layer has more than one plane.
func WriteLayers(layers []layer.Layer, dir, ext string, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var written []string
	for _, l := range layers {
		paths, err := WriteLayer(l, dir, ext, opts)
		if err != nil {
			return written, err
		}
		written = append(written, paths...)
	}
	return written, nil
}

// WriteLayer exports one layer into dir and returns the written paths.
func WriteLayer(l layer.Layer, dir, ext string, opts Options) ([]string, error) {
	if l.Data == nil || len(l.Data.Planes) == 0 {
		return nil, fmt.Errorf("layer %q has no pixel data", l.Kwargs.Name)
	}
	if ext == "" {
		ext = ".png"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	stem := sanitizeName(l.Kwargs.Name)
	multi := len(l.Data.Planes) > 1

	var written []string
	for i, plane := range l.Data.Planes {
		rendered, err := renderPlane(l, plane, opts)
		if err != nil {
			return written, fmt.Errorf("layer %q plane %d: %w", l.Kwargs.Name, i, err)
		}

		name := stem + ext
		if multi {
			name = fmt.Sprintf("%s_p%03d%s", stem, i, ext)
		}
		out := filepath.Join(dir, name)

		if err := imaging.Save(rendered, out); err != nil {
			return written, fmt.Errorf("failed to save %s: %w", out, err)
		}
		written = append(written, out)
	}

	logrus.WithFields(logrus.Fields{
		"layer": l.Kwargs.Name,
		"files": len(written),
	}).Info("layer exported")
	return written, nil
}

// renderPlane tints, crops, scales and gamma-adjusts one plane.
func renderPlane(l layer.Layer, plane image.Image, opts Options) (image.Image, error) {
	var rendered image.Image
	switch {
	case l.Kwargs.RGB:
		rendered = plane
	case l.Type == layer.TypeLabels:
		rendered = renderLabels(plane)
	default:
		rendered = renderIntensity(plane, l.Kwargs.Colormap)
	}

	if opts.Region != nil {
		cropped, err := cropPlane(rendered, *opts.Region)
		if err != nil {
			return nil, err
		}
		rendered = cropped
	}

	if opts.Scale > 0 && opts.Scale != 1.0 {
		b := rendered.Bounds()
		w := int(float64(b.Dx()) * opts.Scale)
		h := int(float64(b.Dy()) * opts.Scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %g collapses plane to zero size", opts.Scale)
		}
		rendered = imaging.Resize(rendered, w, h, imaging.Lanczos)
	}

	if opts.Gamma > 0 && opts.Gamma != 1.0 {
		rendered = adjust.Gamma(rendered, opts.Gamma)
	}

	return rendered, nil
}

// cropPlane validates the region against the plane bounds and crops.
func cropPlane(img image.Image, r Region) (image.Image, error) {
	bounds := img.Bounds()
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside plane bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return imaging.Crop(img, image.Rect(r.X1, r.Y1, r.X2, r.Y2)), nil
}

// sanitizeName makes a layer name safe as a file name.
func sanitizeName(name string) string {
	if name == "" {
		return "layer"
	}
	replacer := strings.NewReplacer(
		" :: ", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		" ", "_",
	)
	return replacer.Replace(name)
}
