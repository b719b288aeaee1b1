package writer

import (
	"image"
	"image/color"

	"github.com/ndev-kit/bioimg/internal/layer"
)

// renderIntensity maps a grayscale plane through a colormap, stretching
// the plane's actual intensity range to [0, 1] first so dim 16-bit data
// stays visible in 8-bit output.
func renderIntensity(plane image.Image, cm layer.Colormap) image.Image {
	bounds := plane.Bounds()
	out := image.NewNRGBA(bounds)

	lo, hi := intensityRange(plane)
	span := float64(hi - lo)
	if span == 0 {
		span = 1
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(grayAt(plane, x, y)-lo) / span
			c := cm.At(v)
			r, g, b := c.RGB255()
			out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out
}

// renderLabels colors each distinct label value with the deterministic
// label palette. Background (0) renders black.
func renderLabels(plane image.Image) image.Image {
	bounds := plane.Bounds()
	out := image.NewNRGBA(bounds)

	cache := make(map[uint32]color.NRGBA)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := grayAt(plane, x, y)
			c, ok := cache[v]
			if !ok {
				lc := layer.LabelColor(int(v))
				r, g, b := lc.RGB255()
				c = color.NRGBA{R: r, G: g, B: b, A: 255}
				cache[v] = c
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// grayAt reads the 16-bit luminance at (x, y).
func grayAt(img image.Image, x, y int) uint32 {
	switch p := img.(type) {
	case *image.Gray:
		return uint32(p.GrayAt(x, y).Y)
	case *image.Gray16:
		return uint32(p.Gray16At(x, y).Y)
	}
	r, g, b, _ := img.At(x, y).RGBA()
	// Rec. 601 luma on 16-bit components.
	return uint32(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

// intensityRange scans a plane for its minimum and maximum luminance.
func intensityRange(plane image.Image) (lo, hi uint32) {
	bounds := plane.Bounds()
	first := true
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := grayAt(plane, x, y)
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
