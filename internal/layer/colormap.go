package layer

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Blending modes for compositing image layers.
const (
	BlendingAdditive    = "additive"
	BlendingTranslucent = "translucent"
)

// Colormap is a black-to-color intensity ramp used to tint a grayscale
// channel for display.
type Colormap struct {
	Name string
	End  colorful.Color
}

// At returns the ramp color for a normalized intensity in [0, 1].
// Values outside the range are clamped.
func (c Colormap) At(v float64) colorful.Color {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	black := colorful.Color{}
	return black.BlendRgb(c.End, v)
}

// Gray is the single-channel default colormap.
var Gray = Colormap{Name: "gray", End: colorful.Color{R: 1, G: 1, B: 1}}

// ChannelColormap picks the colormap for channel idx of total channels.
//
// A lone channel renders gray. Multichannel images get evenly spaced
// hues around the color wheel at full saturation, so channels stay
// visually separable when composited additively.
func ChannelColormap(idx, total int) Colormap {
	if total <= 1 {
		return Gray
	}
	if idx < 0 {
		idx = 0
	}

	hue := float64(idx%total) * 360.0 / float64(total)
	return Colormap{
		Name: fmt.Sprintf("hue-%03.0f", hue),
		End:  colorful.Hsv(hue, 1, 1),
	}
}
