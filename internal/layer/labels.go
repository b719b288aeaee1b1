package layer

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// goldenAngle spaces consecutive label hues far apart so neighboring
// label ids stay distinguishable.
const goldenAngle = 137.50776405003785

// LabelColor returns the display color for a label value. Label 0 is
// background and renders black; positive labels walk the color wheel by
// the golden angle, giving a deterministic palette of well-separated
// hues.
func LabelColor(v int) colorful.Color {
	if v <= 0 {
		return colorful.Color{}
	}
	hue := float64(v) * goldenAngle
	hue -= 360 * float64(int(hue/360))
	return colorful.Hsv(hue, 0.75, 1)
}
