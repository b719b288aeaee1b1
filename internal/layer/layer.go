// Package layer models viewer-ready layers derived from decoded image
// scenes: per-channel pixel stacks plus the display metadata (name,
// scale, axis labels, units, colormap, blending) a viewer needs to
// present them.
package layer

import (
	"image"
	"strings"
)

// Layer types. Labels layers hold segmentation data and render with a
// discrete colormap; image layers hold intensity data.
const (
	TypeImage  = "image"
	TypeLabels = "labels"
)

// labelKeywords marks channel names that carry segmentation data rather
// than intensity data.
var labelKeywords = []string{"label", "mask", "segmentation", "seg", "roi"}

// Stack is the pixel payload of one layer: decoded YX(S) planes indexed
// row-major over the leading dimensions (T then Z).
type Stack struct {
	Dims   string // e.g. "TZYX", "YX", "YXS"
	Shape  []int
	Planes []image.Image
}

// Kwargs carries the display metadata attached to a layer.
type Kwargs struct {
	Name       string
	Scale      []float64
	AxisLabels []string
	Units      []string // empty string for dimensions without units
	Colormap   Colormap
	Blending   string
	RGB        bool
	Metadata   map[string]interface{}
}

// Layer couples pixel data with display metadata and a layer type,
// mirroring the (data, kwargs, type) triple a viewer consumes.
type Layer struct {
	Data   *Stack
	Kwargs Kwargs
	Type   string
}

// InferType infers the layer type from a channel name: names containing
// a label keyword become labels layers, everything else an image layer.
func InferType(channelName string) string {
	lower := strings.ToLower(channelName)
	for _, kw := range labelKeywords {
		if strings.Contains(lower, kw) {
			return TypeLabels
		}
	}
	return TypeImage
}

// ResolveType resolves the effective layer type for a channel.
// Precedence: global override, then per-channel override, then
// name-based inference.
func ResolveType(channelName, globalOverride string, channelTypes map[string]string) string {
	if globalOverride != "" {
		return globalOverride
	}
	if t, ok := channelTypes[channelName]; ok {
		return t
	}
	return InferType(channelName)
}

// BuildOptions control how Build fills in display metadata.
type BuildOptions struct {
	Name       string
	Type       string
	Scale      []float64
	AxisLabels []string
	Units      []string
	Metadata   map[string]interface{}

	// ChannelIdx and TotalChannels drive colormap and blending choice
	// for multichannel image layers.
	ChannelIdx    int
	TotalChannels int
	RGB           bool
}

// Build assembles a Layer, choosing colormap and blending for image
// layers. RGB layers get no colormap; secondary channels composite
// additively so overlapping channels mix rather than occlude.
func Build(data *Stack, opts BuildOptions) Layer {
	kwargs := Kwargs{
		Name:       opts.Name,
		Scale:      opts.Scale,
		AxisLabels: opts.AxisLabels,
		Units:      opts.Units,
		Metadata:   opts.Metadata,
		RGB:        opts.RGB,
	}

	if !opts.RGB && opts.Type == TypeImage {
		kwargs.Colormap = ChannelColormap(opts.ChannelIdx, opts.TotalChannels)
		if opts.ChannelIdx > 0 && opts.TotalChannels > 1 {
			kwargs.Blending = BlendingAdditive
		} else {
			kwargs.Blending = BlendingTranslucent
		}
	}

	layerType := opts.Type
	if opts.RGB {
		layerType = TypeImage
	}

	return Layer{Data: data, Kwargs: kwargs, Type: layerType}
}
