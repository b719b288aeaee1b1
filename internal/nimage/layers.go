package nimage

import (
	"image"

	"github.com/ndev-kit/bioimg/internal/layer"
	"github.com/ndev-kit/bioimg/internal/reader"
)

// LayerOptions control how LayerData splits and classifies channels.
type LayerOptions struct {
	// LayerType overrides the layer type for every channel. Empty means
	// auto-detection from channel names. Takes precedence over
	// ChannelTypes.
	LayerType string

	// ChannelTypes overrides the layer type per channel name, e.g.
	// {"nuclei_mask": "labels"}. Ignored when LayerType is set.
	ChannelTypes map[string]string
}

// LayerData builds viewer-ready layers for the active scene.
//
// RGB scenes yield one RGB layer. Grayscale scenes are split along the
// channel dimension into one layer per channel, each named, typed
// (label channels detected by name), and carrying the scene's scale,
// axis labels and units.
func (n *NImage) LayerData(opts LayerOptions) ([]layer.Layer, error) {
	img, err := n.ensureLoaded()
	if err != nil {
		return nil, err
	}
	scene, err := n.scene()
	if err != nil {
		return nil, err
	}

	metadata, err := n.LayerMetadata()
	if err != nil {
		return nil, err
	}
	scale, err := n.LayerScale()
	if err != nil {
		return nil, err
	}
	labels, err := n.LayerAxisLabels()
	if err != nil {
		return nil, err
	}
	units, err := n.LayerUnits()
	if err != nil {
		return nil, err
	}

	if opts.LayerType != "" {
		opts.ChannelTypes = nil
	}

	if scene.RGB {
		stack := channelStack(scene, 0, labels)
		return []layer.Layer{layer.Build(stack, layer.BuildOptions{
			Name:       n.layerName(img, ""),
			Type:       layer.TypeImage,
			Scale:      scale,
			AxisLabels: labels,
			Units:      units,
			Metadata:   metadata,
			RGB:        true,
		})}, nil
	}

	names := n.channelNames(scene)
	total := scene.SizeC()

	layers := make([]layer.Layer, 0, total)
	for c := 0; c < total; c++ {
		effectiveType := layer.ResolveType(names[c], opts.LayerType, opts.ChannelTypes)
		stack := channelStack(scene, c, labels)

		layers = append(layers, layer.Build(stack, layer.BuildOptions{
			Name:          n.layerName(img, names[c]),
			Type:          effectiveType,
			Scale:         scale,
			AxisLabels:    labels,
			Units:         units,
			Metadata:      metadata,
			ChannelIdx:    c,
			TotalChannels: total,
		}))
	}
	return layers, nil
}

// channelStack flattens one channel's planes into a Stack ordered
// T-major then Z, with dims matching the layer axis labels (plus S for
// RGB scenes).
func channelStack(scene *reader.Scene, c int, axisLabels []string) *layer.Stack {
	dims := ""
	var shape []int
	for _, d := range axisLabels {
		dims += d
		shape = append(shape, scene.Shape[indexOfDim(scene.Dims, d)])
	}
	if scene.RGB {
		dims += reader.DimS
		shape = append(shape, 3)
	}

	planes := make([]image.Image, 0, scene.SizeT()*scene.SizeZ())
	for t := 0; t < scene.SizeT(); t++ {
		for z := 0; z < scene.SizeZ(); z++ {
			planes = append(planes, scene.Planes[t][c][z])
		}
	}

	return &layer.Stack{Dims: dims, Shape: shape, Planes: planes}
}

func indexOfDim(dims string, d string) int {
	for i := 0; i < len(dims); i++ {
		if string(dims[i]) == d {
			return i
		}
	}
	return -1
}
