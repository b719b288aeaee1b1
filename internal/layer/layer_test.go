package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		channel string
		want    string
	}{
		{"DAPI", TypeImage},
		{"GFP", TypeImage},
		{"nuclei_mask", TypeLabels},
		{"Labels", TypeLabels},
		{"cell_segmentation", TypeLabels},
		{"ROI-1", TypeLabels},
		{"seg_ch0", TypeLabels},
		{"", TypeImage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferType(tt.channel), "channel %q", tt.channel)
	}
}

func TestResolveTypePrecedence(t *testing.T) {
	perChannel := map[string]string{"DAPI": TypeLabels}

	// Global override wins over everything.
	assert.Equal(t, TypeImage, ResolveType("DAPI", TypeImage, perChannel))
	// Per-channel override wins over inference.
	assert.Equal(t, TypeLabels, ResolveType("DAPI", "", perChannel))
	// Fallback to inference.
	assert.Equal(t, TypeImage, ResolveType("GFP", "", nil))
	assert.Equal(t, TypeLabels, ResolveType("mask", "", nil))
}

func TestChannelColormap(t *testing.T) {
	// Single channel renders gray.
	assert.Equal(t, "gray", ChannelColormap(0, 1).Name)

	// Multichannel hues are distinct and deterministic.
	a := ChannelColormap(0, 3)
	b := ChannelColormap(1, 3)
	c := ChannelColormap(2, 3)
	assert.NotEqual(t, a.End, b.End)
	assert.NotEqual(t, b.End, c.End)
	assert.Equal(t, a, ChannelColormap(0, 3))
}

func TestColormapAt(t *testing.T) {
	cm := Gray

	black := cm.At(0)
	white := cm.At(1)
	assert.InDelta(t, 0, black.R, 1e-9)
	assert.InDelta(t, 1, white.R, 1e-9)

	// Out-of-range values clamp.
	assert.Equal(t, black, cm.At(-1))
	assert.Equal(t, white, cm.At(2))
}

func TestLabelColor(t *testing.T) {
	// Background is black.
	bg := LabelColor(0)
	assert.Zero(t, bg.R)
	assert.Zero(t, bg.G)
	assert.Zero(t, bg.B)

	// Consecutive labels get well-separated, deterministic colors.
	assert.NotEqual(t, LabelColor(1), LabelColor(2))
	assert.Equal(t, LabelColor(7), LabelColor(7))
}

func TestBuildImageLayer(t *testing.T) {
	stack := &Stack{Dims: "YX", Shape: []int{4, 4}}

	l := Build(stack, BuildOptions{
		Name:          "DAPI :: img",
		Type:          TypeImage,
		ChannelIdx:    1,
		TotalChannels: 3,
	})

	assert.Equal(t, TypeImage, l.Type)
	assert.Equal(t, BlendingAdditive, l.Kwargs.Blending)
	assert.NotEmpty(t, l.Kwargs.Colormap.Name)
}

func TestBuildFirstChannelTranslucent(t *testing.T) {
	stack := &Stack{Dims: "YX", Shape: []int{4, 4}}

	l := Build(stack, BuildOptions{Type: TypeImage, ChannelIdx: 0, TotalChannels: 3})
	assert.Equal(t, BlendingTranslucent, l.Kwargs.Blending)
}

func TestBuildRGBLayer(t *testing.T) {
	stack := &Stack{Dims: "YXS", Shape: []int{4, 4, 3}}

	l := Build(stack, BuildOptions{RGB: true})
	assert.Equal(t, TypeImage, l.Type)
	assert.True(t, l.Kwargs.RGB)
	// RGB layers carry no colormap or blending.
	assert.Empty(t, l.Kwargs.Colormap.Name)
	assert.Empty(t, l.Kwargs.Blending)
}

func TestBuildLabelsLayer(t *testing.T) {
	stack := &Stack{Dims: "YX", Shape: []int{4, 4}}

	l := Build(stack, BuildOptions{Type: TypeLabels})
	assert.Equal(t, TypeLabels, l.Type)
	assert.Empty(t, l.Kwargs.Colormap.Name)
}
