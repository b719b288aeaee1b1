// Package nimage wraps a decoded image behind a facade that exposes
// viewer-ready layer data: scenes, physical scale, axis labels, units,
// and per-channel layers with label/RGB detection.
//
// NImage owns its underlying reader.Image exclusively and forwards to it
// rather than embedding it, adding derived accessors on top. Decoding is
// deferred for large files (see DetermineInMemory) and performed at most
// once.
package nimage

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ndev-kit/bioimg/internal/reader"
	"github.com/ndev-kit/bioimg/internal/settings"
)

// nameDelimiter separates the parts of a generated layer name.
const nameDelimiter = " :: "

// NImage is a metadata-aware handle on one image file.
type NImage struct {
	// Path is the source file, empty for images built from an
	// already-decoded reader.Image.
	Path string

	opener *reader.Opener
	memCfg settings.MemorySettings

	mu       sync.Mutex
	img      *reader.Image
	sceneIdx int

	log *logrus.Entry
}

// Open creates an NImage for a file.
//
// Small files (per cfg thresholds) are decoded immediately; larger files
// defer decoding until pixel data or scene metadata is first accessed.
// Either way, a file no installed reader recognizes fails here with an
// error wrapping reader.ErrUnsupportedFormat plus install suggestions,
// so the failure surfaces at open time rather than at first use.
func Open(opener *reader.Opener, path string, cfg settings.MemorySettings) (*NImage, error) {
	n := &NImage{
		Path:   path,
		opener: opener,
		memCfg: cfg,
		log:    logrus.WithField("component", "nimage"),
	}

	if DetermineInMemory(path, cfg) {
		img, err := opener.Open(path)
		if err != nil {
			return nil, err
		}
		n.img = img
		return n, nil
	}

	// Deferred decode still needs a fast feasibility check so that
	// unsupported files fail now, with suggestions.
	report := opener.Registry().Feasibility(path)
	supported := false
	for _, s := range report {
		if s.Supported {
			supported = true
			break
		}
	}
	if !supported {
		base := fmt.Errorf("%w: %s", reader.ErrUnsupportedFormat, path)
		return nil, opener.Catalog().EnrichUnsupported(path, base, report)
	}

	n.log.WithField("file", filepath.Base(path)).Debug("deferring decode of large file")
	return n, nil
}

// FromImage wraps an already-decoded image. Used for programmatic
// sources and in tests with synthetic readers.
func FromImage(img *reader.Image) *NImage {
	return &NImage{
		Path: img.Path,
		img:  img,
		log:  logrus.WithField("component", "nimage"),
	}
}

// ensureLoaded decodes the file if that was deferred at Open time.
func (n *NImage) ensureLoaded() (*reader.Image, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.img != nil {
		return n.img, nil
	}
	img, err := n.opener.Open(n.Path)
	if err != nil {
		return nil, err
	}
	n.img = img
	return n.img, nil
}

// Scenes returns the scene names in file order.
func (n *NImage) Scenes() ([]string, error) {
	img, err := n.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return img.SceneNames(), nil
}

// CurrentSceneIndex returns the index of the active scene.
func (n *NImage) CurrentSceneIndex() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sceneIdx
}

// CurrentScene returns the name of the active scene.
func (n *NImage) CurrentScene() (string, error) {
	img, err := n.ensureLoaded()
	if err != nil {
		return "", err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return img.Scenes[n.sceneIdx].Name, nil
}

// SetScene activates a scene by name.
func (n *NImage) SetScene(name string) error {
	img, err := n.ensureLoaded()
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range img.Scenes {
		if s.Name == name {
			n.sceneIdx = i
			return nil
		}
	}
	return fmt.Errorf("scene not found: %s (have %s)", name, strings.Join(img.SceneNames(), ", "))
}

// SetSceneIndex activates a scene by index.
func (n *NImage) SetSceneIndex(i int) error {
	img, err := n.ensureLoaded()
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if i < 0 || i >= len(img.Scenes) {
		return fmt.Errorf("scene index %d out of range (have %d)", i, len(img.Scenes))
	}
	n.sceneIdx = i
	return nil
}

// scene returns the active scene, decoding if necessary.
func (n *NImage) scene() (*reader.Scene, error) {
	img, err := n.ensureLoaded()
	if err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return &img.Scenes[n.sceneIdx], nil
}

// LayerAxisLabels returns the dimension names present in layer data:
// the scene's dims without Channel (split into separate layers) and
// Samples (folded into RGB).
func (n *NImage) LayerAxisLabels() ([]string, error) {
	scene, err := n.scene()
	if err != nil {
		return nil, err
	}

	var labels []string
	for i := 0; i < len(scene.Dims); i++ {
		d := string(scene.Dims[i])
		if d == reader.DimC || d == reader.DimS {
			continue
		}
		labels = append(labels, d)
	}
	return labels, nil
}

// LayerScale returns the physical scale for each layer dimension,
// defaulting to 1.0 where the file carries no scale metadata.
func (n *NImage) LayerScale() ([]float64, error) {
	scene, err := n.scene()
	if err != nil {
		return nil, err
	}
	labels, err := n.LayerAxisLabels()
	if err != nil {
		return nil, err
	}

	scale := make([]float64, len(labels))
	for i, dim := range labels {
		scale[i] = 1.0
		if ps, ok := scene.PixelSizes[dim]; ok && ps.Value > 0 {
			scale[i] = ps.Value
		}
	}
	return scale, nil
}

// LayerUnits returns the physical unit for each layer dimension, empty
// string where the file carries none.
func (n *NImage) LayerUnits() ([]string, error) {
	scene, err := n.scene()
	if err != nil {
		return nil, err
	}
	labels, err := n.LayerAxisLabels()
	if err != nil {
		return nil, err
	}

	units := make([]string, len(labels))
	for i, dim := range labels {
		if ps, ok := scene.PixelSizes[dim]; ok {
			units[i] = ps.Unit
		}
	}
	return units, nil
}

// LayerMetadata returns the base metadata attached to every produced
// layer: the raw reader metadata plus source and reader identity.
func (n *NImage) LayerMetadata() (map[string]interface{}, error) {
	img, err := n.ensureLoaded()
	if err != nil {
		return nil, err
	}

	meta := map[string]interface{}{
		"raw_image_metadata": img.Metadata,
		"reader":             img.Reader,
	}
	if n.Path != "" {
		meta["source_path"] = n.Path
	}
	return meta, nil
}

// channelNames returns the active scene's channel names, padded with
// "channel_<i>" placeholders when the metadata names fewer channels
// than the data holds.
func (n *NImage) channelNames(scene *reader.Scene) []string {
	count := scene.SizeC()
	names := make([]string, count)
	for i := 0; i < count; i++ {
		if i < len(scene.ChannelNames) {
			names[i] = scene.ChannelNames[i]
		} else {
			names[i] = fmt.Sprintf("channel_%d", i)
		}
	}
	return names
}

// layerName builds a display name from channel, scene and file stem,
// e.g. "DAPI :: 0 :: Image:0 :: experiment42". Scene parts appear only
// for multi-scene files or non-default scene names.
func (n *NImage) layerName(img *reader.Image, channelName string) string {
	var parts []string
	if channelName != "" {
		parts = append(parts, channelName)
	}

	scene := img.Scenes[n.sceneIdx]
	if len(img.Scenes) > 1 || scene.Name != "Image:0" {
		parts = append(parts, fmt.Sprintf("%d", n.sceneIdx), scene.Name)
	}

	stem := "unknown path"
	if n.Path != "" {
		base := filepath.Base(n.Path)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	parts = append(parts, stem)

	return strings.Join(parts, nameDelimiter)
}
