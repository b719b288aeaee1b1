package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndev-kit/bioimg/internal/nimage"
	"github.com/ndev-kit/bioimg/internal/settings"
	"github.com/ndev-kit/bioimg/internal/writer"
)

var (
	convertOutDir    string
	convertFormat    string
	convertScale     float64
	convertGamma     float64
	convertRegion    string
	convertLayerType string
	convertAllScenes bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Export an image's layers as PNG or TIFF files",
	Long: `Export each layer of an image (one per channel, label channels
detected by name) into an output directory. Multi-scene handling follows
the scene_handling setting unless --all-scenes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutDir, "output", "o", ".", "output directory")
	convertCmd.Flags().StringVar(&convertFormat, "format", "png", "output format: png or tif")
	convertCmd.Flags().Float64Var(&convertScale, "scale", 1.0, "resize factor applied to each plane")
	convertCmd.Flags().Float64Var(&convertGamma, "gamma", 1.0, "display gamma applied after tinting")
	convertCmd.Flags().StringVar(&convertRegion, "region", "", "crop region as x1,y1,x2,y2")
	convertCmd.Flags().StringVar(&convertLayerType, "layer-type", "", "force layer type for all channels (image or labels)")
	convertCmd.Flags().BoolVar(&convertAllScenes, "all-scenes", false, "export every scene, not just the first")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]

	opts := writer.Options{Scale: convertScale, Gamma: convertGamma}
	if convertRegion != "" {
		region, err := parseRegion(convertRegion)
		if err != nil {
			return err
		}
		opts.Region = &region
	}

	img, err := nimage.Open(app.opener, path, app.settings.Memory)
	if err != nil {
		return err
	}
	scenes, err := img.Scenes()
	if err != nil {
		return err
	}

	allScenes := convertAllScenes ||
		app.settings.Reader.SceneHandling == settings.SceneAll

	sceneCount := 1
	if allScenes {
		sceneCount = len(scenes)
	}

	layerOpts := nimage.LayerOptions{LayerType: convertLayerType}

	var total int
	for i := 0; i < sceneCount; i++ {
		if err := img.SetSceneIndex(i); err != nil {
			return err
		}
		layers, err := img.LayerData(layerOpts)
		if err != nil {
			return err
		}

		written, err := writer.WriteLayers(layers, convertOutDir, "."+strings.TrimPrefix(convertFormat, "."), opts)
		if err != nil {
			return err
		}
		total += len(written)
	}

	cmd.Printf("Wrote %d file(s) to %s\n", total, convertOutDir)
	return nil
}

// parseRegion parses "x1,y1,x2,y2".
func parseRegion(s string) (writer.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return writer.Region{}, fmt.Errorf("region must be x1,y1,x2,y2, got %q", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return writer.Region{}, fmt.Errorf("region component %q is not an integer", p)
		}
		vals[i] = v
	}
	return writer.Region{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3]}, nil
}
