package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndev-kit/bioimg/internal/nimage"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show image metadata: scenes, dimensions, channels, scale",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	img, err := nimage.Open(app.opener, path, app.settings.Memory)
	if err != nil {
		return err
	}

	scenes, err := img.Scenes()
	if err != nil {
		return err
	}

	eager := nimage.DetermineInMemory(path, app.settings.Memory)
	loading := "in-memory"
	if !eager {
		loading = "deferred"
	}

	cmd.Printf("File:    %s\n", path)
	cmd.Printf("Loading: %s\n", loading)
	cmd.Printf("Scenes:  %d\n", len(scenes))

	for i, name := range scenes {
		if err := img.SetSceneIndex(i); err != nil {
			return err
		}

		labels, err := img.LayerAxisLabels()
		if err != nil {
			return err
		}
		scale, err := img.LayerScale()
		if err != nil {
			return err
		}
		units, err := img.LayerUnits()
		if err != nil {
			return err
		}

		cmd.Printf("\nScene %d: %s\n", i, name)
		cmd.Printf("  Axes:  %s\n", strings.Join(labels, " "))
		for j, dim := range labels {
			unit := units[j]
			if unit == "" {
				unit = "px"
			}
			cmd.Printf("  %s: scale %g %s\n", dim, scale[j], unit)
		}

		layers, err := img.LayerData(nimage.LayerOptions{})
		if err != nil {
			return err
		}
		cmd.Printf("  Layers:\n")
		for _, l := range layers {
			detail := l.Type
			if l.Kwargs.RGB {
				detail = "image (rgb)"
			}
			cmd.Printf("    %s  [%s]  %s planes=%d\n",
				l.Kwargs.Name, detail, shapeString(l.Data.Shape), len(l.Data.Planes))
		}
	}
	return nil
}

func shapeString(shape []int) string {
	parts := make([]string, len(shape))
	for i, s := range shape {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
