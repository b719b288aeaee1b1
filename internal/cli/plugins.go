package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndev-kit/bioimg/internal/plugins"
)

var scenesCmd = &cobra.Command{
	Use:   "scenes <file>",
	Short: "List the scenes in a multi-position image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := app.opener.Open(args[0])
		if err != nil {
			return err
		}
		for i, name := range img.SceneNames() {
			cmd.Printf("%d\t%s\n", i, name)
		}
		return nil
	},
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List known reader plugins and their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range app.catalog.IDs() {
			entry, _ := app.catalog.Get(id)

			var marks []string
			if entry.Core {
				marks = append(marks, "core")
			}
			if app.registry.Has(id) {
				marks = append(marks, "installed")
			}
			status := ""
			if len(marks) > 0 {
				status = " [" + strings.Join(marks, ", ") + "]"
			}

			cmd.Printf("%s%s\n", id, status)
			cmd.Printf("  %s\n", entry.Description)
			cmd.Printf("  extensions: %s\n", strings.Join(entry.Extensions, ", "))
			if entry.Note != "" {
				cmd.Printf("  note: %s\n", entry.Note)
			}
		}
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <file>",
	Short: "Show which plugins could read a file and how to install them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		report := app.registry.Feasibility(path)
		manager := plugins.NewManager(app.catalog, path, report)

		if installable := manager.InstallablePlugins(); len(installable) > 0 {
			cmd.Printf("Installable plugins: %s\n\n", strings.Join(installable, ", "))
		}
		cmd.Println(manager.InstallationMessage())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenesCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(suggestCmd)
}
