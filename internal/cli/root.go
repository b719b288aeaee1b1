// Package cli implements the bioimg command line interface.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ndev-kit/bioimg/internal/plugins"
	"github.com/ndev-kit/bioimg/internal/reader"
	"github.com/ndev-kit/bioimg/internal/settings"
)

var version = "dev"

// SetVersion sets the version string shown by the version command.
func SetVersion(v string) {
	version = v
}

// app holds the wired components shared by all commands, built once in
// the root PersistentPreRunE.
var app struct {
	settings settings.Settings
	catalog  *plugins.Catalog
	registry *reader.Registry
	opener   *reader.Opener
}

var rootCmd = &cobra.Command{
	Use:   "bioimg",
	Short: "Metadata-aware microscopy image reading and conversion",
	Long: `bioimg reads microscopy image files with their metadata (scenes,
channels, physical scale) and exports viewer-ready layers. When a file
format needs a reader plugin that is not installed, bioimg tells you
which bioio plugin to install.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return err
		}
		app.settings = s

		logrus.SetLevel(s.LogLevel())
		logrus.SetOutput(os.Stderr)

		if s.Catalog.OverlayPath != "" {
			cat, err := plugins.LoadWithOverlay(s.Catalog.OverlayPath)
			if err != nil {
				return err
			}
			app.catalog = cat
		} else {
			app.catalog = plugins.Default()
		}

		app.registry = reader.DefaultRegistry()
		app.opener = reader.NewOpener(app.registry, app.catalog, reader.NewCache(0))
		app.opener.Preferred = s.Reader.PreferredReader
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("bioimg %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
