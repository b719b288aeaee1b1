package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ndev-kit/bioimg/internal/nimage"
	"github.com/ndev-kit/bioimg/internal/writer"
)

var (
	watchOutDir string
	watchFormat string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and convert images as they appear",
	Long: `Watch a directory for new image files and export their layers
automatically. Files with extensions no installed reader claims are
skipped with an install suggestion logged once.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutDir, "output", "o", ".", "output directory")
	watchCmd.Flags().StringVar(&watchFormat, "format", "png", "output format: png or tif")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log := logrus.WithField("component", "watch")
	log.WithField("dir", dir).Info("watching for new images")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	suggested := make(map[string]bool)

	for {
		select {
		case <-stop:
			log.Info("stopping")
			return nil

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			handleWatchedFile(event.Name, suggested, log)
		}
	}
}

func handleWatchedFile(path string, suggested map[string]bool, log *logrus.Entry) {
	// Only consider files whose extension the catalog knows.
	if len(app.catalog.ResolveForPath(path)) == 0 {
		return
	}

	report := app.registry.Feasibility(path)
	supported := false
	for _, s := range report {
		if s.Supported {
			supported = true
			break
		}
	}
	if !supported {
		ext := app.catalog.ResolveExtension(path)
		if !suggested[ext] {
			suggested[ext] = true
			log.Warnf("cannot read %s:\n%s", path, app.catalog.MissingPluginsMessage(path, report))
		}
		return
	}

	img, err := nimage.Open(app.opener, path, app.settings.Memory)
	if err != nil {
		log.WithError(err).WithField("file", path).Warn("open failed")
		return
	}
	layers, err := img.LayerData(nimage.LayerOptions{})
	if err != nil {
		log.WithError(err).WithField("file", path).Warn("layer build failed")
		return
	}

	written, err := writer.WriteLayers(layers, watchOutDir, "."+strings.TrimPrefix(watchFormat, "."), writer.Options{})
	if err != nil {
		log.WithError(err).WithField("file", path).Warn("export failed")
		return
	}
	log.WithFields(logrus.Fields{"file": path, "written": len(written)}).Info("converted")
}
