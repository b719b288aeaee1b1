package nimage

import (
	"os"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"

	"github.com/ndev-kit/bioimg/internal/settings"
)

// DetermineInMemory decides whether a file should be decoded eagerly or
// deferred until its pixel data is first needed.
//
// A file loads eagerly when it is within the configured byte cap and
// would occupy less than the configured share of currently available
// RAM. Both thresholds come from settings; see settings.MemorySettings.
// An empty path (in-memory source) or an unstattable file defaults to
// eager, since there is nothing to defer.
func DetermineInMemory(path string, cfg settings.MemorySettings) bool {
	if path == "" {
		return true
	}

	stat, err := os.Stat(path)
	if err != nil {
		return true
	}
	size := stat.Size()

	vm, err := mem.VirtualMemory()
	if err != nil {
		logrus.WithError(err).Debug("cannot read available memory, loading eagerly")
		return size <= cfg.MaxInMemBytes
	}

	return size <= cfg.MaxInMemBytes &&
		float64(size) < cfg.MaxInMemPercent*float64(vm.Available)
}
