package plugins

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Manager combines a catalog with the set of readers actually installed
// in this build to answer questions about one file: which plugins could
// read it, which of those are installed, and which are worth installing.
//
// The feasibility report is supplied by the caller (the reader registry
// produces one); Manager itself performs no I/O.
type Manager struct {
	catalog *Catalog
	path    string
	report  FeasibilityReport

	log *logrus.Entry
}

// NewManager creates a manager for one file path. The report may be nil
// when no reader registry is available (standalone catalog browsing).
func NewManager(catalog *Catalog, path string, report FeasibilityReport) *Manager {
	return &Manager{
		catalog: catalog,
		path:    path,
		report:  report,
		log:     logrus.WithField("component", "plugin-manager"),
	}
}

// KnownPlugins returns all catalog plugin ids in priority order.
func (m *Manager) KnownPlugins() []string {
	return m.catalog.IDs()
}

// InstalledPlugins returns the names of readers present in the
// feasibility report, i.e. the readers installed in this build.
func (m *Manager) InstalledPlugins() map[string]bool {
	installed := make(map[string]bool, len(m.report))
	for name := range m.report {
		installed[name] = true
	}
	return installed
}

// SuggestedPlugins returns ids of every plugin that claims the file's
// extension, installed or not, in catalog priority order.
func (m *Manager) SuggestedPlugins() []string {
	entries := m.catalog.ResolveForPath(m.path)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// InstallablePlugins returns ids of non-core plugins that claim the
// file's extension but are not installed. This is the set worth
// surfacing to the user.
func (m *Manager) InstallablePlugins() []string {
	installed := m.InstalledPlugins()

	var out []string
	for _, id := range m.SuggestedPlugins() {
		entry, ok := m.catalog.Get(id)
		if ok && !entry.Core && !installed[id] {
			out = append(out, id)
		}
	}
	return out
}

// PriorityList builds the ordered list of installed reader names to try
// for this file: the preferred reader first (when installed), then the
// remaining installed plugins in catalog order.
func (m *Manager) PriorityList(preferred string) []string {
	installed := m.InstalledPlugins()

	var priority []string
	if preferred != "" {
		if installed[preferred] {
			priority = append(priority, preferred)
		} else {
			m.log.WithField("reader", preferred).Debug("preferred reader not installed")
		}
	}

	for _, id := range m.catalog.IDs() {
		if installed[id] && id != preferred {
			priority = append(priority, id)
		}
	}
	return priority
}

// InstallationMessage renders the advisory message for this file, using
// the feasibility report when one was provided.
func (m *Manager) InstallationMessage() string {
	if m.path == "" {
		return ""
	}
	m.log.WithField("file", filepath.Base(m.path)).Debug("building installation message")
	return m.catalog.MissingPluginsMessage(m.path, m.report)
}
