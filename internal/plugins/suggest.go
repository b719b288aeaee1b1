package plugins

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FormatInstallMessage turns matched catalog entries into an instructional
// message for the user. Core entries are filtered out (they ship with the
// core distribution, so installing them again cannot help). Output is
// deterministic: entries are listed alphabetically by plugin id.
//
// The context string names what the user tried to open, typically the
// quoted file name.
func FormatInstallMessage(entries []Entry, context string) string {
	if context == "" {
		context = "this file"
	}

	if len(entries) == 0 {
		return fmt.Sprintf(
			"No bioio plugins found for %s.\nSee https://github.com/bioio-devs/bioio for available plugins.",
			context,
		)
	}

	nonCore := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Core {
			nonCore = append(nonCore, e)
		}
	}

	if len(nonCore) == 0 {
		return fmt.Sprintf(
			"The required plugins for %s should already be installed.\n"+
				"If you're still having issues, check your installation.\n"+
				"Otherwise, open an issue at https://github.com/ndev-kit/bioimg.",
			context,
		)
	}

	sort.Slice(nonCore, func(i, j int) bool { return nonCore[i].ID < nonCore[j].ID })

	var b strings.Builder
	fmt.Fprintf(&b, "To read %s, you may need to install:\n", context)
	for _, e := range nonCore {
		fmt.Fprintf(&b, "\n  %s\n  %s\n", e.ID, e.Description)
		if e.Note != "" {
			fmt.Fprintf(&b, "  Note: %s\n", e.Note)
		}
		fmt.Fprintf(&b, "\n  pip install %s\n  or: uv pip install %s\n", e.ID, e.ID)
	}
	b.WriteString("\nRestart the application after installing.")
	return b.String()
}

// SuggestForPath resolves the path's extension and formats an install
// message for whatever the catalog knows about it. For a completely
// unknown extension the message stays neutral but may carry a
// "did you mean" hint for near-miss suffixes.
func (c *Catalog) SuggestForPath(path string) string {
	entries := c.ResolveForPath(path)
	context := fmt.Sprintf("'%s'", filepath.Base(path))

	if len(entries) == 0 {
		ext := c.ResolveExtension(path)
		msg := fmt.Sprintf(
			"No bioio plugins found for extension '%s'.\nSee https://github.com/bioio-devs/bioio for available plugins.",
			ext,
		)
		if near := c.NearestExtensions(ext, 3); len(near) > 0 {
			msg += fmt.Sprintf("\nDid you mean: %s?", strings.Join(near, ", "))
		}
		return msg
	}

	return FormatInstallMessage(entries, context)
}

// Support records whether a single installed reader can open a file, and
// if not, why it declined.
type Support struct {
	Supported bool
	Err       error
}

// FeasibilityReport maps installed reader names to their Support outcome
// for one file.
type FeasibilityReport map[string]Support

// Feasibility summarizes a FeasibilityReport: which installed readers
// claim support and which reported errors.
type Feasibility struct {
	Supported        bool
	AvailableReaders []string
	Errors           map[string]error
}

// AnalyzeFeasibility folds a report into a Feasibility summary.
// AvailableReaders is sorted for reproducible output.
func AnalyzeFeasibility(report FeasibilityReport) Feasibility {
	f := Feasibility{Errors: make(map[string]error)}
	for name, support := range report {
		if support.Supported {
			f.AvailableReaders = append(f.AvailableReaders, name)
		} else if support.Err != nil {
			f.Errors[name] = support.Err
		}
	}
	sort.Strings(f.AvailableReaders)
	f.Supported = len(f.AvailableReaders) > 0
	return f
}

// MissingPluginsMessage generates the full advisory message for a file
// that could not be read, optionally informed by a feasibility report.
//
// With a report, the message distinguishes "installed readers claimed
// support but failed" from "nothing installed recognizes this file". The
// report may be nil, in which case only catalog knowledge is used.
func (c *Catalog) MissingPluginsMessage(path string, report FeasibilityReport) string {
	suggested := c.ResolveForPath(path)
	base := filepath.Base(path)

	if len(report) > 0 {
		analysis := AnalyzeFeasibility(report)
		if analysis.Supported {
			installed := make(map[string]bool, len(analysis.AvailableReaders))
			for _, name := range analysis.AvailableReaders {
				installed[name] = true
			}

			var missing []Entry
			for _, e := range suggested {
				if !installed[e.ID] {
					missing = append(missing, e)
				}
			}

			if len(missing) > 0 {
				return fmt.Sprintf(
					"Installed plugin(s) %s failed to read the file.\nTry installing:\n%s",
					strings.Join(analysis.AvailableReaders, ", "),
					FormatInstallMessage(missing, fmt.Sprintf("'%s'", base)),
				)
			}
			return fmt.Sprintf(
				"File supported by: %s\nBut the installed plugin(s) failed to read it.\nCheck the error logs for details.",
				strings.Join(analysis.AvailableReaders, ", "),
			)
		}
	}

	return c.SuggestForPath(path)
}

// EnrichUnsupported attaches install suggestions to a reader failure.
//
// The underlying error is wrapped, never replaced: errors.Is and
// errors.As continue to see the original failure, and the suggestion
// text is purely advisory. A nil err returns nil.
func (c *Catalog) EnrichUnsupported(path string, err error, report FeasibilityReport) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w\n\n%s", err, c.MissingPluginsMessage(path, report))
}
