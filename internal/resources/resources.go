// Package resources provides the read-only directory enumerations spec §4.6
// calls ResourceManager: no mutation, just classification of the managed
// directory's contents.
package resources

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/validation"
)

// Manager enumerates the contents of a single managed directory.
type Manager struct {
	dir string
}

// New builds a Manager rooted at dir.
func New(dir string) *Manager {
	return &Manager{dir: dir}
}

func (m *Manager) entries() ([]core.ConfigFile, error) {
	const op = "list_directory"
	raw, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, core.Wrap(core.KindIOFailure, op, m.dir, err)
	}

	out := make([]core.ConfigFile, 0, len(raw))
	for _, e := range raw {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, core.ConfigFile{
			Name:    e.Name(),
			Path:    filepath.Join(m.dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Class:   classify(e.Name()),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func classify(name string) core.Classification {
	switch {
	case validation.IsBackup(name):
		return core.ClassBackup
	case validation.IsSample(name):
		return core.ClassSample
	default:
		if _, _, err := validation.ConfigName(name); err == nil {
			return core.ClassActive
		}
		return core.ClassOther
	}
}

// ListActive returns every file matching the active-config name grammar.
func (m *Manager) ListActive() ([]core.ConfigFile, error) {
	all, err := m.entries()
	if err != nil {
		return nil, err
	}
	var out []core.ConfigFile
	for _, f := range all {
		if f.Class == core.ClassActive {
			out = append(out, f)
		}
	}
	return out, nil
}

// ListSamples returns every file ending in .sample.
func (m *Manager) ListSamples() ([]core.ConfigFile, error) {
	all, err := m.entries()
	if err != nil {
		return nil, err
	}
	var out []core.ConfigFile
	for _, f := range all {
		if f.Class == core.ClassSample {
			out = append(out, f)
		}
	}
	return out, nil
}

// SamplesFor filters ListSamples by a service-name prefix.
func (m *Manager) SamplesFor(service string) ([]core.ConfigFile, error) {
	samples, err := m.ListSamples()
	if err != nil {
		return nil, err
	}
	var out []core.ConfigFile
	for _, f := range samples {
		if strings.HasPrefix(f.Name, service) {
			out = append(out, f)
		}
	}
	return out, nil
}

// List returns every file, classified, for filter ∈ {all, active, samples}
// (spec §4.9's list operation).
func (m *Manager) List(filter core.ListFilter) ([]core.ConfigFile, error) {
	switch filter {
	case core.FilterActive:
		return m.ListActive()
	case core.FilterSamples:
		return m.ListSamples()
	default:
		return m.entries()
	}
}
