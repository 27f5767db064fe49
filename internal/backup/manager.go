// Package backup implements the timestamped copy-before-mutate lifecycle of
// spec §5: naming, listing, and age-based retention of ORIGINAL.backup.*
// files sitting alongside the active configs they were taken from.
package backup

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/fileops"
	"github.com/oakridge-labs/swagconfd/internal/validation"
)

// timeFormat is the backup suffix layout: YYYYMMDD_HHMMSS_mmm (UTC,
// millisecond precision so two backups taken in the same second still sort
// and name uniquely).
const timeFormat = "20060102_150405.000"

// Manager creates, lists, and prunes backups under a single config
// directory.
type Manager struct {
	dir   string
	locks *fileops.LockTable
	now   func() time.Time
}

// New builds a Manager rooted at dir, sharing locks with the rest of the
// configuration pipeline: Create runs under the config path lock its caller
// holds, and Cleanup locks each backup path it removes.
func New(dir string, locks *fileops.LockTable) *Manager {
	return &Manager{dir: dir, locks: locks, now: time.Now}
}

// Create copies originalName's current content into a new backup file named
// originalName + ".backup." + timestamp, bumping the millisecond timestamp
// on collision so backups of the same file never overwrite one another.
// Create does not take originalName's path lock itself: every mutating
// operation in configops already holds that lock when it calls Create, and
// LockTable locks are not reentrant.
func (m *Manager) Create(originalName string) (core.Backup, error) {
	const op = "backup_create"

	srcPath, err := validation.WithinDirectory(m.dir, originalName)
	if err != nil {
		return core.Backup{}, err
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Backup{}, core.NewTarget(core.KindNotFound, op, originalName, "config does not exist")
		}
		return core.Backup{}, core.Wrap(core.KindIOFailure, op, originalName, err)
	}
	content, err := fileops.ReadCapped(srcPath, info.Size()+1)
	if err != nil {
		return core.Backup{}, err
	}

	ts := m.now().UTC()
	for attempt := 0; ; attempt++ {
		stamp := ts.Add(time.Duration(attempt) * time.Millisecond).Format(timeFormat)
		stamp = normalizeStamp(stamp)
		name := originalName + ".backup." + stamp
		dstPath := filepath.Join(m.dir, name)
		if _, err := os.Stat(dstPath); err == nil {
			continue
		}
		if err := fileops.WriteAtomic(dstPath, content, info.Mode()); err != nil {
			return core.Backup{}, err
		}
		return core.Backup{
			Name:         name,
			OriginalName: originalName,
			Path:         dstPath,
			Timestamp:    ts.Add(time.Duration(attempt) * time.Millisecond),
			Size:         int64(len(content)),
		}, nil
	}
}

// normalizeStamp converts Go's ".000" millisecond layout output
// (20060102_150405.000 -> "20060102_150405.123") into the spec's
// underscore-delimited grammar "20060102_150405_123".
func normalizeStamp(formatted string) string {
	// formatted looks like "20060102_150405.123"; swap the dot for an
	// underscore to match ORIGINAL.backup.YYYYMMDD_HHMMSS_mmm.
	out := make([]byte, 0, len(formatted))
	for i := 0; i < len(formatted); i++ {
		if formatted[i] == '.' {
			out = append(out, '_')
			continue
		}
		out = append(out, formatted[i])
	}
	return string(out)
}

// List returns every backup in the directory, newest first.
func (m *Manager) List() ([]core.Backup, error) {
	const op = "backup_list"
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, core.Wrap(core.KindIOFailure, op, m.dir, err)
	}

	var out []core.Backup
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		original, stamp, ok := validation.SplitBackupName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		ts, ok := parseStamp(stamp)
		if !ok {
			continue
		}
		out = append(out, core.Backup{
			Name:         e.Name(),
			OriginalName: original,
			Path:         filepath.Join(m.dir, e.Name()),
			Timestamp:    ts,
			Size:         info.Size(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// ForService returns backups whose OriginalName matches configName, newest
// first.
func (m *Manager) ForService(configName string) ([]core.Backup, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	var out []core.Backup
	for _, b := range all {
		if b.OriginalName == configName {
			out = append(out, b)
		}
	}
	return out, nil
}

// Cleanup removes backups older than retentionDays, returning the count
// removed. A retentionDays of 0 or less is rejected rather than silently
// deleting everything.
func (m *Manager) Cleanup(retentionDays int) (int, error) {
	const op = "backup_cleanup"
	if retentionDays <= 0 {
		return 0, core.NewField(op, "retention_days", "must be > 0")
	}

	all, err := m.List()
	if err != nil {
		return 0, err
	}
	cutoff := m.now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	removed := 0
	for _, b := range all {
		if b.Timestamp.Before(cutoff) {
			unlock := m.locks.Lock(b.Path)
			if err := fileops.Remove(b.Path); err != nil && core.KindOf(err) != core.KindNotFound {
				unlock()
				return removed, err
			}
			unlock()
			removed++
		}
	}
	return removed, nil
}

func parseStamp(stamp string) (time.Time, bool) {
	if len(stamp) != len("20060102_150405_000") {
		return time.Time{}, false
	}
	dotted := stamp[:len(stamp)-4] + "." + stamp[len(stamp)-3:]
	t, err := time.Parse(timeFormat, dotted)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
