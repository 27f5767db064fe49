package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/fileops"
)

func newTestManager(t *testing.T, now time.Time) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m := New(dir, fileops.NewLockTable())
	m.now = func() time.Time { return now }
	return m, dir
}

func TestCreateAndList(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	m, dir := newTestManager(t, now)

	configPath := filepath.Join(dir, "myapp.subdomain.conf")
	require.NoError(t, os.WriteFile(configPath, []byte("original content"), 0o644))

	b, err := m.Create("myapp.subdomain.conf")
	require.NoError(t, err)
	assert.Equal(t, "myapp.subdomain.conf", b.OriginalName)
	assert.Equal(t, int64(len("original content")), b.Size)
	assert.Contains(t, b.Name, ".backup.20260102_150405")

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, b.Name, backups[0].Name)
}

func TestCreateMissingOriginal(t *testing.T) {
	m, _ := newTestManager(t, time.Now())
	_, err := m.Create("missing.subdomain.conf")
	require.Error(t, err)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestCleanupRespectsRetention(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	m, dir := newTestManager(t, now)

	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-5 * 24 * time.Hour)

	writeBackupFile(t, dir, "svc.subdomain.conf", old)
	writeBackupFile(t, dir, "svc.subdomain.conf", recent)

	removed, err := m.Cleanup(30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.True(t, backups[0].Timestamp.After(now.Add(-30*24*time.Hour)))
}

func writeBackupFile(t *testing.T, dir, original string, ts time.Time) {
	t.Helper()
	stamp := normalizeStamp(ts.Format(timeFormat))
	name := original + ".backup." + stamp
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("old content"), 0o644))
}
