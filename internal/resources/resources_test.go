package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

func writeFixture(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func TestListActiveAndSamples(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir,
		"alpha.subdomain.conf",
		"beta.subfolder.conf",
		"alpha.subdomain.conf.sample",
		"alpha.subdomain.conf.backup.20260101_000000_000",
		"readme.txt",
	)

	m := New(dir)

	active, err := m.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "alpha.subdomain.conf", active[0].Name)
	assert.Equal(t, "beta.subfolder.conf", active[1].Name)

	samples, err := m.ListSamples()
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, core.ClassSample, samples[0].Class)

	all, err := m.List(core.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSamplesFor(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "alpha.subdomain.conf.sample", "beta.subfolder.conf.sample")

	m := New(dir)
	samples, err := m.SamplesFor("alpha")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "alpha.subdomain.conf.sample", samples[0].Name)
}
