package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

func TestConfigName(t *testing.T) {
	service, base, err := ConfigName("myapp.subdomain.conf")
	require.NoError(t, err)
	assert.Equal(t, "myapp", service)
	assert.Equal(t, core.BaseSubdomain, base)

	_, _, err = ConfigName("myapp.conf")
	assert.Error(t, err)

	_, _, err = ConfigName("myapp.subdomain.conf.sample")
	assert.Error(t, err)
}

func TestIsSampleAndBackup(t *testing.T) {
	assert.True(t, IsSample("myapp.subdomain.conf.sample"))
	assert.False(t, IsSample("myapp.subdomain.conf"))

	assert.True(t, IsBackup("myapp.subdomain.conf.backup.20250101_120000_000"))
	original, ts, ok := SplitBackupName("myapp.subdomain.conf.backup.20250101_120000_000")
	require.True(t, ok)
	assert.Equal(t, "myapp.subdomain.conf", original)
	assert.Equal(t, "20250101_120000_000", ts)
}

func TestDomain(t *testing.T) {
	d, err := Domain("Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "example.com", d)

	_, err = Domain(".example.com")
	assert.Error(t, err)

	_, err = Domain(strings.Repeat("a", 64) + ".com")
	assert.Error(t, err)

	_, err = Domain("")
	assert.Error(t, err)
}

func TestUpstreamApp(t *testing.T) {
	for _, ok := range []string{"myhost", "10.0.0.1", "[::1]", "my-host_1.local"} {
		_, err := UpstreamApp(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "bad host", "bad/host"} {
		_, err := UpstreamApp(bad)
		assert.Error(t, err, bad)
	}
}

func TestPort(t *testing.T) {
	assert.NoError(t, Port(1))
	assert.NoError(t, Port(65535))
	assert.Error(t, Port(0))
	assert.Error(t, Port(65536))
}

func TestMCPPath(t *testing.T) {
	assert.NoError(t, MCPPath("/mcp"))
	assert.Error(t, MCPPath("mcp"))
	assert.Error(t, MCPPath("/mcp/../etc"))
	assert.Error(t, MCPPath("/"+strings.Repeat("a", 101)))
}

func TestFilePathSafety(t *testing.T) {
	assert.NoError(t, FilePathSafety("myapp.subdomain.conf"))
	assert.Error(t, FilePathSafety("/etc/passwd"))
	assert.Error(t, FilePathSafety("../etc/passwd"))
	assert.Error(t, FilePathSafety(".hidden"))
	assert.Error(t, FilePathSafety("CON.conf"))
}

func TestWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	resolved, err := WithinDirectory(dir, "myapp.subdomain.conf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resolved, dir))

	_, err = WithinDirectory(dir, "../escape.conf")
	assert.Error(t, err)
}

func TestContentSafety(t *testing.T) {
	out, err := ContentSafety("hello\nworld\n", MaxConfigBytes)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", out)

	_, err = ContentSafety("bad\x00value", MaxConfigBytes)
	assert.Error(t, err)

	_, err = ContentSafety(strings.Repeat("x", int(MaxConfigBytes)+1), MaxConfigBytes)
	assert.Error(t, err)

	manyControls := strings.Repeat("\x01", 100) + strings.Repeat("a", 10)
	_, err = ContentSafety(manyControls, MaxConfigBytes)
	assert.Error(t, err)
}

func TestStructValidation(t *testing.T) {
	err := Struct("test_op", core.ConfigRequest{})
	assert.Error(t, err)

	err = Struct("test_op", core.ConfigRequest{
		ConfigName:   "a.subdomain.conf",
		ServerName:   "example.com",
		UpstreamApp:  "app",
		UpstreamPort: 8080,
	})
	assert.NoError(t, err)
}
