package fieldupdate

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/templateengine"
)

const sampleConfig = `server {
    set $upstream_app "myapp";
    set $upstream_port "8080";
    set $upstream_proto "http";

    location / {
        proxy_pass $upstream_proto://$upstream_app:$upstream_port;
    }
}
`

func newManager(t *testing.T) *templateengine.Manager {
	t.Helper()
	tm, err := templateengine.New("../../templates", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { tm.Close() })
	return tm
}

func TestApplyPort(t *testing.T) {
	out, err := Apply(newManager(t), sampleConfig, core.UpdatePort, "9090")
	require.NoError(t, err)
	assert.Contains(t, out, `set $upstream_port "9090";`)
	assert.NotContains(t, out, `"8080"`)
}

func TestApplyPortInvalid(t *testing.T) {
	_, err := Apply(newManager(t), sampleConfig, core.UpdatePort, "not-a-number")
	require.Error(t, err)
	assert.Equal(t, core.KindInvalidInput, core.KindOf(err))
}

func TestApplyUpstream(t *testing.T) {
	out, err := Apply(newManager(t), sampleConfig, core.UpdateUpstream, "otherhost")
	require.NoError(t, err)
	assert.Contains(t, out, `set $upstream_app "otherhost";`)
}

func TestApplyAppWithPort(t *testing.T) {
	out, err := Apply(newManager(t), sampleConfig, core.UpdateApp, "newhost:9999")
	require.NoError(t, err)
	assert.Contains(t, out, `set $upstream_app "newhost";`)
	assert.Contains(t, out, `set $upstream_port "9999";`)
}

func TestApplyAppWithoutPort(t *testing.T) {
	out, err := Apply(newManager(t), sampleConfig, core.UpdateApp, "newhost")
	require.NoError(t, err)
	assert.Contains(t, out, `set $upstream_app "newhost";`)
	assert.Contains(t, out, `set $upstream_port "8080";`)
}

func TestApplyNoMatchIsMalformed(t *testing.T) {
	_, err := Apply(newManager(t), "server {}", core.UpdatePort, "9090")
	require.Error(t, err)
	assert.Equal(t, core.KindMalformedConfig, core.KindOf(err))
}

func TestApplyAddMCP(t *testing.T) {
	out, err := Apply(newManager(t), sampleConfig, core.UpdateAddMCP, "/mcp")
	require.NoError(t, err)
	assert.Contains(t, out, "location /mcp {")
}
