package mcpops

import (
	"io"
	"log/slog"
	"strings"
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

    include /config/nginx/authelia-location.conf;

    location / {
        proxy_pass $upstream_proto://$upstream_app:$upstream_port;
    }
}
`

func TestRecoverUpstream(t *testing.T) {
	u, err := RecoverUpstream(sampleConfig)
	require.NoError(t, err)
	assert.Equal(t, "myapp", u.App)
	assert.Equal(t, "8080", u.Port)
	assert.Equal(t, "http", u.Proto)
}

func TestRecoverUpstreamMissing(t *testing.T) {
	_, err := RecoverUpstream("server {}")
	require.Error(t, err)
	assert.Equal(t, core.KindMalformedConfig, core.KindOf(err))
}

func TestRecoverAuthMethod(t *testing.T) {
	assert.Equal(t, core.AuthAuthelia, RecoverAuthMethod(sampleConfig))
	assert.Equal(t, core.AuthNone, RecoverAuthMethod("server {}"))
}

func TestHasLocation(t *testing.T) {
	assert.True(t, HasLocation(sampleConfig, "/"))
	assert.False(t, HasLocation(sampleConfig, "/mcp"))
}

func TestInsertMCPLocation(t *testing.T) {
	tm, err := templateengine.New("../../templates", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer tm.Close()

	out, err := InsertMCPLocation(tm, sampleConfig, "/mcp")
	require.NoError(t, err)
	assert.Contains(t, out, "location /mcp {")
	assert.True(t, HasLocation(out, "/mcp"))
	assert.Equal(t, 2, strings.Count(out, "authelia-location.conf"),
		"the new /mcp block must repeat the auth include already present in the server block")
	assert.Equal(t, 2, strings.Count(out, `$upstream_app:$upstream_port`))

	_, err = InsertMCPLocation(tm, out, "/mcp")
	require.Error(t, err)
	assert.Equal(t, core.KindConflict, core.KindOf(err))
}

func TestInsertMCPLocationInvalidPath(t *testing.T) {
	tm, err := templateengine.New("../../templates", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer tm.Close()

	_, err = InsertMCPLocation(tm, sampleConfig, "not-a-path")
	require.Error(t, err)
	assert.Equal(t, core.KindInvalidInput, core.KindOf(err))
}
