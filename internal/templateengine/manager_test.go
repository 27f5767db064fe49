package templateengine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderSubdomain(t *testing.T) {
	m, err := New("../../templates", discardLogger())
	require.NoError(t, err)
	defer m.Close()

	rendered, err := m.Render(Subdomain, Data{
		ServiceName:      "myapp",
		TemplateRevision: Revision,
		ServerName:       "myapp.example.com",
		UpstreamApp:      "myapp",
		UpstreamPort:     8080,
		UpstreamProto:    core.ProtoHTTP,
		AuthMethod:       core.AuthAuthelia,
	})
	require.NoError(t, err)

	require.NoError(t, Validate(rendered, false, false, core.AuthAuthelia))
}

func TestRenderMCPSubdomainWithQUIC(t *testing.T) {
	m, err := New("../../templates", discardLogger())
	require.NoError(t, err)
	defer m.Close()

	rendered, err := m.Render(MCPSubdomain, Data{
		ServiceName:      "myapp",
		TemplateRevision: Revision,
		ServerName:       "myapp.example.com",
		UpstreamApp:      "myapp",
		UpstreamPort:     8080,
		UpstreamProto:    core.ProtoHTTP,
		MCPEnabled:       true,
		AuthMethod:       core.AuthNone,
		EnableQUIC:       true,
	})
	require.NoError(t, err)

	require.NoError(t, Validate(rendered, true, true, core.AuthNone))
	assert.Contains(t, rendered, "location /mcp")
	assert.Contains(t, rendered, "/.well-known/oauth-authorization-server")
	assert.Contains(t, rendered, "Alt-Svc")
}

func TestRenderMissingTemplateFails(t *testing.T) {
	m, err := New("../../templates", discardLogger())
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Render(Name("does-not-exist"), Data{})
	require.Error(t, err)
	assert.Equal(t, core.KindTemplateError, core.KindOf(err))
}

func TestValidateRejectsUnbalancedBraces(t *testing.T) {
	err := Validate("server { location / { }", false, false, core.AuthNone)
	require.Error(t, err)
	assert.Equal(t, core.KindMalformedConfig, core.KindOf(err))
}

func TestValidateRejectsMissingAuthInclude(t *testing.T) {
	rendered := "server {\nset $upstream_app \"a\";\nset $upstream_port \"1\";\nset $upstream_proto \"http\";\nproxy_pass $upstream_proto://$upstream_app:$upstream_port;\n}"
	err := Validate(rendered, false, false, core.AuthAuthelia)
	require.Error(t, err)
}
