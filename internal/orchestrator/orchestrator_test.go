package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-labs/swagconfd/internal/config"
	"github.com/oakridge-labs/swagconfd/internal/core"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfg := &config.Config{
		ConfigDir:             t.TempDir(),
		TemplateDir:           "../../templates",
		LogDir:                t.TempDir(),
		DefaultAuthMethod:     "authelia",
		DefaultConfigBase:     "subdomain",
		BackupRetentionDays:   30,
		HealthTimeoutDefaultS: 10,
		MaxFileBytes:          2 << 20,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	o, err := New(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { o.Close() })
	return o
}

func TestOrchestratorCreateReadUpdateRemove(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := NewOperationContext(context.Background())

	name, backupName, err := o.Create(ctx, core.ConfigRequest{
		ConfigName:   "svc.subdomain.conf",
		ServerName:   "svc.example.com",
		UpstreamApp:  "svc",
		UpstreamPort: 8080,
	})
	require.NoError(t, err)
	assert.Equal(t, "svc.subdomain.conf", name)
	assert.Empty(t, backupName)

	content, err := o.Read(ctx, "svc.subdomain.conf")
	require.NoError(t, err)
	assert.Contains(t, content, "svc")

	files, count, err := o.List(ctx, core.FilterActive)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, files, 1)

	updBackup, changed, err := o.Update(ctx, core.UpdateRequest{
		ConfigName: "svc.subdomain.conf",
		Kind:       core.UpdatePort,
		Value:      "9191",
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, updBackup)

	removeBackup, err := o.Remove(ctx, core.RemoveRequest{ConfigName: "svc.subdomain.conf"})
	require.NoError(t, err)
	assert.Empty(t, removeBackup)

	_, _, err = o.List(ctx, core.FilterActive)
	require.NoError(t, err)
}

func TestOrchestratorAddMCPDefaultsPath(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := NewOperationContext(context.Background())

	_, _, err := o.Create(ctx, core.ConfigRequest{
		ConfigName:   "svc.subdomain.conf",
		ServerName:   "svc.example.com",
		UpstreamApp:  "svc",
		UpstreamPort: 8080,
	})
	require.NoError(t, err)

	_, err = o.AddMCP(ctx, "svc.subdomain.conf", "", false)
	require.NoError(t, err)

	content, err := o.Read(ctx, "svc.subdomain.conf")
	require.NoError(t, err)
	assert.Contains(t, content, "location /mcp {")
}

func TestOrchestratorRejectsCancelledContext(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := o.List(ctx, core.FilterAll)
	require.Error(t, err)
	assert.Equal(t, core.KindCancelled, core.KindOf(err))
}

func TestOrchestratorDefaults(t *testing.T) {
	o := newTestOrchestrator(t)
	d := o.Defaults(context.Background())
	assert.Equal(t, core.AuthAuthelia, d.AuthMethod)
	assert.Equal(t, core.BaseSubdomain, d.ConfigBase)
	assert.NotEmpty(t, d.TemplateNames)
}

func TestOrchestratorBackupsCleanupDefaultsRetention(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	n, err := o.BackupsCleanup(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOrchestratorHealthRejectsCancelledContext(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Health(ctx, core.HealthRequest{
		Domain:         "example.invalid",
		TimeoutSeconds: 5,
	})
	require.Error(t, err)
	assert.Equal(t, core.KindCancelled, core.KindOf(err))
}

func TestOrchestratorLogsUnrecognizedKind(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.Logs(context.Background(), core.LogsRequest{Kind: "bogus", Lines: 5})
	require.Error(t, err)
}
