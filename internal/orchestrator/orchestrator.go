// Package orchestrator is the thin façade of spec §2's Orchestrator: it owns
// every manager in dependency order, exposes the public operation set of
// spec §6, and threads cancellation and concurrency bounding through every
// call.
package orchestrator

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/oakridge-labs/swagconfd/internal/backup"
	"github.com/oakridge-labs/swagconfd/internal/config"
	"github.com/oakridge-labs/swagconfd/internal/configops"
	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/fileops"
	"github.com/oakridge-labs/swagconfd/internal/health"
	"github.com/oakridge-labs/swagconfd/internal/metrics"
	"github.com/oakridge-labs/swagconfd/internal/templateengine"
	"github.com/oakridge-labs/swagconfd/internal/validation"
	"github.com/oakridge-labs/swagconfd/pkg/logger"
)

// defaultConcurrency bounds how many operations may be in flight against the
// shared directory at once, independent of the per-path locks beneath it.
const defaultConcurrency = 32

// Orchestrator is the single entry point the command-dispatch front end
// (out of scope per spec §1) calls into.
type Orchestrator struct {
	cfg *config.Config
	log *slog.Logger

	locks     *fileops.LockTable
	templates *templateengine.Manager
	backups   *backup.Manager
	configs   *configops.Operations
	health    *health.Monitor
	metrics   *metrics.Registry

	sem *semaphore.Weighted
}

// logKindFiles maps the LogsRequest categories of spec §3 to filenames
// under cfg.LogDir.
var logKindFiles = map[core.LogCategory]string{
	core.LogNginxError:  "nginx/error.log",
	core.LogNginxAccess: "nginx/access.log",
	core.LogFail2Ban:    "fail2ban/fail2ban.log",
	core.LogLetsEncrypt: "letsencrypt/letsencrypt.log",
	core.LogRenewal:     "letsencrypt/renewal.log",
}

// New wires every manager in the dependency order of spec §2: Validation
// (stateless, no construction needed), FileOps, TemplateManager,
// BackupManager, HealthMonitor, ResourceManager (owned by configops),
// MCPOperations (stateless, used by fieldupdate), ConfigFieldUpdaters
// (stateless), ConfigOperations, then this façade.
func New(cfg *config.Config, log *slog.Logger) (*Orchestrator, error) {
	locks := fileops.NewLockTable()

	templates, err := templateengine.New(cfg.TemplateDir, log)
	if err != nil {
		return nil, err
	}

	backups := backup.New(cfg.ConfigDir, locks)
	configs := configops.New(cfg.ConfigDir, locks, templates, backups)
	monitor := health.New(cfg.LogDir, logKindFiles)
	reg := metrics.New()

	return &Orchestrator{
		cfg:       cfg,
		log:       log,
		locks:     locks,
		templates: templates,
		backups:   backups,
		configs:   configs,
		health:    monitor,
		metrics:   reg,
		sem:       semaphore.NewWeighted(defaultConcurrency),
	}, nil
}

// Close releases every resource the orchestrator owns: the template
// watcher and (transitively, via garbage collection) the HTTP client's idle
// connections.
func (o *Orchestrator) Close() error {
	return o.templates.Close()
}

// Metrics exposes the orchestrator's prometheus registry so a long-running
// front end can scrape it.
func (o *Orchestrator) Metrics() *metrics.Registry {
	return o.metrics
}

func (o *Orchestrator) enter(ctx context.Context, op string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, core.Wrap(core.KindCancelled, op, "", err)
	}
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, core.Wrap(core.KindCancelled, op, "", err)
	}
	start := o.metrics.Start(op)
	return func() { o.sem.Release(1); start() }, nil
}

// List implements spec §6's list(filter) operation.
func (o *Orchestrator) List(ctx context.Context, filter core.ListFilter) ([]core.ConfigFile, int, error) {
	done, err := o.enter(ctx, "list")
	if err != nil {
		return nil, 0, err
	}
	defer done()
	return o.configs.List(filter)
}

// Read implements spec §6's read(name) operation.
func (o *Orchestrator) Read(ctx context.Context, name string) (string, error) {
	done, err := o.enter(ctx, "read")
	if err != nil {
		return "", err
	}
	defer done()
	return o.configs.Read(name)
}

// Create implements spec §6's create(request) operation.
func (o *Orchestrator) Create(ctx context.Context, req core.ConfigRequest) (string, string, error) {
	done, err := o.enter(ctx, "create")
	if err != nil {
		return "", "", err
	}
	defer done()
	name, backupName, err := o.configs.Create(req)
	if backupName != "" {
		o.metrics.BackupCreated()
	}
	return name, backupName, err
}

// Overwrite implements spec §6's overwrite(edit_request) operation.
func (o *Orchestrator) Overwrite(ctx context.Context, req core.EditRequest) (string, error) {
	done, err := o.enter(ctx, "overwrite")
	if err != nil {
		return "", err
	}
	defer done()
	backupName, err := o.configs.Overwrite(req)
	if backupName != "" {
		o.metrics.BackupCreated()
	}
	return backupName, err
}

// Update implements spec §6's update(update_request) operation.
func (o *Orchestrator) Update(ctx context.Context, req core.UpdateRequest) (string, bool, error) {
	done, err := o.enter(ctx, "update")
	if err != nil {
		return "", false, err
	}
	defer done()
	backupName, changed, err := o.configs.UpdateField(req)
	if backupName != "" {
		o.metrics.BackupCreated()
	}
	return backupName, changed, err
}

// Remove implements spec §6's remove(remove_request) operation.
func (o *Orchestrator) Remove(ctx context.Context, req core.RemoveRequest) (string, error) {
	done, err := o.enter(ctx, "remove")
	if err != nil {
		return "", err
	}
	defer done()
	backupName, err := o.configs.Remove(req)
	if backupName != "" {
		o.metrics.BackupCreated()
	}
	return backupName, err
}

// AddMCP implements spec §6's add_mcp(name, path, backup?) operation by
// delegating to the same update_field path add_mcp uses internally.
func (o *Orchestrator) AddMCP(ctx context.Context, name, path string, takeBackup bool) (string, error) {
	done, err := o.enter(ctx, "add_mcp")
	if err != nil {
		return "", err
	}
	defer done()
	if path == "" {
		path = "/mcp"
	}
	backupName, _, err := o.configs.UpdateField(core.UpdateRequest{
		ConfigName: name,
		Kind:       core.UpdateAddMCP,
		Value:      path,
		Backup:     takeBackup,
	})
	return backupName, err
}

// Health implements spec §6's health(request) operation.
func (o *Orchestrator) Health(ctx context.Context, req core.HealthRequest) (core.HealthResult, error) {
	done, err := o.enter(ctx, "health")
	if err != nil {
		return core.HealthResult{}, err
	}
	defer done()
	if err := validation.Struct("health", req); err != nil {
		return core.HealthResult{}, err
	}
	result, err := o.health.Probe(ctx, req)
	o.metrics.ObserveHealth(result.Success, result.ResponseTimeMS)
	return result, err
}

// Logs implements spec §6's logs(request) operation.
func (o *Orchestrator) Logs(ctx context.Context, req core.LogsRequest) ([]string, error) {
	done, err := o.enter(ctx, "logs")
	if err != nil {
		return nil, err
	}
	defer done()
	if err := validation.Struct("logs", req); err != nil {
		return nil, err
	}
	return o.health.Logs(req)
}

// BackupsList implements spec §6's backups_list() operation.
func (o *Orchestrator) BackupsList(ctx context.Context) ([]core.Backup, error) {
	done, err := o.enter(ctx, "backups_list")
	if err != nil {
		return nil, err
	}
	defer done()
	return o.backups.List()
}

// BackupsCleanup implements spec §6's backups_cleanup(retention_days)
// operation, defaulting retention_days to the environment's configured
// value when the caller passes 0.
func (o *Orchestrator) BackupsCleanup(ctx context.Context, retentionDays int) (int, error) {
	done, err := o.enter(ctx, "backups_cleanup")
	if err != nil {
		return 0, err
	}
	defer done()
	if retentionDays <= 0 {
		retentionDays = o.cfg.BackupRetentionDays
	}
	return o.backups.Cleanup(retentionDays)
}

// Defaults implements spec §6's defaults() operation, exposing the
// environment configuration's effective values to the dispatch front end.
func (o *Orchestrator) Defaults(ctx context.Context) core.Defaults {
	return core.Defaults{
		AuthMethod:      core.AuthMethod(o.cfg.DefaultAuthMethod),
		ConfigBase:      core.BaseType(o.cfg.DefaultConfigBase),
		QUICEnabled:     o.cfg.DefaultQUICEnabled,
		BackupRetention: o.cfg.BackupRetentionDays,
		HealthTimeoutS:  o.cfg.HealthTimeoutDefaultS,
		MaxFileBytes:    o.cfg.MaxFileBytes,
		TemplateNames:   templateNameStrings(),
	}
}

func templateNameStrings() []string {
	names := templateengine.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// NewOperationContext attaches a fresh operation id to ctx, the way the
// dispatch front end is expected to do before calling in (spec §6).
func NewOperationContext(ctx context.Context) context.Context {
	return logger.WithOperationID(ctx, logger.NewOperationID())
}
