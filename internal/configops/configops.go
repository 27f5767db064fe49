// Package configops implements the whole-file CRUD facade of spec §4.9:
// list, read, create (from template), overwrite, update_field, and remove,
// each executed under the target path's lock and backed by FileOps for the
// actual mutation.
package configops

import (
	"os"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/backup"
	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/fieldupdate"
	"github.com/oakridge-labs/swagconfd/internal/fileops"
	"github.com/oakridge-labs/swagconfd/internal/resources"
	"github.com/oakridge-labs/swagconfd/internal/templateengine"
	"github.com/oakridge-labs/swagconfd/internal/validation"
)

// Operations wires together the managers the spec lists as ConfigOperations'
// dependencies: TemplateManager, Validation (used directly, no struct
// field needed), BackupManager, FileOps, and ConfigFieldUpdaters.
type Operations struct {
	dir       string
	locks     *fileops.LockTable
	templates *templateengine.Manager
	backups   *backup.Manager
	resources *resources.Manager
}

// New builds an Operations facade rooted at dir, sharing one lock table
// with BackupManager so a config write and its backup serialize correctly.
func New(dir string, locks *fileops.LockTable, templates *templateengine.Manager, backups *backup.Manager) *Operations {
	return &Operations{
		dir:       dir,
		locks:     locks,
		templates: templates,
		backups:   backups,
		resources: resources.New(dir),
	}
}

// List delegates to ResourceManager and returns a deterministic
// lexicographic-case-insensitive order plus a count.
func (o *Operations) List(filter core.ListFilter) ([]core.ConfigFile, int, error) {
	files, err := o.resources.List(filter)
	if err != nil {
		return nil, 0, err
	}
	return files, len(files), nil
}

// Read validates name, resolves it under the directory (anti-traversal),
// and reads its content under a 2 MiB cap.
func (o *Operations) Read(name string) (string, error) {
	path, err := validation.WithinDirectory(o.dir, name)
	if err != nil {
		return "", err
	}

	unlock := o.locks.Lock(path)
	defer unlock()

	content, err := fileops.ReadCapped(path, validation.MaxConfigBytes)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Create validates req, derives the base type and service name from
// config_name, renders the mcp-<base> or <base> template, structurally
// checks the result, takes a backup if the target already exists, and
// writes atomically. The prospective path is locked before the existence
// check so two concurrent creates of the same name cannot both see "absent"
// and both skip the backup.
func (o *Operations) Create(req core.ConfigRequest) (createdName string, backupName string, err error) {
	const op = "config_create"

	req = applyCreateDefaults(req)
	if err := validation.Struct(op, req); err != nil {
		return "", "", err
	}

	service, base, err := validation.ConfigName(req.ConfigName)
	if err != nil {
		return "", "", err
	}
	if err := validation.ConfigRequest(req.ConfigName, req.ServerName, req.UpstreamApp, req.UpstreamPort); err != nil {
		return "", "", err
	}

	path, err := validation.WithinDirectory(o.dir, req.ConfigName)
	if err != nil {
		return "", "", err
	}

	unlock := o.locks.Lock(path)
	defer unlock()

	rendered, err := o.render(service, base, req)
	if err != nil {
		return "", "", err
	}

	existed := false
	if _, statErr := os.Stat(path); statErr == nil {
		existed = true
	}

	if existed {
		b, berr := o.backups.Create(req.ConfigName)
		if berr != nil {
			return "", "", berr
		}
		backupName = b.Name
	}

	if err := fileops.WriteAtomic(path, []byte(rendered), 0o644); err != nil {
		return "", "", err
	}

	return req.ConfigName, backupName, nil
}

func (o *Operations) render(service string, base core.BaseType, req core.ConfigRequest) (string, error) {
	const op = "config_create"

	name := templateNameFor(base, req.MCPEnabled)
	data := templateengine.Data{
		ServiceName:      service,
		TemplateRevision: templateengine.Revision,
		ServerName:       req.ServerName,
		UpstreamApp:      req.UpstreamApp,
		UpstreamPort:     req.UpstreamPort,
		UpstreamProto:    req.UpstreamProto,
		MCPEnabled:       req.MCPEnabled,
		AuthMethod:       req.AuthMethod,
		EnableQUIC:       req.EnableQUIC,
	}

	rendered, err := o.templates.Render(name, data)
	if err != nil {
		return "", err
	}
	if err := templateengine.Validate(rendered, req.MCPEnabled, req.EnableQUIC, req.AuthMethod); err != nil {
		return "", core.Wrap(core.KindMalformedConfig, op, req.ConfigName, err)
	}
	return rendered, nil
}

func templateNameFor(base core.BaseType, mcpEnabled bool) templateengine.Name {
	if mcpEnabled {
		if base == core.BaseSubfolder {
			return templateengine.MCPSubfolder
		}
		return templateengine.MCPSubdomain
	}
	if base == core.BaseSubfolder {
		return templateengine.Subfolder
	}
	return templateengine.Subdomain
}

func applyCreateDefaults(req core.ConfigRequest) core.ConfigRequest {
	if req.UpstreamProto == "" {
		req.UpstreamProto = core.ProtoHTTP
	}
	if req.AuthMethod == "" {
		req.AuthMethod = core.AuthAuthelia
	}
	return req
}

// Overwrite validates req's body via content-safety, takes a backup if
// asked, structurally checks the supplied body (recovering its mcp/quic/
// auth posture from its own directives so a hand-edited body is checked
// against what it claims to be), and writes atomically.
func (o *Operations) Overwrite(req core.EditRequest) (backupName string, err error) {
	const op = "config_overwrite"
	if err := validation.Struct(op, req); err != nil {
		return "", err
	}

	path, err := validation.WithinDirectory(o.dir, req.ConfigName)
	if err != nil {
		return "", err
	}

	safe, err := validation.ContentSafety(req.Content, validation.MaxConfigBytes)
	if err != nil {
		return "", err
	}

	if err := validateAsIs(op, safe, mcpEnabledPosture(safe)); err != nil {
		return "", err
	}

	unlock := o.locks.Lock(path)
	defer unlock()

	if req.Backup {
		if _, statErr := os.Stat(path); statErr == nil {
			b, berr := o.backups.Create(req.ConfigName)
			if berr != nil {
				return "", berr
			}
			backupName = b.Name
		}
	}

	if err := fileops.WriteAtomic(path, []byte(safe), 0o644); err != nil {
		return "", err
	}
	return backupName, nil
}

// mcpEnabledPosture reports whether content already carries the full
// create-time MCP posture spec §4.3 requires of a mcp_enabled config: a
// /mcp location plus the OAuth discovery endpoint. A plain add_mcp splice
// only adds the former (mcpops never renders the discovery endpoint, which
// belongs to the mcp-<base> templates' own server-block boilerplate), so
// this is deliberately stricter than a bare "location /mcp" search: it is
// what distinguishes a config created mcp_enabled from one that merely had
// an MCP location spliced into it after the fact.
func mcpEnabledPosture(content string) bool {
	return strings.Contains(content, "/.well-known/oauth-authorization-server")
}

// validateAsIs structurally checks content, trusting mcpEnabled (the
// caller's own determination of the config's MCP posture, not inferred from
// content the caller may have just mutated) and inferring only the
// QUIC/auth posture from content itself, since those are untouched by a
// narrow field update.
func validateAsIs(op, content string, mcpEnabled bool) error {
	enableQUIC := strings.Contains(content, "listen 443 quic")
	authMethod := core.AuthNone
	for marker, method := range map[string]core.AuthMethod{
		"authelia-location.conf":  core.AuthAuthelia,
		"authentik-location.conf": core.AuthAuthentik,
		"ldap-location.conf":      core.AuthLDAP,
		"tinyauth-location.conf":  core.AuthTinyAuth,
	} {
		if strings.Contains(content, marker) {
			authMethod = method
			break
		}
	}
	if authMethod == core.AuthNone && strings.Contains(content, "auth_basic") {
		authMethod = core.AuthBasic
	}
	if err := templateengine.Validate(content, mcpEnabled, enableQUIC, authMethod); err != nil {
		return core.Wrap(core.KindMalformedConfig, op, "", err)
	}
	return nil
}

// UpdateField delegates to ConfigFieldUpdaters, re-reading the current
// content, applying the narrow transform, and writing the result back
// atomically with an optional backup.
func (o *Operations) UpdateField(req core.UpdateRequest) (backupName string, changed bool, err error) {
	const op = "config_update_field"
	if err := validation.Struct(op, req); err != nil {
		return "", false, err
	}

	path, err := validation.WithinDirectory(o.dir, req.ConfigName)
	if err != nil {
		return "", false, err
	}

	unlock := o.locks.Lock(path)
	defer unlock()

	current, err := fileops.ReadCapped(path, validation.MaxConfigBytes)
	if err != nil {
		return "", false, err
	}

	next, err := fieldupdate.Apply(o.templates, string(current), req.Kind, req.Value)
	if err != nil {
		return "", false, err
	}

	if next == string(current) {
		return "", false, nil
	}

	if err := validateAsIs(op, next, mcpEnabledPosture(string(current))); err != nil {
		return "", false, err
	}

	if req.Backup {
		b, berr := o.backups.Create(req.ConfigName)
		if berr != nil {
			return "", false, berr
		}
		backupName = b.Name
	}

	if err := fileops.WriteAtomic(path, []byte(next), 0o644); err != nil {
		return "", false, err
	}
	return backupName, true, nil
}

// Remove deletes an active config, taking a backup first if asked. A
// missing file is NotFound.
func (o *Operations) Remove(req core.RemoveRequest) (backupName string, err error) {
	const op = "config_remove"
	if err := validation.Struct(op, req); err != nil {
		return "", err
	}

	path, err := validation.WithinDirectory(o.dir, req.ConfigName)
	if err != nil {
		return "", err
	}

	unlock := o.locks.Lock(path)
	defer unlock()

	if _, statErr := os.Stat(path); statErr != nil {
		if os.IsNotExist(statErr) {
			return "", core.NewTarget(core.KindNotFound, op, req.ConfigName, "config does not exist")
		}
		return "", core.Wrap(core.KindIOFailure, op, path, statErr)
	}

	if req.Backup {
		b, berr := o.backups.Create(req.ConfigName)
		if berr != nil {
			return "", berr
		}
		backupName = b.Name
	}

	if err := fileops.Remove(path); err != nil {
		return "", err
	}
	return backupName, nil
}
