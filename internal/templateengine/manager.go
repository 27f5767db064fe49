// Package templateengine renders the named nginx config templates of spec
// §4.3 with a sandboxed text/template engine: no filesystem access from
// inside a template, no arbitrary code execution, and an LRU parse cache
// invalidated on template-directory changes.
package templateengine

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

// Name enumerates the templates the manager knows how to render (spec
// §4.3).
type Name string

const (
	Subdomain       Name = "subdomain"
	Subfolder       Name = "subfolder"
	MCPSubdomain    Name = "mcp-subdomain"
	MCPSubfolder    Name = "mcp-subfolder"
	MCPLocationBlock Name = "mcp_location_block"
)

// Revision is stamped into every render as the template_revision variable so
// generated configs can be traced back to the template set that produced
// them.
const Revision = "swagconfd-templates-v1"

// Data is the variable set available inside a rendered template, matching
// the fields of core.ConfigRequest plus the derived service name.
type Data struct {
	ServiceName      string
	TemplateRevision string
	ServerName       string
	UpstreamApp      string
	UpstreamPort     int
	UpstreamProto    core.UpstreamProto
	MCPEnabled       bool
	MCPPath          string
	AuthMethod       core.AuthMethod
	EnableQUIC       bool
}

// Manager parses templates from a directory, caches the parsed result, and
// re-parses on change (signaled by fsnotify) or cache eviction.
type Manager struct {
	dir    string
	cache  *lru.Cache[Name, *template.Template]
	log    *slog.Logger
	watch  *fsnotify.Watcher
	cancel context.CancelFunc
}

// New builds a Manager rooted at dir with an LRU cache sized for the fixed
// set of named templates plus headroom for ad hoc partials.
func New(dir string, log *slog.Logger) (*Manager, error) {
	cache, err := lru.New[Name, *template.Template](32)
	if err != nil {
		return nil, core.Wrap(core.KindIOFailure, "templates_new", dir, err)
	}
	m := &Manager{dir: dir, cache: cache, log: log}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("template watcher unavailable, cache will not auto-invalidate", "error", err)
		return m, nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		log.Warn("template watcher could not watch directory", "dir", dir, "error", err)
		return m, nil
	}
	m.watch = watcher

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.watchLoop(ctx)

	return m, nil
}

func (m *Manager) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-m.watch.Events:
			if !ok {
				return
			}
			m.log.Info("template directory changed, invalidating cache", "event", ev.String())
			m.cache.Purge()
		case err, ok := <-m.watch.Errors:
			if !ok {
				return
			}
			m.log.Warn("template watcher error", "error", err)
		}
	}
}

// Close stops the background watcher.
func (m *Manager) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.watch != nil {
		return m.watch.Close()
	}
	return nil
}

// Names lists the templates the manager knows about (used by Orchestrator's
// Defaults operation).
func Names() []Name {
	return []Name{Subdomain, Subfolder, MCPSubdomain, MCPSubfolder, MCPLocationBlock}
}

func (m *Manager) load(name Name) (*template.Template, error) {
	const op = "template_load"
	if tpl, ok := m.cache.Get(name); ok {
		return tpl, nil
	}

	path := filepath.Join(m.dir, string(name)+".tmpl")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewTarget(core.KindTemplateError, op, string(name), "template file does not exist")
		}
		return nil, core.Wrap(core.KindIOFailure, op, path, err)
	}

	// text/template, not html/template: nginx directive syntax must pass
	// through unescaped. Option("missingkey=error") makes an undefined
	// variable a render error rather than silently emitting "<no value>".
	tpl, err := template.New(string(name)).Option("missingkey=error").Funcs(sandboxFuncs).Parse(string(raw))
	if err != nil {
		return nil, core.NewTarget(core.KindTemplateError, op, string(name), err.Error())
	}

	m.cache.Add(name, tpl)
	return tpl, nil
}

// Render executes the named template against data and returns the resulting
// nginx config text. The returned text still needs structural validation
// (see Validate) before it is ever written to disk.
func (m *Manager) Render(name Name, data Data) (string, error) {
	const op = "template_render"
	tpl, err := m.load(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", core.NewTarget(core.KindTemplateError, op, string(name), err.Error())
	}
	return buf.String(), nil
}

// sandboxFuncs is deliberately small: no access to the filesystem, the
// environment, or anything else that would let a template escape its role
// as a string formatter.
var sandboxFuncs = template.FuncMap{
	"upper": strings.ToUpper,
}
