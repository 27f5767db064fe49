// Package mcpops implements the structural edits spec §4.4 groups under
// "MCP operations": recovering the upstream and auth directives already
// present in a rendered config, and inserting a new MCP location block into
// its outermost server { } before the closing brace.
package mcpops

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/templateengine"
	"github.com/oakridge-labs/swagconfd/internal/validation"
)

var (
	upstreamAppRe   = regexp.MustCompile(`set\s+\$upstream_app\s+"([^"]*)"\s*;`)
	upstreamPortRe  = regexp.MustCompile(`set\s+\$upstream_port\s+"([^"]*)"\s*;`)
	upstreamProtoRe = regexp.MustCompile(`set\s+\$upstream_proto\s+"([^"]*)"\s*;`)
	locationRe      = regexp.MustCompile(`location\s+([^\s{]+)\s*\{`)
)

var authIncludes = map[string]core.AuthMethod{
	"authelia-location.conf":  core.AuthAuthelia,
	"authentik-location.conf": core.AuthAuthentik,
	"ldap-location.conf":      core.AuthLDAP,
	"tinyauth-location.conf":  core.AuthTinyAuth,
}

// Upstream is the set of upstream directives recovered from an existing
// config, used to re-derive a core.ConfigRequest for field-update
// operations without requiring the caller to resupply them.
type Upstream struct {
	App   string
	Port  string
	Proto string
}

// RecoverUpstream scans content for the three set $upstream_* directives
// spec §4.4 expects every managed config to carry.
func RecoverUpstream(content string) (Upstream, error) {
	const op = "recover_upstream"
	appMatch := upstreamAppRe.FindStringSubmatch(content)
	portMatch := upstreamPortRe.FindStringSubmatch(content)
	protoMatch := upstreamProtoRe.FindStringSubmatch(content)
	if appMatch == nil || portMatch == nil || protoMatch == nil {
		return Upstream{}, core.New(core.KindMalformedConfig, op, "missing one or more set $upstream_* directives")
	}
	return Upstream{App: appMatch[1], Port: portMatch[1], Proto: protoMatch[1]}, nil
}

// RecoverAuthMethod inspects content for a known auth include or auth_basic
// directive, returning core.AuthNone if none is present.
func RecoverAuthMethod(content string) core.AuthMethod {
	for marker, method := range authIncludes {
		if strings.Contains(content, marker) {
			return method
		}
	}
	if strings.Contains(content, "auth_basic") {
		return core.AuthBasic
	}
	return core.AuthNone
}

// HasLocation reports whether content already declares a location block
// whose path equals mcpPath, used to reject a duplicate add_mcp as a
// Conflict.
func HasLocation(content, mcpPath string) bool {
	for _, m := range locationRe.FindAllStringSubmatch(content, -1) {
		if m[1] == mcpPath {
			return true
		}
	}
	return false
}

// InsertMCPLocation renders the mcp_location_block template and inserts it
// into content's outermost server { } just before that block's closing
// brace, preceded by a blank line. It returns Conflict if mcpPath already
// has a location block. Per spec §4.7, the block is rendered with the
// upstream and auth method recovered from content itself, so the new
// location re-derives the same upstream and repeats the same auth include
// (or auth_basic directive) the rest of the server block already carries.
func InsertMCPLocation(tm *templateengine.Manager, content, mcpPath string) (string, error) {
	const op = "add_mcp"

	if err := validation.MCPPath(mcpPath); err != nil {
		return "", err
	}
	if HasLocation(content, mcpPath) {
		return "", core.NewTarget(core.KindConflict, op, mcpPath, "a location block for this path already exists")
	}

	_, end, err := findOutermostServerBlock(content)
	if err != nil {
		return "", err
	}

	upstream, err := RecoverUpstream(content)
	if err != nil {
		return "", err
	}
	port, err := strconv.Atoi(upstream.Port)
	if err != nil {
		return "", core.NewTarget(core.KindMalformedConfig, op, upstream.Port, "recovered upstream port is not numeric")
	}

	block, err := tm.Render(templateengine.MCPLocationBlock, templateengine.Data{
		MCPPath:       mcpPath,
		UpstreamApp:   upstream.App,
		UpstreamPort:  port,
		UpstreamProto: core.UpstreamProto(upstream.Proto),
		AuthMethod:    RecoverAuthMethod(content),
	})
	if err != nil {
		return "", err
	}

	insertion := "\n" + strings.TrimRight(block, "\n") + "\n"
	return content[:end] + insertion + content[end:], nil
}

// findOutermostServerBlock locates the first top-level "server {" and
// returns [start, end) where end is the offset of its matching closing
// brace (the position to insert before), using a simple brace-depth scan
// since nginx configs have no string literals that contain unbalanced
// braces in practice.
func findOutermostServerBlock(content string) (start, end int, err error) {
	const op = "add_mcp"
	idx := strings.Index(content, "server")
	if idx < 0 {
		return 0, 0, core.New(core.KindMalformedConfig, op, "no server block found")
	}
	brace := strings.IndexByte(content[idx:], '{')
	if brace < 0 {
		return 0, 0, core.New(core.KindMalformedConfig, op, "no server block found")
	}
	openPos := idx + brace

	depth := 0
	for i := openPos; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return openPos, i, nil
			}
		}
	}
	return 0, 0, core.New(core.KindMalformedConfig, op, "unbalanced server block braces")
}
