package templateengine

import (
	"regexp"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

var (
	upstreamAppPattern = regexp.MustCompile(`set\s+\$upstream_app\s+"[^"]*"\s*;`)
	upstreamPortPattern = regexp.MustCompile(`set\s+\$upstream_port\s+"[^"]*"\s*;`)
	upstreamProtoPattern = regexp.MustCompile(`set\s+\$upstream_proto\s+"[^"]*"\s*;`)
	proxyPassPattern    = regexp.MustCompile(`proxy_pass\s+\$upstream_proto://\$upstream_app:\$upstream_port`)

	authIncludeMarkers = map[core.AuthMethod]string{
		core.AuthAuthelia:  "authelia-location.conf",
		core.AuthAuthentik: "authentik-location.conf",
		core.AuthLDAP:      "ldap-location.conf",
		core.AuthTinyAuth:  "tinyauth-location.conf",
	}
)

// Validate checks a rendered config's structure against spec §4.3's
// post-render guarantees: balanced server braces, the three upstream
// variable assignments, a matching proxy_pass, the MCP/OAuth markers when
// mcpEnabled, the QUIC/Alt-Svc markers when enableQUIC, and the correct
// auth include (or its absence) for authMethod.
func Validate(rendered string, mcpEnabled bool, enableQUIC bool, authMethod core.AuthMethod) error {
	const op = "validate_rendered_config"

	if !bracesBalanced(rendered) {
		return core.New(core.KindMalformedConfig, op, "unbalanced braces in rendered config")
	}
	if !strings.Contains(rendered, "server {") && !strings.Contains(rendered, "server{") {
		return core.New(core.KindMalformedConfig, op, "missing top-level server block")
	}
	if !upstreamAppPattern.MatchString(rendered) {
		return core.New(core.KindMalformedConfig, op, "missing set $upstream_app directive")
	}
	if !upstreamPortPattern.MatchString(rendered) {
		return core.New(core.KindMalformedConfig, op, "missing set $upstream_port directive")
	}
	if !upstreamProtoPattern.MatchString(rendered) {
		return core.New(core.KindMalformedConfig, op, "missing set $upstream_proto directive")
	}
	if !proxyPassPattern.MatchString(rendered) {
		return core.New(core.KindMalformedConfig, op, "missing proxy_pass $upstream_proto://$upstream_app:$upstream_port")
	}

	if mcpEnabled {
		if !strings.Contains(rendered, "location /mcp") {
			return core.New(core.KindMalformedConfig, op, "mcp_enabled set but no /mcp location block present")
		}
		if !strings.Contains(rendered, "/.well-known/oauth-authorization-server") {
			return core.New(core.KindMalformedConfig, op, "mcp_enabled set but no oauth-authorization-server discovery endpoint present")
		}
	}

	if enableQUIC {
		if !strings.Contains(rendered, "listen 443 quic") && !strings.Contains(rendered, "http3") {
			return core.New(core.KindMalformedConfig, op, "enable_quic set but no QUIC listener present")
		}
		if !strings.Contains(rendered, "Alt-Svc") {
			return core.New(core.KindMalformedConfig, op, "enable_quic set but no Alt-Svc header present")
		}
	}

	if marker, ok := authIncludeMarkers[authMethod]; ok {
		if !strings.Contains(rendered, marker) {
			return core.New(core.KindMalformedConfig, op, "auth_method "+string(authMethod)+" requires include "+marker)
		}
	} else if authMethod == core.AuthBasic {
		if !strings.Contains(rendered, "auth_basic") {
			return core.New(core.KindMalformedConfig, op, "auth_method basic requires an auth_basic directive")
		}
	} else if authMethod == core.AuthNone || authMethod == "" {
		for _, m := range authIncludeMarkers {
			if strings.Contains(rendered, m) {
				return core.New(core.KindMalformedConfig, op, "auth_method none but an auth include is present")
			}
		}
	}

	return nil
}

func bracesBalanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
