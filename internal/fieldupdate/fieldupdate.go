// Package fieldupdate implements the narrow, anchored-regex field edits of
// spec §4.8's update_field operation: port, upstream, app, and (delegating
// to mcpops) add_mcp, each requiring exactly one match before it touches
// content.
package fieldupdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/mcpops"
	"github.com/oakridge-labs/swagconfd/internal/templateengine"
	"github.com/oakridge-labs/swagconfd/internal/validation"
)

// portRe and appRe match a directive only when it is alone on its line; the
// first submatch is the directive itself, so indentation is kept on replace.
var (
	portRe = regexp.MustCompile(`(?m)^[ \t]*(set[ \t]+\$upstream_port[ \t]+"[^"]*"[ \t]*;)[ \t\r]*$`)
	appRe  = regexp.MustCompile(`(?m)^[ \t]*(set[ \t]+\$upstream_app[ \t]+"[^"]*"[ \t]*;)[ \t\r]*$`)
)

// Apply transforms content according to kind/value, delegating add_mcp to
// mcpops.InsertMCPLocation. Every non-add_mcp kind requires exactly one
// regex match in content; zero or multiple matches is MalformedConfig
// rather than a silent no-op or a blanket replace-all.
//
//   - port: replace the single $upstream_port directive with value's quoted
//     integer.
//   - upstream: replace the single $upstream_app directive with value
//     verbatim.
//   - app: accept "HOST" or "HOST:PORT"; update $upstream_app and, when a
//     port was supplied, $upstream_port too, in one pass.
func Apply(tm *templateengine.Manager, content string, kind core.UpdateKind, value string) (string, error) {
	const op = "update_field"

	switch kind {
	case core.UpdatePort:
		port, err := parsePort(value)
		if err != nil {
			return "", err
		}
		return replaceOne(op, content, portRe, fmt.Sprintf(`set $upstream_port "%d";`, port))

	case core.UpdateUpstream:
		if _, err := validation.UpstreamApp(value); err != nil {
			return "", err
		}
		return replaceOne(op, content, appRe, fmt.Sprintf(`set $upstream_app "%s";`, value))

	case core.UpdateApp:
		host, port, hasPort, err := splitHostPort(value)
		if err != nil {
			return "", err
		}
		next, err := replaceOne(op, content, appRe, fmt.Sprintf(`set $upstream_app "%s";`, host))
		if err != nil {
			return "", err
		}
		if hasPort {
			next, err = replaceOne(op, next, portRe, fmt.Sprintf(`set $upstream_port "%d";`, port))
			if err != nil {
				return "", err
			}
		}
		return next, nil

	case core.UpdateAddMCP:
		return mcpops.InsertMCPLocation(tm, content, value)

	default:
		return "", core.NewField(op, "kind", "unrecognized update kind")
	}
}

func parsePort(value string) (int, error) {
	const op = "update_field"
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, core.NewField(op, "value", "must be an integer port")
	}
	if err := validation.Port(port); err != nil {
		return 0, err
	}
	return port, nil
}

// splitHostPort parses the app update kind's "HOST" or "HOST:PORT" value.
func splitHostPort(value string) (host string, port int, hasPort bool, err error) {
	const op = "update_field"
	if idx := strings.LastIndex(value, ":"); idx >= 0 && !strings.Contains(value[idx+1:], "]") {
		host = value[:idx]
		p, perr := strconv.Atoi(value[idx+1:])
		if perr != nil {
			return "", 0, false, core.NewField(op, "value", "port segment must be an integer")
		}
		if verr := validation.Port(p); verr != nil {
			return "", 0, false, verr
		}
		if _, verr := validation.UpstreamApp(host); verr != nil {
			return "", 0, false, verr
		}
		return host, p, true, nil
	}
	if _, verr := validation.UpstreamApp(value); verr != nil {
		return "", 0, false, verr
	}
	return value, 0, false, nil
}

func replaceOne(op, content string, re *regexp.Regexp, replacement string) (string, error) {
	matches := re.FindAllStringSubmatchIndex(content, -1)
	switch len(matches) {
	case 0:
		return "", core.New(core.KindMalformedConfig, op, "expected directive not found in config")
	case 1:
		m := matches[0]
		return content[:m[2]] + replacement + content[m[3]:], nil
	default:
		return "", core.New(core.KindMalformedConfig, op, "expected exactly one directive occurrence, found multiple")
	}
}
