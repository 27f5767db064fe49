package validation

import (
	"regexp"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

var mcpPathPattern = regexp.MustCompile(`^[A-Za-z0-9/_-]+$`)

// MCPPath validates a location path used by MCPOperations (spec §4.1): must
// begin with "/", contain only [A-Za-z0-9/_-], no "..", and be <= 100 chars.
func MCPPath(path string) error {
	const op = "validate_mcp_path"
	if !strings.HasPrefix(path, "/") {
		return core.NewField(op, "mcp_path", "must begin with /")
	}
	if len(path) > 100 {
		return core.NewField(op, "mcp_path", "must be <= 100 characters")
	}
	if strings.Contains(path, "..") {
		return core.NewField(op, "mcp_path", "must not contain ..")
	}
	if !mcpPathPattern.MatchString(path) {
		return core.NewField(op, "mcp_path", "must match [A-Za-z0-9/_-]+")
	}
	return nil
}
