package validation

import (
	"net"
	"regexp"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

var upstreamTokenPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// UpstreamApp validates a container/host/IP upstream token per spec §4.1:
// an IPv4 address, a bracketed or bare IPv6 address, or a token restricted
// to [A-Za-z0-9._-].
func UpstreamApp(value string) (string, error) {
	const op = "validate_upstream_app"
	if value == "" {
		return "", core.NewField(op, "upstream_app", "must not be empty")
	}
	if len(value) > 100 {
		return "", core.NewField(op, "upstream_app", "must be <= 100 characters")
	}

	candidate := value
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		candidate = value[1 : len(value)-1]
	}
	if ip := net.ParseIP(candidate); ip != nil {
		return value, nil
	}
	if !upstreamTokenPattern.MatchString(value) {
		return "", core.NewField(op, "upstream_app", "must be an IP address or match [A-Za-z0-9._-]+")
	}
	return value, nil
}

// Port validates an upstream/listen port is within [1, 65535] (spec §4.1).
func Port(port int) error {
	if port < 1 || port > 65535 {
		return core.NewField("validate_port", "port", "must be in range [1, 65535]")
	}
	return nil
}
