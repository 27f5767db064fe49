package validation

import (
	"regexp"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

var domainLabelPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// Domain validates and normalizes a DNS server_name per spec §4.1: each
// label 1-63 chars, total <=253, no leading/trailing dot, lower-cased.
func Domain(name string) (string, error) {
	const op = "validate_domain"
	if name == "" {
		return "", core.NewField(op, "server_name", "must not be empty")
	}
	if len(name) > 253 {
		return "", core.NewField(op, "server_name", "must be <= 253 characters")
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return "", core.NewField(op, "server_name", "must not have a leading or trailing dot")
	}
	labels := strings.Split(name, ".")
	for _, label := range labels {
		if len(label) < 1 || len(label) > 63 {
			return "", core.NewField(op, "server_name", "each label must be 1-63 characters")
		}
		if !domainLabelPattern.MatchString(label) {
			return "", core.NewField(op, "server_name", "label contains invalid characters")
		}
	}
	return strings.ToLower(name), nil
}
