package validation

import (
	"regexp"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

// activeNamePattern matches spec §3's active ConfigFile name grammar.
var activeNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.(subdomain|subfolder)\.conf$`)

// ConfigName validates a candidate active-config filename and, on success,
// recovers its service name and base type (spec §3 ConfigRequest fields).
func ConfigName(name string) (service string, base core.BaseType, err error) {
	if !activeNamePattern.MatchString(name) {
		return "", "", core.NewField("validate_config_name", "config_name", "must match ^[A-Za-z0-9_-]+\\.(subdomain|subfolder)\\.conf$")
	}
	trimmed := strings.TrimSuffix(name, ".conf")
	idx := strings.LastIndex(trimmed, ".")
	baseStr := trimmed[idx+1:]
	service = trimmed[:idx]
	return service, core.BaseType(baseStr), nil
}

// IsSample reports whether name is an inert sample file (spec §3).
func IsSample(name string) bool {
	return strings.HasSuffix(name, ".sample")
}

// backupMarker is the fixed infix used to recognize and split backup names.
const backupMarker = ".backup."

// IsBackup reports whether name contains the backup marker.
func IsBackup(name string) bool {
	return strings.Contains(name, backupMarker)
}

// SplitBackupName recovers the original filename and the raw timestamp
// suffix from a backup name of the form ORIGINAL.backup.YYYYMMDD_HHMMSS_mmm.
func SplitBackupName(name string) (original, timestamp string, ok bool) {
	idx := strings.Index(name, backupMarker)
	if idx < 0 {
		return "", "", false
	}
	return name[:idx], name[idx+len(backupMarker):], true
}
