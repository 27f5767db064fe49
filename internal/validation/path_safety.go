package validation

import (
	"path/filepath"
	"strings"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

// windowsReserved are the device names Windows refuses regardless of
// extension; rejected defensively even though the gateway targets Linux.
var windowsReserved = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// FilePathSafety rejects absolute paths, any ".." segment, any segment
// starting with ".", and Windows-reserved names (spec §4.1).
func FilePathSafety(path string) error {
	const op = "validate_file_path_safety"
	if filepath.IsAbs(path) {
		return core.NewField(op, "path", "must not be absolute")
	}
	segments := strings.Split(filepath.ToSlash(path), "/")
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if seg == ".." {
			return core.NewField(op, "path", "must not contain ..")
		}
		if strings.HasPrefix(seg, ".") {
			return core.NewField(op, "path", "segments must not start with .")
		}
		base := strings.ToUpper(strings.SplitN(seg, ".", 2)[0])
		if windowsReserved[base] {
			return core.NewField(op, "path", "must not use a Windows-reserved device name")
		}
	}
	return nil
}

// WithinDirectory resolves name under dir and confirms the result is still
// inside dir (anti-traversal check used by ConfigOperations.Read/create).
func WithinDirectory(dir, name string) (string, error) {
	if err := FilePathSafety(name); err != nil {
		return "", err
	}
	resolved := filepath.Join(dir, name)
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", core.Wrap(core.KindIOFailure, "validate_file_path_safety", dir, err)
	}
	absResolved, err := filepath.Abs(resolved)
	if err != nil {
		return "", core.Wrap(core.KindIOFailure, "validate_file_path_safety", resolved, err)
	}
	if absResolved != absDir && !strings.HasPrefix(absResolved, absDir+string(filepath.Separator)) {
		return "", core.NewField("validate_file_path_safety", "path", "resolves outside the managed directory")
	}
	return absResolved, nil
}
