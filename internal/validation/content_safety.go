package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

const bomRune = '﻿'

// ContentSafety implements spec §4.1's full-content write check: normalize
// to NFC, strip a leading BOM, reject embedded NUL, reject when more than 1%
// of code points are C0/C1 control characters other than TAB/CR/LF, and
// reject payloads over maxBytes.
func ContentSafety(content string, maxBytes int64) (string, error) {
	const op = "validate_content_safety"

	if int64(len(content)) > maxBytes {
		return "", core.NewField(op, "content", fmt.Sprintf("must be <= %d bytes", maxBytes))
	}

	normalized := norm.NFC.String(content)
	normalized = strings.TrimPrefix(normalized, string(bomRune))

	if strings.ContainsRune(normalized, 0) {
		return "", core.NewField(op, "content", "must not contain embedded NUL bytes")
	}

	total, controls := 0, 0
	for _, r := range normalized {
		total++
		if isDisallowedControl(r) {
			controls++
		}
	}
	if total > 0 && float64(controls)/float64(total) > 0.01 {
		return "", core.NewField(op, "content", "more than 1% of code points are disallowed control characters")
	}

	if !utf8.ValidString(normalized) {
		return "", core.NewField(op, "content", "must be valid UTF-8")
	}

	return normalized, nil
}

func isDisallowedControl(r rune) bool {
	if r == '\t' || r == '\r' || r == '\n' {
		return false
	}
	// C0 controls (excluding the three above) and C1 controls.
	return (r >= 0x00 && r <= 0x1F) || (r >= 0x7F && r <= 0x9F)
}
