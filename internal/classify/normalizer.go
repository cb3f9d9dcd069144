// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package classify

import (
	"regexp"
	"strings"
)

// classPattern matches labels made of letters and whitespace with an
// optional trailing numeric suffix ("cavity 2"). Labels containing any
// other punctuation fall outside the pattern and are left unmerged.
var classPattern = regexp.MustCompile(`^([a-zA-Z\s]+)(\s+\d+)?$`)

// Normalize canonicalizes a raw annotation label into a stable class key:
// trimmed, lowercased, and with a trailing numeric suffix stripped so that
// "Cavity 1" and "Cavity 2" collapse into the single class "cavity".
//
// Labels that do not fit the letters-plus-optional-number shape (for example
// "Root-Canal") are returned trimmed and lowercased but otherwise unchanged.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	m := classPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return strings.TrimSpace(m[1])
}
