// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package classify

import "strings"

// Modality tags form a fixed closed set. ModalityOthers is the fallback for
// titles matching no keyword list.
const (
	ModalityOPG      = "OPG"
	ModalityBitewing = "Bitewing"
	ModalityIOPA     = "IOPA"
	ModalityOthers   = "Others"
)

// Modalities lists every valid modality tag, used for input validation.
var Modalities = []string{ModalityOPG, ModalityBitewing, ModalityIOPA, ModalityOthers}

// IsValidModality reports whether tag is a member of the closed modality set.
func IsValidModality(tag string) bool {
	for _, m := range Modalities {
		if m == tag {
			return true
		}
	}
	return false
}

// ModalityRule pairs a modality tag with the title keywords that select it.
type ModalityRule struct {
	Tag      string
	Keywords []string
}

// ModalityDetector maps a free-text project title to a modality tag by
// case-insensitive substring search. Rules are checked in order; the first
// rule with a matching keyword wins.
type ModalityDetector struct {
	rules []ModalityRule
}

// DefaultModalityRules is the built-in keyword table for dental X-ray
// acquisition types.
var DefaultModalityRules = []ModalityRule{
	{Tag: ModalityOPG, Keywords: []string{"opg", "panoramic", "pano"}},
	{Tag: ModalityBitewing, Keywords: []string{"bitewing", "bite-wing", "bite wing"}},
	{Tag: ModalityIOPA, Keywords: []string{"iopa", "periapical", "intraoral", "intra-oral"}},
}

// NewModalityDetector builds a detector over the given ordered rules.
// Passing nil uses DefaultModalityRules.
func NewModalityDetector(rules []ModalityRule) *ModalityDetector {
	if rules == nil {
		rules = DefaultModalityRules
	}
	return &ModalityDetector{rules: rules}
}

// Detect returns the modality for a project title, or ModalityOthers when no
// keyword matches.
func (d *ModalityDetector) Detect(title string) string {
	lower := strings.ToLower(title)
	for _, rule := range d.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Tag
			}
		}
	}
	return ModalityOthers
}
