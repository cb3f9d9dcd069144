// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package classify

// CategoryOthers is the catch-all category for classes not found in any
// membership list.
const CategoryOthers = "Others"

// CategoryRule pairs a category name with its static class membership list.
// Membership is matched against normalized (lowercase) class names.
type CategoryRule struct {
	Name    string
	Classes []string
}

// CategoryCatalog is a fixed classification of classes into coarse
// categories. It is configuration data: the catalog is built once and never
// mutated by the pipeline.
type CategoryCatalog struct {
	rules   []CategoryRule
	classes map[string]string
}

// DefaultCategoryRules is the built-in dental class taxonomy.
var DefaultCategoryRules = []CategoryRule{
	{Name: "Pathology", Classes: []string{
		"cavity", "caries", "lesion", "calculus", "abscess", "bone loss",
	}},
	{Name: "Restorations", Classes: []string{
		"filling", "crown", "bridge", "implant", "root canal treated", "restoration",
	}},
	{Name: "Anatomy", Classes: []string{
		"pulp", "enamel", "dentin", "root", "bone", "nerve", "sinus",
	}},
}

// NewCategoryCatalog builds a catalog over the given ordered rules. When a
// class appears in more than one rule, the first rule wins. Passing nil uses
// DefaultCategoryRules.
func NewCategoryCatalog(rules []CategoryRule) *CategoryCatalog {
	if rules == nil {
		rules = DefaultCategoryRules
	}
	classes := make(map[string]string)
	for _, rule := range rules {
		for _, class := range rule.Classes {
			if _, seen := classes[class]; !seen {
				classes[class] = rule.Name
			}
		}
	}
	return &CategoryCatalog{rules: rules, classes: classes}
}

// CategoryOf returns the category for a normalized class name, or
// CategoryOthers when the class is in no membership list.
func (c *CategoryCatalog) CategoryOf(className string) string {
	if cat, ok := c.classes[className]; ok {
		return cat
	}
	return CategoryOthers
}

// Categories returns every category name in rule order, with the catch-all
// last.
func (c *CategoryCatalog) Categories() []string {
	names := make([]string, 0, len(c.rules)+1)
	for _, rule := range c.rules {
		names = append(names, rule.Name)
	}
	return append(names, CategoryOthers)
}
