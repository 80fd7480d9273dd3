package domain

import "regexp"

// BrandRule maps a title pattern to a canonical brand name. Rules are
// evaluated in declaration order; first match wins.
type BrandRule struct {
	Pattern *regexp.Regexp
	Brand   string
}

// CategoryRule maps a text pattern to a category tag. Order matters:
// narrower rules must be declared before broader ones.
type CategoryRule struct {
	Pattern  *regexp.Regexp
	Category string
}

// AttributePattern extracts a structured attribute value from free text.
type AttributePattern struct {
	Pattern *regexp.Regexp
	// Render builds the normalized attribute value from the capture groups.
	Render func(groups []string) string
}

// DomainProfile is the injected, immutable rule configuration for one
// product domain. The engine itself carries no domain assumptions; swapping
// the profile retargets classification to a different vocabulary.
type DomainProfile struct {
	Name string

	// Inclusion patterns accept a record into the domain.
	Inclusion []*regexp.Regexp
	// Exclusion patterns reject a record unless a strong signal overrides.
	Exclusion []*regexp.Regexp
	// StrongSignal patterns are unambiguous domain markers that override
	// an exclusion match.
	StrongSignal []*regexp.Regexp

	Categories      []CategoryRule
	DefaultCategory string

	Brands []BrandRule

	SizePatterns  []AttributePattern
	VolumePattern *regexp.Regexp
}
