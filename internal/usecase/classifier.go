package usecase

import (
	"log"
	"regexp"
	"strings"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// Vendor validity filter bounds for brand fallback.
const (
	vendorMinLen   = 2
	vendorMaxLen   = 40
	vendorMaxWords = 4
)

// Vendor strings that are artifacts of export tooling rather than brands:
// serialized metadata (braces/colons), bare numbers, shouting labels, or
// sentence fragments starting with filler words.
var vendorBlocklist = []*regexp.Regexp{
	regexp.MustCompile(`[{}:]`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^[A-Z\s]{20,}$`),
	regexp.MustCompile(`^(?i:the|and|for|with)\b`),
}

// Classification is the result of classifying one record.
type Classification struct {
	InDomain   bool
	Category   string
	Brand      string
	Attributes domain.Attributes
}

// Classifier decides domain membership, category, brand and structured
// attributes for records, driven entirely by an injected DomainProfile.
// Classification never fails: a miss degrades to a default or empty value.
type Classifier struct {
	profile            *domain.DomainProfile
	enableDebugLogging bool
}

// NewClassifier creates a classifier bound to one domain profile.
func NewClassifier(profile *domain.DomainProfile, enableDebugLogging bool) *Classifier {
	return &Classifier{profile: profile, enableDebugLogging: enableDebugLogging}
}

// Classify runs the full classification pipeline on a normalized record.
func (c *Classifier) Classify(rec *domain.RawRecord) Classification {
	blob := c.textBlob(rec)

	result := Classification{
		InDomain: c.InDomain(blob),
	}
	if !result.InDomain {
		if c.enableDebugLogging {
			log.Printf("[CLASSIFY] out of domain: %q", rec.Get(FieldTitle))
		}
		return result
	}

	result.Category = c.ClassifyCategory(blob)
	result.Brand = c.DetectBrand(rec.Get(FieldTitle), rec.Get(FieldVendor), rec.Get(FieldTags))
	result.Attributes = c.ExtractAttributes(rec.Get(FieldTitle))

	if c.enableDebugLogging {
		log.Printf("[CLASSIFY] %q -> category=%s brand=%q size=%q",
			rec.Get(FieldTitle), result.Category, result.Brand, result.Attributes.Size)
	}
	return result
}

// textBlob concatenates the record's title, type and tags into one
// lower-cased string for pattern testing.
func (c *Classifier) textBlob(rec *domain.RawRecord) string {
	parts := []string{
		rec.Get(FieldTitle),
		rec.Get(FieldProductType),
		rec.Get(FieldTags),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// InDomain applies the two-tier membership test: an exclusion match
// rejects unless a strong signal overrides it; otherwise any inclusion
// match accepts.
func (c *Classifier) InDomain(blob string) bool {
	if matchesAny(c.profile.Exclusion, blob) && !matchesAny(c.profile.StrongSignal, blob) {
		return false
	}
	return matchesAny(c.profile.Inclusion, blob)
}

// ClassifyCategory walks the ordered category rules; first match wins.
func (c *Classifier) ClassifyCategory(blob string) string {
	for _, rule := range c.profile.Categories {
		if rule.Pattern.MatchString(blob) {
			return rule.Category
		}
	}
	return c.profile.DefaultCategory
}

// DetectBrand resolves the brand for a record:
//  1. ordered brand patterns against the title
//  2. the raw vendor string, if it passes the validity filter
//  3. ordered brand patterns against the tags
//  4. empty string (brand unknown)
func (c *Classifier) DetectBrand(title, vendor, tags string) string {
	if brand := c.matchBrand(title); brand != "" {
		return brand
	}
	if c.vendorLooksValid(vendor) {
		return strings.TrimSpace(vendor)
	}
	if brand := c.matchBrand(tags); brand != "" {
		return brand
	}
	return ""
}

func (c *Classifier) matchBrand(text string) string {
	text = strings.ToLower(text)
	for _, rule := range c.profile.Brands {
		if rule.Pattern.MatchString(text) {
			return rule.Brand
		}
	}
	return ""
}

// vendorLooksValid filters out vendor strings that are clearly not brand
// names before they are trusted as a fallback.
func (c *Classifier) vendorLooksValid(vendor string) bool {
	vendor = strings.TrimSpace(vendor)
	if len(vendor) < vendorMinLen || len(vendor) > vendorMaxLen {
		return false
	}
	for _, pattern := range vendorBlocklist {
		if pattern.MatchString(vendor) {
			return false
		}
	}
	return len(strings.Fields(vendor)) <= vendorMaxWords
}

// ExtractAttributes pulls structured size and volume fields out of a
// title. First matching pattern wins per attribute.
func (c *Classifier) ExtractAttributes(title string) domain.Attributes {
	var attrs domain.Attributes
	lower := strings.ToLower(title)

	for _, p := range c.profile.SizePatterns {
		if groups := p.Pattern.FindStringSubmatch(lower); groups != nil {
			attrs.Size = p.Render(groups)
			break
		}
	}

	if c.profile.VolumePattern != nil {
		if groups := c.profile.VolumePattern.FindStringSubmatch(lower); groups != nil {
			attrs.Volume = groups[1]
			attrs.VolumeUnit = canonicalVolumeUnit(groups[2])
		}
	}

	return attrs
}

// canonicalVolumeUnit collapses unit spellings to ml/l/oz/gal.
func canonicalVolumeUnit(unit string) string {
	switch strings.ToLower(unit) {
	case "ml", "milliliter", "milliliters":
		return "ml"
	case "l", "liter", "liters", "litre", "litres":
		return "l"
	case "oz", "ounce", "ounces":
		return "oz"
	case "gal", "gallon", "gallons":
		return "gal"
	default:
		return strings.ToLower(unit)
	}
}

// matchesAny reports whether any pattern in the set matches the text.
func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
