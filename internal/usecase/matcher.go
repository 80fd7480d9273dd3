package usecase

import (
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// Package-level compiled regex patterns for matching
var (
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]`)
	digitRunPattern = regexp.MustCompile(`\d+`)
	letterPattern   = regexp.MustCompile(`[a-z]`)
)

// Scoring constants
const (
	scoreExact          = 1.0  // normalized strings identical
	scoreContainment    = 0.9  // one normalized string contains the other
	scoreSingleWordCap  = 0.8  // lone significant handle word matched
	overlapMinWordLen   = 3    // shortest word counted by the overlap scorer
	coverageMinWordLen  = 4    // shortest word counted as "meaningful" for coverage
	coverageMinMatches  = 2    // multi-word handles need at least this many hits
	fallbackMinMatches  = 3    // word-overlap fallback needs at least this many hits
	fallbackMinCoverage = 0.7
	skuMinLen           = 5 // shorter SKUs embed in too many filenames
	upcMinDigits        = 8
)

// Default thresholds
const (
	defaultMatchThreshold    = 0.7
	defaultCoverageThreshold = 0.7
)

// matchStopWords lists generic product terms that carry no identity:
// a handle word in this set never counts toward keyword coverage.
var matchStopWords = map[string]bool{
	// Generic product terms
	"plant": true, "grow": true, "garden": true, "hydro": true,
	"hydroponic": true, "hydroponics": true, "indoor": true, "outdoor": true,
	"product": true, "item": true, "brand": true, "model": true,
	// Packaging and quantity
	"pack": true, "case": true, "roll": true, "sheet": true, "bulk": true,
	"count": true, "pair": true, "each": true, "single": true, "double": true,
	// Units and sizes
	"inch": true, "inches": true, "foot": true, "feet": true, "gallon": true,
	"quart": true, "liter": true, "size": true, "small": true, "large": true,
	"medium": true, "mini": true, "jumbo": true,
	// Colors
	"black": true, "white": true, "green": true, "silver": true, "clear": true,
	// Marketing
	"premium": true, "heavy": true, "duty": true, "professional": true,
	"deluxe": true, "value": true, "quality": true, "original": true,
	"with": true, "without": true, "free": true, "extra": true,
}

// Scorer computes a 0..1 similarity between a query and a candidate.
// All scorers are deterministic and side-effect-free.
type Scorer func(query, candidate string) float64

// Match pairs a winning candidate index with its score.
type Match struct {
	Index int
	Score float64
}

// MatcherConfig holds configuration for the fuzzy matcher.
type MatcherConfig struct {
	Threshold          float64
	CoverageThreshold  float64
	EnableDebugLogging bool
}

// Matcher links entities that don't share an exact key, scoring free-text
// similarity between titles, handles and asset filenames.
type Matcher struct {
	threshold          float64
	coverageThreshold  float64
	enableDebugLogging bool
}

// NewMatcher creates a fuzzy matcher with the given configuration.
func NewMatcher(config MatcherConfig) *Matcher {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = defaultMatchThreshold
	}
	coverage := config.CoverageThreshold
	if coverage <= 0 {
		coverage = defaultCoverageThreshold
	}
	return &Matcher{
		threshold:          threshold,
		coverageThreshold:  coverage,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// BestMatch scans candidates in order and returns the first candidate
// reaching a new maximum score at or above the threshold. Ties keep the
// earliest-seen candidate; this is a stable first-max selection, not a
// global sort.
func (m *Matcher) BestMatch(query string, candidates []string, scorer Scorer, threshold float64) *Match {
	best := -1.0
	bestIdx := -1
	for i, candidate := range candidates {
		score := scorer(query, candidate)
		if score > best {
			best = score
			bestIdx = i
		}
	}
	if bestIdx < 0 || best < threshold {
		return nil
	}
	return &Match{Index: bestIdx, Score: best}
}

// ScoreOverlap is the containment + word-overlap scorer: exact normalized
// equality scores 1, substring containment either direction scores 0.9,
// otherwise the score is the shared-word count over the larger word set.
func ScoreOverlap(a, b string) float64 {
	na := normalizeLoose(a)
	nb := normalizeLoose(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return scoreExact
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return scoreContainment
	}

	wordsA := significantWords(na, overlapMinWordLen, nil)
	wordsB := significantWords(nb, overlapMinWordLen, nil)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	overlap := countShared(wordsA, wordsB)
	larger := len(wordsA)
	if len(wordsB) > larger {
		larger = len(wordsB)
	}
	return float64(overlap) / float64(larger)
}

// ScoreHandleCoverage is the strict key-word coverage scorer used for
// filename-to-handle matching. The handle with hyphens stripped being a
// full substring of the filename scores 1. Otherwise the meaningful handle
// words (>= 4 chars, stop words removed) must nearly all appear literally
// in the filename; a lone significant word scores 0.8 when the filename
// isn't wildly longer than the handle.
func ScoreHandleCoverage(handle, filename string) float64 {
	compactHandle := nonAlnumPattern.ReplaceAllString(strings.ToLower(handle), "")
	compactFile := nonAlnumPattern.ReplaceAllString(strings.ToLower(filename), "")
	if compactHandle == "" || compactFile == "" {
		return 0
	}
	if strings.Contains(compactFile, compactHandle) {
		return scoreExact
	}

	words := significantWords(normalizeLoose(handle), coverageMinWordLen, matchStopWords)
	if len(words) == 0 {
		return 0
	}

	if len(words) == 1 {
		if strings.Contains(compactFile, words[0]) && len(compactFile) <= 3*len(compactHandle) {
			return scoreSingleWordCap
		}
		return 0
	}

	matched := 0
	for _, w := range words {
		if strings.Contains(compactFile, w) {
			matched++
		}
	}
	if matched == len(words) || matched >= coverageMinMatches {
		return float64(matched) / float64(len(words))
	}
	return 0
}

// Asset match method names, in cascade order.
const (
	MethodExactHandle = "exact_handle"
	MethodSKU         = "sku"
	MethodUPC         = "upc"
	MethodCoverage    = "keyword_coverage"
	MethodWordOverlap = "word_overlap"
)

// MatchAsset links an asset filename (e.g. an image file) to a catalog
// entry. A fixed strategy cascade is tried in order; the first strategy
// that yields any match wins and later strategies are never consulted.
func (m *Matcher) MatchAsset(filename string, entries []*domain.CatalogEntry) *domain.FuzzyMatch {
	stem := assetStem(filename)
	compactStem := nonAlnumPattern.ReplaceAllString(stem, "")

	// 1. Exact normalized handle equality.
	for _, e := range entries {
		if compactStem != "" && compactStem == nonAlnumPattern.ReplaceAllString(e.DedupKey, "") {
			return m.assetMatch(filename, e, scoreExact, MethodExactHandle)
		}
	}

	// 2. SKU embedded in the filename. Short or all-numeric SKUs embed in
	// too many unrelated names, so they are excluded here.
	for _, e := range entries {
		sku := strings.ToLower(strings.TrimSpace(e.SKU))
		if len(sku) < skuMinLen || !letterPattern.MatchString(sku) {
			continue
		}
		if strings.Contains(compactStem, nonAlnumPattern.ReplaceAllString(sku, "")) {
			return m.assetMatch(filename, e, scoreExact, MethodSKU)
		}
	}

	// 3. UPC embedded in the filename.
	for _, e := range entries {
		upc := digitsOnly(e.UPC)
		if len(upc) < upcMinDigits {
			continue
		}
		if strings.Contains(compactStem, upc) {
			return m.assetMatch(filename, e, scoreExact, MethodUPC)
		}
	}

	// 4. Strict key-word coverage.
	best := m.bestEntry(stem, entries, func(e *domain.CatalogEntry) float64 {
		return ScoreHandleCoverage(e.DedupKey, stem)
	})
	if best != nil && best.Score >= m.coverageThreshold {
		return m.assetMatch(filename, entries[best.Index], best.Score, MethodCoverage)
	}

	// 5. Word-overlap fallback against titles, requiring at least three
	// matching words and 70% coverage.
	best = m.bestEntry(stem, entries, func(e *domain.CatalogEntry) float64 {
		return titleFallbackScore(e.Title, stem)
	})
	if best != nil && best.Score >= fallbackMinCoverage {
		return m.assetMatch(filename, entries[best.Index], best.Score, MethodWordOverlap)
	}

	if m.enableDebugLogging {
		log.Printf("[MATCH] no entry matched asset %q", filename)
	}
	return nil
}

// bestEntry is the first-max scan over entries with an entry-level scorer.
func (m *Matcher) bestEntry(stem string, entries []*domain.CatalogEntry, score func(*domain.CatalogEntry) float64) *Match {
	best := -1.0
	bestIdx := -1
	for i, e := range entries {
		s := score(e)
		if s > best {
			best = s
			bestIdx = i
		}
	}
	if bestIdx < 0 || best <= 0 {
		return nil
	}
	return &Match{Index: bestIdx, Score: best}
}

func (m *Matcher) assetMatch(filename string, e *domain.CatalogEntry, score float64, method string) *domain.FuzzyMatch {
	if m.enableDebugLogging {
		log.Printf("[MATCH] asset %q -> %q via %s (%.2f)", filename, e.DedupKey, method, score)
	}
	return &domain.FuzzyMatch{
		LeftKey:  filename,
		RightKey: e.DedupKey,
		Score:    score,
		Method:   method,
	}
}

// titleFallbackScore gives the overlap coverage of the title's significant
// words within the filename, zeroed below the minimum matching-word count.
func titleFallbackScore(title, stem string) float64 {
	words := significantWords(strings.ToLower(title), coverageMinWordLen, matchStopWords)
	if len(words) == 0 {
		return 0
	}
	compact := nonAlnumPattern.ReplaceAllString(stem, "")
	matched := 0
	for _, w := range words {
		if strings.Contains(compact, w) {
			matched++
		}
	}
	if matched < fallbackMinMatches {
		return 0
	}
	return float64(matched) / float64(len(words))
}

// assetStem strips the directory and extension from an asset path.
func assetStem(filename string) string {
	base := filepath.Base(filename)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// normalizeLoose lowercases and collapses punctuation to spaces for the
// overlap scorer.
func normalizeLoose(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRunPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// significantWords tokenizes on whitespace, keeping words of at least
// minLen characters that are not in the stop set.
func significantWords(s string, minLen int, stop map[string]bool) []string {
	var words []string
	for _, w := range strings.Fields(s) {
		if len(w) < minLen {
			continue
		}
		if stop != nil && stop[w] {
			continue
		}
		words = append(words, w)
	}
	return words
}

// countShared returns how many distinct words appear in both lists.
func countShared(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	seen := make(map[string]bool)
	n := 0
	for _, w := range b {
		if set[w] && !seen[w] {
			n++
			seen[w] = true
		}
	}
	return n
}

// digitsOnly extracts the digit runs of a string, concatenated.
func digitsOnly(s string) string {
	return strings.Join(digitRunPattern.FindAllString(s, -1), "")
}
