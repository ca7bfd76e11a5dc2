package search

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/rails"
)

// Match tiers. The gap between adjacent tiers exceeds the maximum possible
// bonus sum, so an exact match always outranks any boosted weaker match.
const (
	tierExact       = 10.0
	tierPrefix      = 8.0
	tierSubstring   = 6.0
	tierSubsequence = 4.0
)

// Bonus weights. Their sum stays below the inter-tier gap of 2.
const (
	usageWeight    = 0.30
	recencyWeight  = 0.25
	contextWeight  = 0.40
	projectWeight  = 0.20
	fileTypeWeight = 0.20
	kindWeight     = 0.30
)

// usageCeiling is the access count treated as "very popular".
const usageCeiling = 100

// matchTier scores how well a name matches the query. The second return is
// false when the name does not match at all.
func matchTier(query, name string) (float64, bool) {
	q := strings.ToLower(query)
	n := strings.ToLower(name)
	switch {
	case n == q:
		return tierExact, true
	case strings.HasPrefix(n, q):
		return tierPrefix, true
	case strings.Contains(n, q):
		return tierSubstring, true
	case isSubsequence(q, n):
		return tierSubsequence, true
	}
	return 0, false
}

// isSubsequence reports whether every rune of q appears in n in order, not
// necessarily contiguously.
func isSubsequence(q, n string) bool {
	if q == "" {
		return false
	}
	qr := []rune(q)
	i := 0
	for _, r := range n {
		if i < len(qr) && qr[i] == r {
			i++
		}
	}
	return i == len(qr)
}

// bonuses sums the additive relevance signals for one matched candidate.
// Callers hold the engine mutex.
func (e *Engine) bonuses(c *candidate, opts Options, ctxClass *graph.ClassInfo) float64 {
	score := 0.0

	if n := e.usage[c.Symbol]; n > 0 {
		norm := math.Log1p(float64(n)) / math.Log1p(usageCeiling)
		if norm > 1 {
			norm = 1
		}
		score += usageWeight * norm
	}

	if last, ok := e.lastAccess[c.Symbol]; ok {
		ageHours := e.now().Sub(last).Hours()
		score += recencyWeight * math.Exp(-ageHours/24)
	}

	score += contextWeight * e.contextRelevance(c, opts.CurrentFile, ctxClass)

	if isProjectFile(c.File) {
		score += projectWeight
	}

	if opts.FileType != "" && fileCategory(c.File) == opts.FileType {
		score += fileTypeWeight
	}

	if opts.Kind != KindAny && opts.Kind == c.Kind {
		score += kindWeight
	}

	return score
}

// contextRelevance scores convention-level proximity between the candidate
// and the file the query originated from. The strongest single signal wins.
func (e *Engine) contextRelevance(c *candidate, currentFile string, ctxClass *graph.ClassInfo) float64 {
	if currentFile == "" {
		return 0
	}

	if c.File != "" && c.File == currentFile {
		return 1.0
	}

	if ctxClass != nil && c.Kind == KindClass {
		if cls := e.graph.Class(c.Symbol); cls != nil {
			if controllerModelPair(ctxClass, cls) {
				return 0.9
			}
			for _, a := range e.graph.Associations(ctxClass.Name) {
				if a.TargetModel == cls.Name {
					return 0.8
				}
			}
		}
	}

	// A spec file boosts the symbol it conventionally tests.
	if strings.Contains(currentFile, "spec/") && strings.HasSuffix(currentFile, "_spec.rb") {
		base := strings.TrimSuffix(filepath.Base(currentFile), "_spec.rb")
		if rails.CamelToSnake(c.name) == base {
			return 0.7
		}
	}

	return 0
}

// isProjectFile distinguishes first-party code from vendored libraries.
func isProjectFile(file string) bool {
	if file == "" {
		return false
	}
	for _, seg := range []string{"vendor/", "node_modules/", ".bundle/", "gems/"} {
		if strings.Contains(file, seg) {
			return false
		}
	}
	return true
}

// fileCategory buckets a path by Rails directory convention.
func fileCategory(file string) string {
	switch {
	case strings.Contains(file, "app/models/"):
		return "model"
	case strings.Contains(file, "app/controllers/"):
		return "controller"
	case strings.Contains(file, "spec/") || strings.Contains(file, "test/"):
		return "spec"
	case strings.Contains(file, "lib/"):
		return "lib"
	default:
		return ""
	}
}
