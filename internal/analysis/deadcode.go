package analysis

import (
	"sort"
	"strings"

	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/parser"
)

// Per-category confidences. Dead-code detection is a heuristic signal under
// conservative, convention-aware exclusion rules, not proof of
// unreachability.
const (
	unusedClassConfidence    = 0.8
	unusedMethodConfidence   = 0.9
	unusedConstantConfidence = 0.7
)

// DeadCodeItem is one flagged symbol.
type DeadCodeItem struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"` // class, method, constant
	File       string  `json:"file,omitempty"`
	Line       int     `json:"line,omitempty"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// DeadCodeReport is the full analysis result. Confidence buckets the mean of
// per-item confidences: >=0.8 high, >=0.6 medium, else low. An empty report
// is vacuously high.
type DeadCodeReport struct {
	UnusedClasses   []DeadCodeItem `json:"unused_classes"`
	UnusedMethods   []DeadCodeItem `json:"unused_methods"`
	UnusedConstants []DeadCodeItem `json:"unused_constants"`
	TotalItems      int            `json:"total_items"`
	Confidence      string         `json:"confidence"`
}

// Framework classes are reachable through convention and never flagged.
var frameworkClassSuffixes = []string{"Mailer", "Job", "Serializer"}

// ActiveRecord lifecycle callbacks are invoked by the framework, never
// through indexed call sites.
var lifecycleCallbacks = map[string]bool{
	"before_validation": true,
	"after_validation":  true,
	"before_save":       true,
	"after_save":        true,
	"before_create":     true,
	"after_create":      true,
	"before_update":     true,
	"after_update":      true,
	"before_destroy":    true,
	"after_destroy":     true,
	"after_initialize":  true,
	"after_find":        true,
	"after_touch":       true,
	"after_commit":      true,
	"after_rollback":    true,
}

// DetectDeadCode evaluates unused classes, methods and constants
// independently and assembles the report.
func (t *Tracker) DetectDeadCode() *DeadCodeReport {
	report := &DeadCodeReport{
		UnusedClasses:   t.unusedClasses(),
		UnusedMethods:   t.unusedMethods(),
		UnusedConstants: t.unusedConstants(),
	}
	report.TotalItems = len(report.UnusedClasses) + len(report.UnusedMethods) + len(report.UnusedConstants)
	report.Confidence = bucketConfidence(report)
	return report
}

// unusedClasses flags classes with no references, no called methods and no
// subclasses, outside the framework-convention allowlist.
func (t *Tracker) unusedClasses() []DeadCodeItem {
	var items []DeadCodeItem
	for _, cls := range t.graph.Classes() {
		if t.classExcluded(cls) {
			continue
		}
		if t.usages(cls.Name) > 0 || len(cls.Subclasses) > 0 {
			continue
		}
		if t.anyMethodCalled(cls) {
			continue
		}
		items = append(items, DeadCodeItem{
			Name:       cls.Name,
			Kind:       "class",
			File:       cls.File,
			Line:       cls.Line,
			Confidence: unusedClassConfidence,
			Reason:     "no references, no called methods, no subclasses",
		})
	}
	sortItems(items)
	return items
}

func (t *Tracker) classExcluded(cls *graph.ClassInfo) bool {
	if cls.IsModel || cls.IsController {
		return true
	}
	if strings.HasPrefix(cls.Name, "Application") {
		return true
	}
	for _, suffix := range frameworkClassSuffixes {
		if strings.HasSuffix(cls.Name, suffix) {
			return true
		}
	}
	return false
}

func (t *Tracker) anyMethodCalled(cls *graph.ClassInfo) bool {
	for _, id := range cls.Methods {
		m := t.graph.Method(id)
		if m == nil {
			continue
		}
		if len(m.CalledBy) > 0 || m.UsageCount > 0 {
			return true
		}
	}
	return false
}

// unusedMethods flags private/protected methods with an empty reverse call
// list and a zero usage count. Public methods are assumed externally
// reachable; controller actions and lifecycle callbacks are excluded.
func (t *Tracker) unusedMethods() []DeadCodeItem {
	var items []DeadCodeItem
	for _, m := range t.graph.Methods() {
		if m.Visibility != parser.Private && m.Visibility != parser.Protected {
			continue
		}
		if lifecycleCallbacks[m.Name] {
			continue
		}
		if cls := t.graph.Class(m.Class); cls != nil && cls.IsController {
			continue
		}
		if len(m.CalledBy) > 0 || m.UsageCount > 0 {
			continue
		}
		items = append(items, DeadCodeItem{
			Name:       m.ID,
			Kind:       "method",
			File:       m.File,
			Line:       m.Line,
			Confidence: unusedMethodConfidence,
			Reason:     string(m.Visibility) + " method with no recorded callers",
		})
	}
	sortItems(items)
	return items
}

// unusedConstants flags class-scoped constants with zero references anywhere.
func (t *Tracker) unusedConstants() []DeadCodeItem {
	var items []DeadCodeItem
	for _, cls := range t.graph.Classes() {
		for _, c := range cls.Constants {
			if t.usages(c) > 0 {
				continue
			}
			items = append(items, DeadCodeItem{
				Name:       cls.Name + "::" + c,
				Kind:       "constant",
				File:       cls.File,
				Confidence: unusedConstantConfidence,
				Reason:     "constant with zero references",
			})
		}
	}
	sortItems(items)
	return items
}

func bucketConfidence(r *DeadCodeReport) string {
	if r.TotalItems == 0 {
		return "high"
	}
	sum := 0.0
	for _, items := range [][]DeadCodeItem{r.UnusedClasses, r.UnusedMethods, r.UnusedConstants} {
		for _, item := range items {
			sum += item.Confidence
		}
	}
	mean := sum / float64(r.TotalItems)
	switch {
	case mean >= 0.8:
		return "high"
	case mean >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

func sortItems(items []DeadCodeItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
}
