package search

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/rails"
)

// Kind filters and scores candidates by symbol category.
type Kind string

const (
	KindAny      Kind = "any"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindConstant Kind = "constant"
)

// DefaultLimit caps result sets when the caller does not set one.
const DefaultLimit = 50

// Options carries the query context used for relevance bonuses.
type Options struct {
	Kind        Kind   `json:"kind,omitempty"`
	CurrentFile string `json:"current_file,omitempty"`
	FileType    string `json:"file_type,omitempty"` // model, controller, spec, lib
	Limit       int    `json:"limit,omitempty"`
}

// Result is one ranked symbol.
type Result struct {
	Symbol string  `json:"symbol"`
	Kind   Kind    `json:"kind"`
	File   string  `json:"file,omitempty"`
	Line   int     `json:"line,omitempty"`
	Score  float64 `json:"score"`
}

// Engine ranks indexed symbols by match quality plus usage, recency and
// context bonuses. Returned results reinforce their own future ranking.
type Engine struct {
	mu         sync.Mutex
	graph      *graph.Graph
	usage      map[string]int
	lastAccess map[string]time.Time
	now        func() time.Time
}

// NewEngine creates a search engine over the given graph.
func NewEngine(g *graph.Graph) *Engine {
	return &Engine{
		graph:      g,
		usage:      make(map[string]int),
		lastAccess: make(map[string]time.Time),
		now:        time.Now,
	}
}

type candidate struct {
	name string // the matchable short name
	Result
}

// Search returns symbols matching the query, ranked descending. Non-matching
// symbols are excluded outright rather than scored zero.
func (e *Engine) Search(query string, opts Options) []Result {
	if query == "" {
		return nil
	}
	if opts.Kind == "" {
		opts.Kind = KindAny
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctxClass := e.contextClass(opts.CurrentFile)

	var matched []candidate
	for _, c := range e.candidates(opts.Kind) {
		tier, ok := matchTier(query, c.name)
		if !ok {
			continue
		}
		c.Score = tier + e.bonuses(&c, opts, ctxClass)
		matched = append(matched, c)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].Symbol < matched[j].Symbol
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	now := e.now()
	out := make([]Result, len(matched))
	for i, c := range matched {
		e.usage[c.Symbol]++
		e.lastAccess[c.Symbol] = now
		out[i] = c.Result
	}
	return out
}

// candidates enumerates graph symbols of the requested kind.
func (e *Engine) candidates(kind Kind) []candidate {
	var out []candidate

	if kind == KindAny || kind == KindClass {
		for _, cls := range e.graph.Classes() {
			short := cls.Name
			if i := strings.LastIndex(short, "::"); i >= 0 {
				short = short[i+2:]
			}
			out = append(out, candidate{
				name: short,
				Result: Result{
					Symbol: cls.Name,
					Kind:   KindClass,
					File:   cls.File,
					Line:   cls.Line,
				},
			})
		}
	}

	if kind == KindAny || kind == KindMethod {
		for _, m := range e.graph.Methods() {
			out = append(out, candidate{
				name: m.Name,
				Result: Result{
					Symbol: m.ID,
					Kind:   KindMethod,
					File:   m.File,
					Line:   m.Line,
				},
			})
		}
	}

	if kind == KindAny || kind == KindConstant {
		for _, cls := range e.graph.Classes() {
			for _, c := range cls.Constants {
				out = append(out, candidate{
					name: c,
					Result: Result{
						Symbol: cls.Name + "::" + c,
						Kind:   KindConstant,
						File:   cls.File,
					},
				})
			}
		}
	}

	return out
}

// contextClass finds the class defined in the caller's current file, if any.
func (e *Engine) contextClass(file string) *graph.ClassInfo {
	if file == "" {
		return nil
	}
	for _, cls := range e.graph.Classes() {
		if cls.File == file {
			return cls
		}
	}
	return nil
}

// controllerModelPair reports whether one class is the conventional model for
// the other's controller (UsersController <-> User).
func controllerModelPair(a, b *graph.ClassInfo) bool {
	if a == nil || b == nil {
		return false
	}
	ctrl, model := a, b
	if !ctrl.IsController {
		ctrl, model = b, a
	}
	if !ctrl.IsController || !model.IsModel {
		return false
	}
	base := strings.TrimSuffix(ctrl.Name, "Controller")
	if i := strings.LastIndex(base, "::"); i >= 0 {
		base = base[i+2:]
	}
	name := model.Name
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return rails.Singularize(base) == name || base == rails.Pluralize(name)
}
