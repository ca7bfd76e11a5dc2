package graph

import (
	"sync"

	dgraph "github.com/dominikbraun/graph"
)

// Graph is the canonical in-memory semantic store.
//
// It is an explicitly owned instance threaded through constructors, never a
// package-level singleton, so multiple independent indexes can coexist and be
// torn down by dropping the reference. All mutations are additive; a file's
// prior contributions are not retracted before re-insertion.
type Graph struct {
	mu sync.RWMutex

	classes      map[string]*ClassInfo
	methods      map[string]*MethodInfo
	calls        []MethodCallEdge
	references   map[string][]Reference
	associations map[string][]Association
	types        map[string]*TypeInformation
	mixinUsers   map[string][]string // module name -> including classes

	// Directed superclass -> subclass and caller -> callee mirrors used for
	// traversals. Vertices are class/method identifiers.
	hierarchy dgraph.Graph[string, string]
	callGraph dgraph.Graph[string, string]

	// Cross-file subclass links whose superclass was not yet present at
	// insertion time. Resolved by ResolvePending at the end of a run.
	pendingSubclass []pendingLink
}

type pendingLink struct {
	child      string
	superclass string
}

// New creates an empty semantic graph.
func New() *Graph {
	return &Graph{
		classes:      make(map[string]*ClassInfo),
		methods:      make(map[string]*MethodInfo),
		references:   make(map[string][]Reference),
		associations: make(map[string][]Association),
		types:        make(map[string]*TypeInformation),
		mixinUsers:   make(map[string][]string),
		hierarchy:    dgraph.New(dgraph.StringHash, dgraph.Directed()),
		callGraph:    dgraph.New(dgraph.StringHash, dgraph.Directed()),
	}
}

// Rails base classes that mark a subclass tree as model or controller.
var (
	modelBases      = map[string]bool{"ApplicationRecord": true, "ActiveRecord::Base": true}
	controllerBases = map[string]bool{"ApplicationController": true, "ActionController::Base": true}
)

// AddClass inserts or merges a class record. Accumulated bookkeeping
// (methods, subclasses, constants) survives re-insertion of the same name.
func (g *Graph) AddClass(info *ClassInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.classes[info.Name]; ok {
		info.Methods = mergeUnique(existing.Methods, info.Methods)
		info.Subclasses = mergeUnique(existing.Subclasses, info.Subclasses)
		info.Constants = mergeUnique(existing.Constants, info.Constants)
		info.Mixins = mergeUnique(existing.Mixins, info.Mixins)
		// Partial re-insertions (a mixin line, a reopened class body) must
		// not clobber facts recorded by the original definition.
		if info.Superclass == "" {
			info.Superclass = existing.Superclass
		}
		if info.File == "" {
			info.File = existing.File
			info.Line = existing.Line
		}
		info.IsModule = info.IsModule || existing.IsModule
	}
	g.deriveFlags(info)
	g.classes[info.Name] = info
	_ = g.hierarchy.AddVertex(info.Name)

	for _, mod := range info.Mixins {
		if !contains(g.mixinUsers[mod], info.Name) {
			g.mixinUsers[mod] = append(g.mixinUsers[mod], info.Name)
		}
	}

	if info.Superclass != "" {
		if sup, ok := g.classes[info.Superclass]; ok {
			g.linkSubclass(sup, info.Name)
		} else {
			// Superclass not indexed yet: ordering-dependent without the
			// ResolvePending second pass.
			g.pendingSubclass = append(g.pendingSubclass, pendingLink{child: info.Name, superclass: info.Superclass})
			_ = g.hierarchy.AddVertex(info.Superclass)
			_ = g.hierarchy.AddEdge(info.Superclass, info.Name)
		}
	}
}

// linkSubclass records the child on the superclass and mirrors the edge.
// Caller holds the lock.
func (g *Graph) linkSubclass(sup *ClassInfo, child string) {
	if !contains(sup.Subclasses, child) {
		sup.Subclasses = append(sup.Subclasses, child)
	}
	_ = g.hierarchy.AddVertex(sup.Name)
	_ = g.hierarchy.AddVertex(child)
	_ = g.hierarchy.AddEdge(sup.Name, child)
}

// deriveFlags marks model/controller classes from the (locally visible)
// superclass chain. Caller holds the lock.
func (g *Graph) deriveFlags(info *ClassInfo) {
	seen := map[string]bool{info.Name: true}
	sup := info.Superclass
	for sup != "" && !seen[sup] {
		seen[sup] = true
		if modelBases[sup] {
			info.IsModel = true
			return
		}
		if controllerBases[sup] {
			info.IsController = true
			return
		}
		parent, ok := g.classes[sup]
		if !ok {
			return
		}
		if parent.IsModel {
			info.IsModel = true
			return
		}
		if parent.IsController {
			info.IsController = true
			return
		}
		sup = parent.Superclass
	}
}

// ResolvePending re-runs cross-file subclass registration and flag
// derivation for links whose target appeared after the child was indexed.
// Running it after a batch makes the final edge shape independent of file
// ordering within the run.
func (g *Graph) ResolvePending() {
	g.mu.Lock()
	defer g.mu.Unlock()

	var unresolved []pendingLink
	for _, p := range g.pendingSubclass {
		sup, ok := g.classes[p.superclass]
		if !ok {
			unresolved = append(unresolved, p)
			continue
		}
		g.linkSubclass(sup, p.child)
	}
	g.pendingSubclass = unresolved

	// Flags may cascade once intermediate superclasses exist.
	for _, c := range g.classes {
		if !c.IsModel && !c.IsController {
			g.deriveFlags(c)
		}
	}

	// Rebuild call bookkeeping from the recorded edges, picking up callees
	// that were defined after their call sites were ingested.
	for _, m := range g.methods {
		m.Calls = nil
		m.CalledBy = nil
		m.UsageCount = 0
	}
	for _, e := range g.calls {
		g.linkCall(e)
	}
}

// linkCall keeps caller.Calls / callee.CalledBy symmetric for one edge.
// Caller holds the lock.
func (g *Graph) linkCall(edge MethodCallEdge) {
	if caller, ok := g.methods[edge.Caller]; ok && !contains(caller.Calls, edge.Callee) {
		caller.Calls = append(caller.Calls, edge.Callee)
	}
	if callee, ok := g.methods[edge.Callee]; ok {
		if !contains(callee.CalledBy, edge.Caller) {
			callee.CalledBy = append(callee.CalledBy, edge.Caller)
		}
		callee.UsageCount++
	}
}

// AddMethod inserts a method record and registers it on its class, creating
// a placeholder class record if the class has not been seen yet.
func (g *Graph) AddMethod(m *MethodInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.methods[m.ID]; ok {
		m.Calls = mergeUnique(existing.Calls, m.Calls)
		m.CalledBy = mergeUnique(existing.CalledBy, m.CalledBy)
		m.UsageCount += existing.UsageCount
	}
	g.methods[m.ID] = m
	_ = g.callGraph.AddVertex(m.ID)

	cls, ok := g.classes[m.Class]
	if !ok {
		cls = &ClassInfo{Name: m.Class}
		g.classes[cls.Name] = cls
		_ = g.hierarchy.AddVertex(cls.Name)
	}
	if !contains(cls.Methods, m.ID) {
		cls.Methods = append(cls.Methods, m.ID)
	}
}

// AddMethodCall records a call edge and keeps caller.Calls / callee.CalledBy
// symmetric.
func (g *Graph) AddMethodCall(edge MethodCallEdge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, edge)

	_ = g.callGraph.AddVertex(edge.Caller)
	_ = g.callGraph.AddVertex(edge.Callee)
	_ = g.callGraph.AddEdge(edge.Caller, edge.Callee)

	g.linkCall(edge)
}

// AddReference appends a reference occurrence. Never deduplicated.
func (g *Graph) AddReference(ref Reference) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.references[ref.SymbolName] = append(g.references[ref.SymbolName], ref)
}

// AddAssociation records a declared model relationship.
func (g *Graph) AddAssociation(a Association) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.associations[a.SourceModel] {
		if existing.Name == a.Name && existing.Type == a.Type {
			return
		}
	}
	g.associations[a.SourceModel] = append(g.associations[a.SourceModel], a)
}

// AddConstant registers a class-scoped constant.
func (g *Graph) AddConstant(class, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cls, ok := g.classes[class]
	if !ok {
		cls = &ClassInfo{Name: class}
		g.classes[class] = cls
		_ = g.hierarchy.AddVertex(class)
	}
	if !contains(cls.Constants, name) {
		cls.Constants = append(cls.Constants, name)
	}
}

// AddTypeInfo records inferred type information for a symbol. An existing
// entry is overwritten only by a strictly higher-priority source, or by the
// same source with higher confidence.
func (g *Graph) AddTypeInfo(ti TypeInformation) {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing, ok := g.types[ti.Symbol]
	if ok {
		if ti.Source < existing.Source {
			return
		}
		if ti.Source == existing.Source && ti.Confidence <= existing.Confidence {
			return
		}
	}
	copied := ti
	g.types[ti.Symbol] = &copied
}

// Class returns the record for a fully-qualified name, or nil.
func (g *Graph) Class(name string) *ClassInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.classes[name]
}

// Classes returns a snapshot of all class records.
func (g *Graph) Classes() []*ClassInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*ClassInfo, 0, len(g.classes))
	for _, c := range g.classes {
		out = append(out, c)
	}
	return out
}

// Method returns the record for a method id, or nil.
func (g *Graph) Method(id string) *MethodInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.methods[id]
}

// Methods returns a snapshot of all method records.
func (g *Graph) Methods() []*MethodInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*MethodInfo, 0, len(g.methods))
	for _, m := range g.methods {
		out = append(out, m)
	}
	return out
}

// References returns all accumulated references for a symbol name.
func (g *Graph) References(symbol string) []Reference {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Reference(nil), g.references[symbol]...)
}

// ReferencedSymbols returns every symbol name with at least one reference.
func (g *Graph) ReferencedSymbols() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.references))
	for name := range g.references {
		out = append(out, name)
	}
	return out
}

// Associations returns the declared associations of a model.
func (g *Graph) Associations(model string) []Association {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Association(nil), g.associations[model]...)
}

// AllAssociations returns every declared association across all models.
func (g *Graph) AllAssociations() []Association {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Association
	for _, as := range g.associations {
		out = append(out, as...)
	}
	return out
}

// MixinUsers returns the classes including the named module.
func (g *Graph) MixinUsers(module string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.mixinUsers[module]...)
}

// TypeInfo returns recorded type information for a symbol, or nil.
func (g *Graph) TypeInfo(symbol string) *TypeInformation {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.types[symbol]
}

// CallEdges returns a snapshot of all recorded call edges.
func (g *Graph) CallEdges() []MethodCallEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]MethodCallEdge(nil), g.calls...)
}

// Stats derives current graph counts.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{
		Methods:      len(g.methods),
		CallEdges:    len(g.calls),
		TypedSymbols: len(g.types),
	}
	for _, c := range g.classes {
		if c.IsModule {
			s.Modules++
		} else {
			s.Classes++
		}
	}
	for _, refs := range g.references {
		s.References += len(refs)
	}
	for _, as := range g.associations {
		s.Associations += len(as)
	}
	return s
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func mergeUnique(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, v := range b {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
