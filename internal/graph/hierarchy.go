package graph

import (
	dgraph "github.com/dominikbraun/graph"
)

// InheritanceChain returns the superclass chain starting at the class itself.
// Inheritance is a DAG by construction in the source domain, but malformed
// input can self-reference, so the walk carries a visited set.
func (g *Graph) InheritanceChain(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var chain []string
	visited := make(map[string]bool)
	for name != "" && !visited[name] {
		visited[name] = true
		chain = append(chain, name)
		cls, ok := g.classes[name]
		if !ok {
			break
		}
		name = cls.Superclass
	}
	return chain
}

// AllSubclasses returns every transitive subclass of a class, unbounded
// depth. The traversal's visited set guards against malformed cyclic input.
func (g *Graph) AllSubclasses(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var subs []string
	_ = dgraph.DFS(g.hierarchy, name, func(id string) bool {
		if id != name {
			subs = append(subs, id)
		}
		return false
	})
	return subs
}

// AllAvailableMethods returns the method ids callable on a class: its own
// methods, then mixed-in module methods, then inherited methods, depth-first.
// The first definition of a method name wins.
func (g *Graph) AllAvailableMethods(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	byName := make(map[string]bool)
	visited := make(map[string]bool)

	var collect func(class string)
	collect = func(class string) {
		if class == "" || visited[class] {
			return
		}
		visited[class] = true
		cls, ok := g.classes[class]
		if !ok {
			return
		}
		for _, id := range cls.Methods {
			m := g.methods[id]
			if m == nil || byName[m.Name] {
				continue
			}
			byName[m.Name] = true
			out = append(out, id)
		}
		for _, mod := range cls.Mixins {
			collect(mod)
		}
		collect(cls.Superclass)
	}

	collect(name)
	return out
}

// HierarchyNode is one level of a reverse-call walk.
type HierarchyNode struct {
	MethodID string           `json:"method_id"`
	Callers  []*HierarchyNode `json:"callers,omitempty"`
}

// CallHierarchy walks callers of Class#method recursively. A visited set
// stops infinite recursion on call cycles; a method already expanded appears
// as a leaf.
func (g *Graph) CallHierarchy(class, method string) *HierarchyNode {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id := MethodID(class, method, false)
	if _, ok := g.methods[id]; !ok {
		alt := MethodID(class, method, true)
		if _, ok := g.methods[alt]; !ok {
			return nil
		}
		id = alt
	}

	visited := make(map[string]bool)
	var walk func(id string) *HierarchyNode
	walk = func(id string) *HierarchyNode {
		node := &HierarchyNode{MethodID: id}
		if visited[id] {
			return node
		}
		visited[id] = true
		if m, ok := g.methods[id]; ok {
			for _, caller := range m.CalledBy {
				node.Callers = append(node.Callers, walk(caller))
			}
		}
		return node
	}
	return walk(id)
}

// MethodID builds the canonical method identifier: Class#method for instance
// methods, Class.method for class-level methods.
func MethodID(class, method string, selfMethod bool) string {
	sep := "#"
	if selfMethod {
		sep = "."
	}
	return class + sep + method
}
