package analysis

import (
	"github.com/railscope/railscope/internal/graph"
)

// ReferenceSets partitions accumulated references for one symbol name.
type ReferenceSets struct {
	Symbol         string            `json:"symbol"`
	Definitions    []graph.Reference `json:"definitions,omitempty"`
	Reads          []graph.Reference `json:"reads,omitempty"`
	Writes         []graph.Reference `json:"writes,omitempty"`
	Calls          []graph.Reference `json:"calls,omitempty"`
	Instantiations []graph.Reference `json:"instantiations,omitempty"`
}

// Total returns the number of references across all buckets.
func (rs *ReferenceSets) Total() int {
	return len(rs.Definitions) + len(rs.Reads) + len(rs.Writes) + len(rs.Calls) + len(rs.Instantiations)
}

// Tracker answers reference and dead-code queries over a graph. It is a
// read-only consumer; it never mutates the graph.
type Tracker struct {
	graph *graph.Graph
}

// NewTracker creates a reference tracker over the given graph.
func NewTracker(g *graph.Graph) *Tracker {
	return &Tracker{graph: g}
}

// FindReferences buckets every accumulated reference to a symbol name.
func (t *Tracker) FindReferences(symbol string) *ReferenceSets {
	rs := &ReferenceSets{Symbol: symbol}
	for _, ref := range t.graph.References(symbol) {
		switch ref.Type {
		case graph.RefDefinition:
			rs.Definitions = append(rs.Definitions, ref)
		case graph.RefRead:
			rs.Reads = append(rs.Reads, ref)
		case graph.RefWrite:
			rs.Writes = append(rs.Writes, ref)
		case graph.RefCall:
			rs.Calls = append(rs.Calls, ref)
		case graph.RefInstantiation:
			rs.Instantiations = append(rs.Instantiations, ref)
		}
	}
	return rs
}

// usages counts references to a symbol excluding its own definitions.
func (t *Tracker) usages(symbol string) int {
	n := 0
	for _, ref := range t.graph.References(symbol) {
		if ref.Type != graph.RefDefinition {
			n++
		}
	}
	return n
}
