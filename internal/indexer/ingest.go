package indexer

import (
	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/parser"
	"github.com/railscope/railscope/internal/rails"
)

// Call edge confidences. Dynamic dispatch means no edge is certain; explicit
// class receivers are stronger evidence than bare method tokens.
const (
	classCallConfidence = 0.95
	bareCallConfidence  = 0.90
)

// ingestNodes folds one file's scanned nodes into the graph. All mutations
// are additive; stale facts from a previous version of the file are not
// retracted.
func ingestNodes(g *graph.Graph, file string, nodes []parser.Node) {
	for _, n := range nodes {
		switch n.Kind {
		case parser.NodeClass:
			name := qualify(n.OwnerClass, n.Name)
			g.AddClass(&graph.ClassInfo{
				Name:       name,
				Superclass: n.Superclass,
				File:       file,
				Line:       n.Line,
			})
			g.AddReference(graph.Reference{
				SymbolName: name,
				Location:   graph.Location{File: file, Line: n.Line},
				Type:       graph.RefDefinition,
			})

		case parser.NodeModule:
			name := qualify(n.OwnerClass, n.Name)
			g.AddClass(&graph.ClassInfo{
				Name:     name,
				File:     file,
				Line:     n.Line,
				IsModule: true,
			})
			g.AddReference(graph.Reference{
				SymbolName: name,
				Location:   graph.Location{File: file, Line: n.Line},
				Type:       graph.RefDefinition,
			})

		case parser.NodeMethod:
			class := n.OwnerClass
			if class == "" {
				class = "Object"
			}
			id := graph.MethodID(class, n.Name, n.SelfMethod)
			g.AddMethod(&graph.MethodInfo{
				ID:         id,
				Class:      class,
				Name:       n.Name,
				Params:     n.Params,
				Visibility: n.Visibility,
				File:       file,
				Line:       n.Line,
			})
			g.AddReference(graph.Reference{
				SymbolName: id,
				Location:   graph.Location{File: file, Line: n.Line},
				Type:       graph.RefDefinition,
			})

		case parser.NodeCall:
			ingestCall(g, file, n)

		case parser.NodeMixin:
			if n.OwnerClass == "" {
				continue
			}
			g.AddClass(&graph.ClassInfo{
				Name:   n.OwnerClass,
				Mixins: []string{n.Name},
			})
			g.AddReference(graph.Reference{
				SymbolName: n.Name,
				Location:   graph.Location{File: file, Line: n.Line},
				Type:       graph.RefRead,
			})

		case parser.NodeAssociation:
			if n.OwnerClass == "" {
				continue
			}
			g.AddAssociation(graph.Association{
				SourceModel: n.OwnerClass,
				TargetModel: associationTarget(n.Association, n.Name),
				Type:        n.Association,
				Name:        n.Name,
			})

		case parser.NodeConstant:
			if n.OwnerClass != "" {
				g.AddConstant(n.OwnerClass, n.Name)
			}
			g.AddReference(graph.Reference{
				SymbolName: n.Name,
				Location:   graph.Location{File: file, Line: n.Line},
				Type:       graph.RefDefinition,
			})
		}
	}
}

// ingestCall records call edges and the reference trail a call leaves behind.
func ingestCall(g *graph.Graph, file string, n parser.Node) {
	loc := graph.Location{File: file, Line: n.Line}
	callerClass := n.OwnerClass
	if callerClass == "" {
		callerClass = "Object"
	}
	caller := graph.MethodID(callerClass, n.OwnerMethod, false)

	switch {
	case n.Receiver == "":
		// Bare token: most likely a method on the enclosing class.
		callee := graph.MethodID(callerClass, n.Name, false)
		g.AddMethodCall(graph.MethodCallEdge{
			Caller:     caller,
			Callee:     callee,
			Location:   loc,
			Confidence: bareCallConfidence,
		})
		g.AddReference(graph.Reference{SymbolName: n.Name, Location: loc, Type: graph.RefCall, Context: callerClass})

	case rails.IsCapitalized(n.Receiver):
		// Explicit class receiver: class-level call, or instantiation.
		refType := graph.RefRead
		if n.Name == "new" {
			refType = graph.RefInstantiation
		}
		g.AddReference(graph.Reference{SymbolName: n.Receiver, Location: loc, Type: refType, Context: n.Name})
		g.AddMethodCall(graph.MethodCallEdge{
			Caller:       caller,
			Callee:       graph.MethodID(n.Receiver, n.Name, true),
			Location:     loc,
			Confidence:   classCallConfidence,
			ReceiverType: n.Receiver,
		})

	default:
		// Unknown receiver type: no call edge, but the method vocabulary
		// feeds duck-typed inference.
		g.AddReference(graph.Reference{SymbolName: n.Receiver, Location: loc, Type: graph.RefCall, Context: n.Name})
	}
}

// associationTarget derives the conventional model name for an association.
func associationTarget(kind parser.AssociationKind, name string) string {
	if kind == parser.HasMany || kind == parser.HasAndBelongsToMany {
		name = rails.Singularize(name)
	}
	return rails.SnakeToCamel(name)
}

// qualify joins an owner namespace and a nested name.
func qualify(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "::" + name
}
