package infer

import (
	"strings"

	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/rails"
	"github.com/railscope/railscope/internal/schema"
)

// Context is caller-supplied information about where an expression occurs.
type Context struct {
	Class  string            // enclosing class, fully qualified
	Method string            // enclosing method name
	File   string            // source file of the expression
	Locals map[string]string // declared local variable -> type name
}

// Strategy is one pure inference layer. Returning nil means "no opinion";
// the engine then falls through to the next strategy.
type Strategy struct {
	Name  string
	Infer func(e *Engine, expr string, ctx *Context) *graph.TypeInformation
}

// Engine infers types from the semantic graph and the parsed schema.
//
// Inference is heuristic: every result carries a confidence score, never a
// guarantee. Strategies run in a fixed priority order and the first success
// wins; the order is a value, not incidental control flow.
type Engine struct {
	graph      *graph.Graph
	schema     *schema.Schema
	strategies []Strategy
}

// NewEngine creates an inference engine over a graph and an optional schema
// (nil when no schema source was available).
func NewEngine(g *graph.Graph, s *schema.Schema) *Engine {
	return &Engine{
		graph:  g,
		schema: s,
		strategies: []Strategy{
			{Name: "schema", Infer: inferSchema},
			{Name: "association", Infer: inferAssociation},
			{Name: "method_return", Infer: inferMethodReturn},
			{Name: "assignment", Infer: inferAssignment},
			{Name: "literal", Infer: inferLiteral},
			{Name: "duck_typed", Infer: inferDuckTyped},
		},
	}
}

// InferType runs the strategy chain. Returns nil when no layer succeeds.
func (e *Engine) InferType(expr string, ctx *Context) *graph.TypeInformation {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	if ctx == nil {
		ctx = &Context{}
	}
	for _, s := range e.strategies {
		if ti := s.Infer(e, expr, ctx); ti != nil {
			return ti
		}
	}
	return nil
}

// VariableType resolves the type of a bare variable token: instance variables
// through the containing model class, declared locals through the context
// map, and capitalized identifiers as class references.
func (e *Engine) VariableType(name string, ctx *Context) string {
	if ctx == nil {
		ctx = &Context{}
	}

	if strings.HasPrefix(name, "@") {
		// Instance variables resolve only inside model classes, where the
		// attribute convention makes the guess defensible.
		cls := e.graph.Class(ctx.Class)
		if cls == nil || !cls.IsModel {
			return ""
		}
		attr := strings.TrimPrefix(name, "@")
		if col := e.schemaColumn(ctx.Class, attr); col != nil {
			return schema.ColumnRubyTypes[col.Type]
		}
		guess := rails.SnakeToCamel(attr)
		if e.graph.Class(guess) != nil {
			return guess
		}
		return ""
	}

	if t, ok := ctx.Locals[name]; ok {
		return t
	}

	if rails.IsCapitalized(name) && e.graph.Class(name) != nil {
		return name
	}

	return ""
}

// receiverClass resolves the class a receiver token refers to, or nil.
func (e *Engine) receiverClass(receiver string, ctx *Context) *graph.ClassInfo {
	switch {
	case receiver == "" || receiver == "self":
		return e.graph.Class(ctx.Class)
	case rails.IsCapitalized(receiver):
		return e.graph.Class(receiver)
	}

	if t := e.VariableType(receiver, ctx); t != "" {
		if cls := e.graph.Class(t); cls != nil {
			return cls
		}
	}

	// Convention fallback: a lowercase receiver named like a model refers
	// to an instance of it (user -> User).
	name := strings.TrimPrefix(receiver, "@")
	if cls := e.graph.Class(rails.SnakeToCamel(name)); cls != nil {
		return cls
	}
	return nil
}

// schemaColumn looks up a column on the model's conventional table.
func (e *Engine) schemaColumn(model, attr string) *schema.Column {
	if e.schema == nil {
		return nil
	}
	table := e.schema.Table(rails.TableName(model))
	return table.Column(attr)
}

// splitReceiver splits "receiver.member" expressions. ok is false for
// expressions without exactly one dot.
func splitReceiver(expr string) (receiver, member string, ok bool) {
	parts := strings.Split(expr, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], "()"), true
}
