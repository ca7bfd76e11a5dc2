package infer

import (
	"regexp"
	"strings"

	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/parser"
	"github.com/railscope/railscope/internal/rails"
	"github.com/railscope/railscope/internal/schema"
)

// Fixed strategy confidences.
const (
	schemaConfidence       = 0.95
	associationConfidence  = 0.90
	methodReturnConfidence = 0.80
	literalConfidence      = 1.00
)

// inferSchema resolves receiver.attr against the model's schema columns.
func inferSchema(e *Engine, expr string, ctx *Context) *graph.TypeInformation {
	receiver, attr, ok := splitReceiver(expr)
	if !ok {
		return nil
	}
	cls := e.receiverClass(receiver, ctx)
	if cls == nil || !cls.IsModel {
		return nil
	}
	col := e.schemaColumn(cls.Name, attr)
	if col == nil {
		return nil
	}
	mapped, known := schema.ColumnRubyTypes[col.Type]
	if !known {
		return nil
	}
	return &graph.TypeInformation{
		Symbol:       expr,
		InferredType: mapped,
		Confidence:   schemaConfidence,
		Source:       graph.SourceSchema,
	}
}

// inferAssociation resolves receiver.assoc against declared associations.
func inferAssociation(e *Engine, expr string, ctx *Context) *graph.TypeInformation {
	receiver, name, ok := splitReceiver(expr)
	if !ok {
		return nil
	}
	cls := e.receiverClass(receiver, ctx)
	if cls == nil {
		return nil
	}
	for _, a := range e.graph.Associations(cls.Name) {
		if a.Name != name {
			continue
		}
		t := a.TargetModel
		if a.Type == parser.HasMany || a.Type == parser.HasAndBelongsToMany {
			t = "ActiveRecord::Relation<" + a.TargetModel + ">"
		}
		return &graph.TypeInformation{
			Symbol:       expr,
			InferredType: t,
			Confidence:   associationConfidence,
			Source:       graph.SourceAssociation,
		}
	}
	return nil
}

// inferMethodReturn reuses the recorded return type of the callee, if any.
func inferMethodReturn(e *Engine, expr string, ctx *Context) *graph.TypeInformation {
	var m *graph.MethodInfo

	if receiver, name, ok := splitReceiver(expr); ok {
		cls := e.receiverClass(receiver, ctx)
		if cls == nil {
			return nil
		}
		m = e.graph.Method(graph.MethodID(cls.Name, name, false))
		if m == nil {
			m = e.graph.Method(graph.MethodID(cls.Name, name, true))
		}
	} else if ctx.Class != "" {
		m = e.graph.Method(graph.MethodID(ctx.Class, strings.TrimSuffix(expr, "()"), false))
	}

	if m == nil || m.ReturnType == "" {
		return nil
	}
	return &graph.TypeInformation{
		Symbol:       expr,
		InferredType: m.ReturnType,
		Confidence:   methodReturnConfidence,
		Source:       graph.SourceMethodReturn,
	}
}

// inferAssignment is a known gap: assignment tracking is intentionally
// unimplemented and the strategy always declines, keeping the slot visible
// in the chain rather than silently dropping the layer.
func inferAssignment(e *Engine, expr string, ctx *Context) *graph.TypeInformation {
	return nil
}

var (
	stringLitRe = regexp.MustCompile(`^(".*"|'.*')$`)
	intLitRe    = regexp.MustCompile(`^-?[0-9][0-9_]*$`)
	floatLitRe  = regexp.MustCompile(`^-?[0-9][0-9_]*\.[0-9]+$`)
	symbolLitRe = regexp.MustCompile(`^:[a-zA-Z_][a-zA-Z0-9_]*[?!]?$`)
)

// inferLiteral maps literal syntax directly to a primitive type.
func inferLiteral(e *Engine, expr string, ctx *Context) *graph.TypeInformation {
	var t string
	switch {
	case stringLitRe.MatchString(expr):
		t = "String"
	case floatLitRe.MatchString(expr):
		t = "Float"
	case intLitRe.MatchString(expr):
		t = "Integer"
	case expr == "true" || expr == "false":
		t = "Boolean"
	case expr == "nil":
		t = "NilClass"
	case strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]"):
		t = "Array"
	case strings.HasPrefix(expr, "{") && strings.HasSuffix(expr, "}"):
		t = "Hash"
	case symbolLitRe.MatchString(expr):
		t = "Symbol"
	default:
		return nil
	}
	return &graph.TypeInformation{
		Symbol:       expr,
		InferredType: t,
		Confidence:   literalConfidence,
		Source:       graph.SourceInferred,
	}
}

// Method-call vocabularies for duck-typed guessing. Confidence stays in the
// 0.5-0.7 band: these are weak signals.
var duckVocabularies = []struct {
	methods    []string
	inferred   string
	confidence float64
}{
	{[]string{"length", "upcase", "downcase", "strip", "capitalize"}, "String", 0.7},
	{[]string{"each", "map", "select", "reject", "reduce", "first", "last"}, "Array", 0.6},
	{[]string{"keys", "values", "fetch", "dig"}, "Hash", 0.6},
	{[]string{"save", "update", "destroy", "reload", "persisted?"}, "ActiveRecord::Base", 0.5},
}

// inferDuckTyped inspects accumulated call references against the symbol and
// pattern-matches method vocabularies.
func inferDuckTyped(e *Engine, expr string, ctx *Context) *graph.TypeInformation {
	called := make(map[string]bool)
	for _, ref := range e.graph.References(expr) {
		if ref.Type == graph.RefCall && ref.Context != "" {
			called[ref.Context] = true
		}
	}
	if len(called) == 0 {
		return nil
	}

	best := -1
	bestHits := 0
	for i, v := range duckVocabularies {
		hits := 0
		for _, m := range v.methods {
			if called[m] {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	v := duckVocabularies[best]
	return &graph.TypeInformation{
		Symbol:       expr,
		InferredType: v.inferred,
		Confidence:   v.confidence,
		Source:       graph.SourceDuckTyped,
	}
}

// InferModelTypes returns schema-backed attribute types for a model class.
func (e *Engine) InferModelTypes(class string) []graph.TypeInformation {
	cls := e.graph.Class(class)
	if cls == nil || !cls.IsModel || e.schema == nil {
		return nil
	}
	table := e.schema.Table(rails.TableName(class))
	if table == nil {
		return nil
	}
	var out []graph.TypeInformation
	for _, col := range table.Columns {
		mapped, known := schema.ColumnRubyTypes[col.Type]
		if !known {
			continue
		}
		out = append(out, graph.TypeInformation{
			Symbol:       class + "#" + col.Name,
			InferredType: mapped,
			Confidence:   schemaConfidence,
			Source:       graph.SourceSchema,
		})
	}
	return out
}

// InferAssociationTypes returns declared-association types for a class.
func (e *Engine) InferAssociationTypes(class string) map[string]graph.TypeInformation {
	assocs := e.graph.Associations(class)
	if len(assocs) == 0 {
		return nil
	}
	out := make(map[string]graph.TypeInformation, len(assocs))
	for _, a := range assocs {
		t := a.TargetModel
		if a.Type == parser.HasMany || a.Type == parser.HasAndBelongsToMany {
			t = "ActiveRecord::Relation<" + a.TargetModel + ">"
		}
		out[a.Name] = graph.TypeInformation{
			Symbol:       class + "#" + a.Name,
			InferredType: t,
			Confidence:   associationConfidence,
			Source:       graph.SourceAssociation,
		}
	}
	return out
}

// AvailableMethods returns the callable method ids for a type name.
func (e *Engine) AvailableMethods(typeName string) []string {
	return e.graph.AllAvailableMethods(typeName)
}
