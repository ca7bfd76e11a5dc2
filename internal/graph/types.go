package graph

import "github.com/railscope/railscope/internal/parser"

// Location is a source position attached to references and call edges.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// ClassInfo is the graph record for a class or module, keyed by
// fully-qualified name.
type ClassInfo struct {
	Name       string   `json:"name"` // fully qualified (Admin::UsersController)
	Superclass string   `json:"superclass,omitempty"`
	Mixins     []string `json:"mixins,omitempty"`
	Subclasses []string `json:"subclasses,omitempty"`
	Methods    []string `json:"methods,omitempty"` // method ids
	Constants  []string `json:"constants,omitempty"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	IsModule   bool     `json:"is_module,omitempty"`

	// Framework-convention flags, derived from the superclass chain at
	// insertion time.
	IsModel      bool `json:"is_model,omitempty"`
	IsController bool `json:"is_controller,omitempty"`
}

// MethodInfo is the graph record for a method.
// ID is "Class#method" for instance methods and "Class.method" for
// class-level methods.
type MethodInfo struct {
	ID         string            `json:"id"`
	Class      string            `json:"class"`
	Name       string            `json:"name"`
	Params     []parser.Param    `json:"params,omitempty"`
	Visibility parser.Visibility `json:"visibility"`
	ReturnType string            `json:"return_type,omitempty"`
	Calls      []string          `json:"calls,omitempty"`     // callee method ids
	CalledBy   []string          `json:"called_by,omitempty"` // caller method ids
	UsageCount int               `json:"usage_count"`
	File       string            `json:"file"`
	Line       int               `json:"line"`
}

// MethodCallEdge records one observed call site. Confidence reflects the
// uncertainty of dynamic dispatch, never a guarantee.
type MethodCallEdge struct {
	Caller       string   `json:"caller"`
	Callee       string   `json:"callee"`
	Location     Location `json:"location"`
	Confidence   float64  `json:"confidence"`
	ReceiverType string   `json:"receiver_type,omitempty"`
}

// ReferenceType categorizes a reference occurrence.
type ReferenceType string

const (
	RefDefinition    ReferenceType = "definition"
	RefRead          ReferenceType = "read"
	RefWrite         ReferenceType = "write"
	RefCall          ReferenceType = "call"
	RefInstantiation ReferenceType = "instantiation"
)

// Reference is one occurrence of a symbol name. References accumulate and
// are never deduplicated.
type Reference struct {
	SymbolName string        `json:"symbol_name"`
	Location   Location      `json:"location"`
	Type       ReferenceType `json:"type"`
	Context    string        `json:"context,omitempty"`
}

// Association is a declared model relationship. TargetModel is derived from
// naming convention and is not guaranteed to resolve.
type Association struct {
	SourceModel string                 `json:"source_model"`
	TargetModel string                 `json:"target_model"`
	Type        parser.AssociationKind `json:"type"`
	Name        string                 `json:"name"`
}

// TypeSource identifies which inference layer produced a type. Higher values
// take priority when recording type information.
type TypeSource int

const (
	SourceDuckTyped TypeSource = iota
	SourceInferred
	SourceMethodReturn
	SourceAssociation
	SourceSchema
	SourceExplicit
)

func (s TypeSource) String() string {
	switch s {
	case SourceDuckTyped:
		return "duck_typed"
	case SourceInferred:
		return "inferred"
	case SourceMethodReturn:
		return "method_return"
	case SourceAssociation:
		return "association"
	case SourceSchema:
		return "schema"
	case SourceExplicit:
		return "explicit"
	}
	return "unknown"
}

// TypeInformation is an inferred type with its reliability estimate.
type TypeInformation struct {
	Symbol       string     `json:"symbol"`
	InferredType string     `json:"inferred_type"`
	Confidence   float64    `json:"confidence"`
	Source       TypeSource `json:"source"`
}

// Stats summarizes graph contents. Always derived, never cached.
type Stats struct {
	Classes      int `json:"classes"`
	Modules      int `json:"modules"`
	Methods      int `json:"methods"`
	CallEdges    int `json:"call_edges"`
	References   int `json:"references"`
	Associations int `json:"associations"`
	TypedSymbols int `json:"typed_symbols"`
}
