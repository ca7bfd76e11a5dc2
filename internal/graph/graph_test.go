package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railscope/railscope/internal/parser"
)

// Test Plan for the semantic graph:
// - AddClass merges re-insertions and derives model/controller flags
// - Subclass back-references resolve immediately or via ResolvePending
// - Call edges keep Calls/CalledBy symmetric and bump usage counts
// - Type info obeys the source-priority overwrite rule
// - Traversals (subclasses, inheritance chain, call hierarchy) are cycle safe

func TestAddClass_DerivesFlags(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddClass(&ClassInfo{Name: "User", Superclass: "ApplicationRecord"})
	g.AddClass(&ClassInfo{Name: "UsersController", Superclass: "ApplicationController"})
	g.AddClass(&ClassInfo{Name: "AdminUser", Superclass: "User"})

	assert.True(t, g.Class("User").IsModel)
	assert.True(t, g.Class("UsersController").IsController)
	assert.True(t, g.Class("AdminUser").IsModel, "flags follow the visible superclass chain")
}

func TestAddClass_SubclassBackReference(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddClass(&ClassInfo{Name: "Base"})
	g.AddClass(&ClassInfo{Name: "Child", Superclass: "Base"})

	assert.Equal(t, []string{"Child"}, g.Class("Base").Subclasses)
}

func TestResolvePending_OrderIndependence(t *testing.T) {
	t.Parallel()

	// Child indexed before its superclass: the back-reference is pending
	// until ResolvePending runs.
	g := New()
	g.AddClass(&ClassInfo{Name: "Child", Superclass: "Base"})
	g.AddClass(&ClassInfo{Name: "Base", Superclass: "ApplicationRecord"})

	assert.Empty(t, g.Class("Base").Subclasses)

	g.ResolvePending()

	assert.Equal(t, []string{"Child"}, g.Class("Base").Subclasses)
	assert.True(t, g.Class("Child").IsModel, "flags cascade after resolution")
}

func TestAllSubclasses_Recursive(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddClass(&ClassInfo{Name: "A"})
	g.AddClass(&ClassInfo{Name: "B", Superclass: "A"})
	g.AddClass(&ClassInfo{Name: "C", Superclass: "B"})
	g.AddClass(&ClassInfo{Name: "D", Superclass: "A"})

	subs := g.AllSubclasses("A")
	assert.ElementsMatch(t, []string{"B", "C", "D"}, subs)
}

func TestAllSubclasses_SelfReferentialInput(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddClass(&ClassInfo{Name: "Loop", Superclass: "Loop"})

	assert.NotPanics(t, func() {
		g.AllSubclasses("Loop")
		g.InheritanceChain("Loop")
	})
}

func TestAddMethodCall_SymmetricEdges(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddMethod(&MethodInfo{ID: "A#caller", Class: "A", Name: "caller"})
	g.AddMethod(&MethodInfo{ID: "B#callee", Class: "B", Name: "callee"})

	g.AddMethodCall(MethodCallEdge{Caller: "A#caller", Callee: "B#callee", Confidence: 0.7})

	assert.Equal(t, []string{"B#callee"}, g.Method("A#caller").Calls)
	assert.Equal(t, []string{"A#caller"}, g.Method("B#callee").CalledBy)
	assert.Equal(t, 1, g.Method("B#callee").UsageCount)
}

func TestAddTypeInfo_PriorityRule(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddTypeInfo(TypeInformation{Symbol: "user.email", InferredType: "String", Confidence: 0.95, Source: SourceSchema})

	// Lower-priority duck-typed result must never overwrite schema.
	g.AddTypeInfo(TypeInformation{Symbol: "user.email", InferredType: "Collection", Confidence: 0.99, Source: SourceDuckTyped})
	ti := g.TypeInfo("user.email")
	require.NotNil(t, ti)
	assert.Equal(t, "String", ti.InferredType)
	assert.Equal(t, SourceSchema, ti.Source)

	// Same priority, higher confidence wins.
	g.AddTypeInfo(TypeInformation{Symbol: "user.email", InferredType: "String!", Confidence: 0.97, Source: SourceSchema})
	assert.Equal(t, "String!", g.TypeInfo("user.email").InferredType)

	// Same priority, lower confidence loses.
	g.AddTypeInfo(TypeInformation{Symbol: "user.email", InferredType: "Text", Confidence: 0.5, Source: SourceSchema})
	assert.Equal(t, "String!", g.TypeInfo("user.email").InferredType)

	// Strictly higher priority wins regardless of confidence.
	g.AddTypeInfo(TypeInformation{Symbol: "user.email", InferredType: "EmailAddress", Confidence: 0.1, Source: SourceExplicit})
	assert.Equal(t, "EmailAddress", g.TypeInfo("user.email").InferredType)
}

func TestAllAvailableMethods_DepthFirst(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddClass(&ClassInfo{Name: "Base"})
	g.AddMethod(&MethodInfo{ID: "Base#shared", Class: "Base", Name: "shared"})
	g.AddMethod(&MethodInfo{ID: "Base#inherited_only", Class: "Base", Name: "inherited_only"})

	g.AddClass(&ClassInfo{Name: "Helpers", IsModule: true})
	g.AddMethod(&MethodInfo{ID: "Helpers#helper", Class: "Helpers", Name: "helper"})

	g.AddClass(&ClassInfo{Name: "Child", Superclass: "Base", Mixins: []string{"Helpers"}})
	g.AddMethod(&MethodInfo{ID: "Child#shared", Class: "Child", Name: "shared"})

	methods := g.AllAvailableMethods("Child")
	assert.Contains(t, methods, "Child#shared")
	assert.NotContains(t, methods, "Base#shared", "own definition shadows inherited")
	assert.Contains(t, methods, "Helpers#helper")
	assert.Contains(t, methods, "Base#inherited_only")
}

func TestCallHierarchy_CycleSafe(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddMethod(&MethodInfo{ID: "A#x", Class: "A", Name: "x"})
	g.AddMethod(&MethodInfo{ID: "B#y", Class: "B", Name: "y"})
	g.AddMethodCall(MethodCallEdge{Caller: "A#x", Callee: "B#y"})
	g.AddMethodCall(MethodCallEdge{Caller: "B#y", Callee: "A#x"}) // call cycle

	node := g.CallHierarchy("B", "y")
	require.NotNil(t, node)
	require.Len(t, node.Callers, 1)
	assert.Equal(t, "A#x", node.Callers[0].MethodID)
	// The cycle back to B#y terminates as a leaf.
	require.Len(t, node.Callers[0].Callers, 1)
	assert.Empty(t, node.Callers[0].Callers[0].Callers)
}

func TestReferences_AccumulateWithoutDeduplication(t *testing.T) {
	t.Parallel()

	g := New()
	ref := Reference{SymbolName: "User", Location: Location{File: "a.rb", Line: 1}, Type: RefRead}
	g.AddReference(ref)
	g.AddReference(ref)

	assert.Len(t, g.References("User"), 2)
}

func TestStats_Derived(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddClass(&ClassInfo{Name: "User", Superclass: "ApplicationRecord"})
	g.AddClass(&ClassInfo{Name: "Helpers", IsModule: true})
	g.AddMethod(&MethodInfo{ID: "User#save", Class: "User", Name: "save", Visibility: parser.Public})
	g.AddAssociation(Association{SourceModel: "User", TargetModel: "Post", Type: parser.HasMany, Name: "posts"})
	g.AddReference(Reference{SymbolName: "User", Type: RefRead})

	s := g.Stats()
	assert.Equal(t, 1, s.Classes)
	assert.Equal(t, 1, s.Modules)
	assert.Equal(t, 1, s.Methods)
	assert.Equal(t, 1, s.Associations)
	assert.Equal(t, 1, s.References)
}
