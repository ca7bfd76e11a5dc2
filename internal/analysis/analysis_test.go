package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/parser"
)

// Test Plan for reference tracking and dead-code detection:
// - FindReferences buckets by reference type
// - Models, controllers and framework-convention classes are never flagged
// - Lifecycle callbacks and public methods are never flagged
// - Confidence bucketing, including the vacuous empty report
// - Markdown rendering of a populated report

func TestFindReferences_Buckets(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddReference(graph.Reference{SymbolName: "User", Type: graph.RefDefinition, Location: graph.Location{File: "app/models/user.rb"}})
	g.AddReference(graph.Reference{SymbolName: "User", Type: graph.RefRead, Location: graph.Location{File: "app/controllers/users_controller.rb"}})
	g.AddReference(graph.Reference{SymbolName: "User", Type: graph.RefInstantiation, Location: graph.Location{File: "spec/models/user_spec.rb"}})
	g.AddReference(graph.Reference{SymbolName: "User", Type: graph.RefCall, Context: "find"})
	g.AddReference(graph.Reference{SymbolName: "User", Type: graph.RefWrite})

	rs := NewTracker(g).FindReferences("User")
	assert.Len(t, rs.Definitions, 1)
	assert.Len(t, rs.Reads, 1)
	assert.Len(t, rs.Writes, 1)
	assert.Len(t, rs.Calls, 1)
	assert.Len(t, rs.Instantiations, 1)
	assert.Equal(t, 5, rs.Total())

	empty := NewTracker(g).FindReferences("Ghost")
	assert.Equal(t, 0, empty.Total())
}

func TestDetectDeadCode_UnusedClass(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "LegacyImporter", File: "lib/legacy_importer.rb", Line: 1})

	report := NewTracker(g).DetectDeadCode()
	require.Len(t, report.UnusedClasses, 1)
	item := report.UnusedClasses[0]
	assert.Equal(t, "LegacyImporter", item.Name)
	assert.Equal(t, "class", item.Kind)
	assert.Equal(t, 0.8, item.Confidence)
}

func TestDetectDeadCode_NeverFlagsModelsOrControllers(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "ApplicationRecord"})
	g.AddClass(&graph.ClassInfo{Name: "User", Superclass: "ApplicationRecord"})
	g.AddClass(&graph.ClassInfo{Name: "ApplicationController"})
	g.AddClass(&graph.ClassInfo{Name: "UsersController", Superclass: "ApplicationController"})
	g.AddClass(&graph.ClassInfo{Name: "WelcomeMailer"})
	g.AddClass(&graph.ClassInfo{Name: "SyncJob"})
	g.AddClass(&graph.ClassInfo{Name: "UserSerializer"})

	report := NewTracker(g).DetectDeadCode()
	assert.Empty(t, report.UnusedClasses)
}

func TestDetectDeadCode_ClassWithSubclassKept(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "BaseImporter"})
	g.AddClass(&graph.ClassInfo{Name: "CsvImporter", Superclass: "BaseImporter"})

	report := NewTracker(g).DetectDeadCode()
	names := make([]string, 0, len(report.UnusedClasses))
	for _, item := range report.UnusedClasses {
		names = append(names, item.Name)
	}
	assert.NotContains(t, names, "BaseImporter")
	assert.Contains(t, names, "CsvImporter")
}

func TestDetectDeadCode_UnusedPrivateMethod(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "Report"})
	g.AddMethod(&graph.MethodInfo{ID: "Report#format_row", Class: "Report", Name: "format_row", Visibility: parser.Private})
	g.AddMethod(&graph.MethodInfo{ID: "Report#generate", Class: "Report", Name: "generate", Visibility: parser.Public})
	g.AddMethod(&graph.MethodInfo{ID: "Report#normalize", Class: "Report", Name: "normalize", Visibility: parser.Private})
	g.AddMethodCall(graph.MethodCallEdge{Caller: "Report#generate", Callee: "Report#normalize"})

	report := NewTracker(g).DetectDeadCode()
	require.Len(t, report.UnusedMethods, 1)
	assert.Equal(t, "Report#format_row", report.UnusedMethods[0].Name)
	assert.Equal(t, 0.9, report.UnusedMethods[0].Confidence)
}

func TestDetectDeadCode_SkipsLifecycleCallbacksAndControllers(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "ApplicationController"})
	g.AddClass(&graph.ClassInfo{Name: "UsersController", Superclass: "ApplicationController"})
	g.AddClass(&graph.ClassInfo{Name: "User"})
	g.AddMethod(&graph.MethodInfo{ID: "UsersController#set_user", Class: "UsersController", Name: "set_user", Visibility: parser.Private})
	g.AddMethod(&graph.MethodInfo{ID: "User#before_save", Class: "User", Name: "before_save", Visibility: parser.Private})
	g.AddMethod(&graph.MethodInfo{ID: "User#after_commit", Class: "User", Name: "after_commit", Visibility: parser.Protected})

	report := NewTracker(g).DetectDeadCode()
	assert.Empty(t, report.UnusedMethods)
}

func TestDetectDeadCode_UnusedConstant(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "Pricing"})
	g.AddConstant("Pricing", "TAX_RATE")
	g.AddConstant("Pricing", "BASE_FEE")
	g.AddReference(graph.Reference{SymbolName: "BASE_FEE", Type: graph.RefRead})

	report := NewTracker(g).DetectDeadCode()
	names := make([]string, 0, len(report.UnusedConstants))
	for _, item := range report.UnusedConstants {
		names = append(names, item.Name)
	}
	assert.Contains(t, names, "Pricing::TAX_RATE")
	assert.NotContains(t, names, "Pricing::BASE_FEE")
}

func TestDetectDeadCode_ConfidenceBuckets(t *testing.T) {
	t.Parallel()

	// Empty report is vacuously high.
	empty := NewTracker(graph.New()).DetectDeadCode()
	assert.Equal(t, 0, empty.TotalItems)
	assert.Equal(t, "high", empty.Confidence)

	// Only constants flagged: mean 0.7 buckets to medium.
	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "User", Superclass: "ApplicationRecord"})
	g.AddClass(&graph.ClassInfo{Name: "ApplicationRecord"})
	g.AddConstant("User", "MAX_LOGIN_ATTEMPTS")
	report := NewTracker(g).DetectDeadCode()
	require.Equal(t, 1, report.TotalItems)
	assert.Equal(t, "medium", report.Confidence)
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "LegacyImporter", File: "lib/legacy_importer.rb", Line: 3})
	report := NewTracker(g).DetectDeadCode()

	md := RenderMarkdown(report)
	assert.True(t, strings.HasPrefix(md, "# Dead Code Report"))
	assert.Contains(t, md, "## Unused Classes (1)")
	assert.Contains(t, md, "`LegacyImporter`")
	assert.Contains(t, md, "lib/legacy_importer.rb:3")

	emptyMD := RenderMarkdown(NewTracker(graph.New()).DetectDeadCode())
	assert.Contains(t, emptyMD, "No likely-unused symbols found.")
}
