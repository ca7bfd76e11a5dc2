package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railscope/railscope/internal/graph"
)

// Test Plan for the search engine:
// - Match tiers: exact > prefix > substring > subsequence, non-matches excluded
// - Exact matches outrank boosted weaker matches
// - Kind filtering and kind bonus
// - Context relevance: same file, controller/model pairing, associations
// - Reinforcement: returned results climb on repeat queries
// - Limit truncation and default

func searchGraph() *graph.Graph {
	g := graph.New()
	g.AddClass(&graph.ClassInfo{Name: "ApplicationRecord"})
	g.AddClass(&graph.ClassInfo{Name: "ApplicationController"})
	g.AddClass(&graph.ClassInfo{Name: "User", Superclass: "ApplicationRecord", File: "app/models/user.rb", Line: 1})
	g.AddClass(&graph.ClassInfo{Name: "UserSession", Superclass: "ApplicationRecord", File: "app/models/user_session.rb", Line: 1})
	g.AddClass(&graph.ClassInfo{Name: "UsersController", Superclass: "ApplicationController", File: "app/controllers/users_controller.rb", Line: 1})
	g.AddClass(&graph.ClassInfo{Name: "Post", Superclass: "ApplicationRecord", File: "app/models/post.rb", Line: 1})
	g.AddMethod(&graph.MethodInfo{ID: "User#full_name", Class: "User", Name: "full_name", File: "app/models/user.rb", Line: 10})
	return g
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSearch_MatchTiers(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())
	results := e.Search("user", Options{})
	require.NotEmpty(t, results)

	// Exact match first, prefix matches after, substring after that.
	assert.Equal(t, "User", results[0].Symbol)
	syms := make([]string, len(results))
	for i, r := range results {
		syms[i] = r.Symbol
	}
	assert.Contains(t, syms, "UserSession")
	assert.Contains(t, syms, "UsersController")
	assert.NotContains(t, syms, "Post")
}

func TestSearch_ExactAlwaysBeatsBoostedWeakerMatch(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())
	e.now = fixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	// Pump usage and recency for a prefix match.
	for i := 0; i < 200; i++ {
		e.usage["UsersController"]++
	}
	e.lastAccess["UsersController"] = e.now()

	results := e.Search("user", Options{CurrentFile: "app/controllers/users_controller.rb"})
	require.NotEmpty(t, results)
	assert.Equal(t, "User", results[0].Symbol)
}

func TestSearch_NonMatchesExcluded(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())
	assert.Empty(t, e.Search("zzzqqq", Options{}))
	assert.Empty(t, e.Search("", Options{}))
}

func TestSearch_SubsequenceMatching(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())
	results := e.Search("usn", Options{Kind: KindClass})
	syms := make([]string, len(results))
	for i, r := range results {
		syms[i] = r.Symbol
	}
	// u-s-n appears in order in UserSession but not in Post.
	assert.Contains(t, syms, "UserSession")
	assert.NotContains(t, syms, "Post")
}

func TestSearch_KindFilter(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())

	methods := e.Search("full_name", Options{Kind: KindMethod})
	require.Len(t, methods, 1)
	assert.Equal(t, "User#full_name", methods[0].Symbol)
	assert.Equal(t, KindMethod, methods[0].Kind)

	classesOnly := e.Search("full_name", Options{Kind: KindClass})
	assert.Empty(t, classesOnly)
}

func TestSearch_ConstantCandidates(t *testing.T) {
	t.Parallel()

	g := searchGraph()
	g.AddConstant("User", "MAX_LOGIN_ATTEMPTS")
	e := NewEngine(g)

	results := e.Search("MAX_LOGIN_ATTEMPTS", Options{Kind: KindConstant})
	require.Len(t, results, 1)
	assert.Equal(t, "User::MAX_LOGIN_ATTEMPTS", results[0].Symbol)
}

func TestSearch_ControllerModelContextBonus(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())

	// Searching "us" from the users controller: User should outrank
	// UserSession because of the controller/model pairing bonus.
	results := e.Search("us", Options{Kind: KindClass, CurrentFile: "app/controllers/users_controller.rb"})
	pos := map[string]int{}
	for i, r := range results {
		pos[r.Symbol] = i
	}
	require.Contains(t, pos, "User")
	require.Contains(t, pos, "UserSession")
	assert.Less(t, pos["User"], pos["UserSession"])
}

func TestSearch_SameFileBonus(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())
	with := e.Search("full_name", Options{Kind: KindMethod, CurrentFile: "app/models/user.rb"})
	without := e.Search("full_name", Options{Kind: KindMethod})
	require.Len(t, with, 1)
	require.Len(t, without, 1)
	assert.Greater(t, with[0].Score, without[0].Score)
}

func TestSearch_ReinforcementSideEffect(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())
	e.now = fixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	first := e.Search("user", Options{})
	require.NotEmpty(t, first)

	for _, r := range first {
		assert.Equal(t, 1, e.usage[r.Symbol])
		assert.Equal(t, e.now(), e.lastAccess[r.Symbol])
	}

	second := e.Search("user", Options{})
	require.NotEmpty(t, second)
	assert.Greater(t, second[0].Score, first[0].Score)
}

func TestSearch_LimitTruncation(t *testing.T) {
	t.Parallel()

	e := NewEngine(searchGraph())
	results := e.Search("user", Options{Limit: 1})
	assert.Len(t, results, 1)
	assert.Equal(t, "User", results[0].Symbol)
}

func TestIsSubsequence(t *testing.T) {
	t.Parallel()

	assert.True(t, isSubsequence("usc", "userscontroller"))
	assert.True(t, isSubsequence("abc", "abc"))
	assert.False(t, isSubsequence("cba", "abc"))
	assert.False(t, isSubsequence("", "abc"))

	// Multi-byte queries compare rune by rune, not byte by byte.
	assert.True(t, isSubsequence("übr", "überbranche"))
	assert.False(t, isSubsequence("üx", "über"))
}
