package rails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for route parsing:
// - resources :x expands to the 7 standard REST actions with their verbs
// - Explicit verb routes with to: and optional as:
// - Lookups keyed by Controller#action
// - Unrecognized lines skipped; empty source yields an empty table

func TestParseRoutes_ResourcesExpansion(t *testing.T) {
	t.Parallel()

	rt := ParseRoutes("resources :users")
	assert.Equal(t, 7, rt.Len())

	wantVerbs := map[string]string{
		"index":   "GET",
		"show":    "GET",
		"new":     "GET",
		"create":  "POST",
		"edit":    "GET",
		"update":  "PATCH",
		"destroy": "DELETE",
	}
	for action, verb := range wantVerbs {
		r, ok := rt.RouteInfo("UsersController", action)
		require.True(t, ok, action)
		assert.Equal(t, verb, r.Verb, action)
	}

	show, _ := rt.RouteInfo("UsersController", "show")
	assert.Equal(t, "/users/:id", show.Path)
	edit, _ := rt.RouteInfo("UsersController", "edit")
	assert.Equal(t, "/users/:id/edit", edit.Path)
	assert.Equal(t, "edit_user", edit.Name)
}

func TestParseRoutes_ExplicitRoutes(t *testing.T) {
	t.Parallel()

	rt := ParseRoutes(`get 'profile', to: 'users#show', as: 'profile'
post '/sessions', to: 'sessions#create'`)

	r, ok := rt.RouteInfo("UsersController", "show")
	require.True(t, ok)
	assert.Equal(t, "GET", r.Verb)
	assert.Equal(t, "profile", r.Path)
	assert.Equal(t, "profile", r.Name)

	s, ok := rt.RouteInfo("SessionsController", "create")
	require.True(t, ok)
	assert.Equal(t, "POST", s.Verb)
	assert.Empty(t, s.Name)
}

func TestParseRoutes_ControllerRoutes(t *testing.T) {
	t.Parallel()

	rt := ParseRoutes(`resources :posts
resources :users`)

	routes := rt.ControllerRoutes("PostsController")
	require.Len(t, routes, 7)
	assert.Equal(t, "index", routes[0].Action)
	assert.Equal(t, "destroy", routes[6].Action)
}

func TestParseRoutes_UnrecognizedLinesSkipped(t *testing.T) {
	t.Parallel()

	rt := ParseRoutes(`Rails.application.routes.draw do
  # comment
  root "home#index"
  resources :users
end`)
	assert.Equal(t, 7, rt.Len())
}

func TestParseRoutes_EmptySource(t *testing.T) {
	t.Parallel()

	rt := ParseRoutes("")
	assert.Equal(t, 0, rt.Len())
	_, ok := rt.RouteInfo("UsersController", "index")
	assert.False(t, ok)
}
