package rails

import (
	"regexp"
	"strings"
)

// Route is one recognized route declaration or expansion.
type Route struct {
	Verb       string `json:"verb"`
	Path       string `json:"path"`
	Controller string `json:"controller"` // CamelCase with Controller suffix
	Action     string `json:"action"`
	Name       string `json:"name,omitempty"`
}

// RouteTable holds parsed routes keyed by "Controller#action".
type RouteTable struct {
	routes map[string]Route
	order  []string
}

// The 7 standard REST actions in conventional order, with their verbs.
var restActions = []struct {
	action string
	verb   string
	suffix string
}{
	{"index", "GET", ""},
	{"show", "GET", "/:id"},
	{"new", "GET", "/new"},
	{"create", "POST", ""},
	{"edit", "GET", "/:id/edit"},
	{"update", "PATCH", "/:id"},
	{"destroy", "DELETE", "/:id"},
}

var (
	resourcesRe     = regexp.MustCompile(`^resources\s+:([a-z_][a-z0-9_]*)`)
	explicitRouteRe = regexp.MustCompile(`^(get|post|put|patch|delete)\s+["']([^"']+)["'],\s*to:\s*["']([a-z0-9_/]+)#([a-z0-9_]+)["'](?:.*\bas:\s*["']([a-z0-9_]+)["'])?`)
)

// ParseRoutes parses route declarations from source text. Unrecognized lines
// are skipped. Missing source yields an empty, usable table.
func ParseRoutes(source string) *RouteTable {
	rt := &RouteTable{routes: make(map[string]Route)}

	for _, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := resourcesRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			controller := SnakeToCamel(name) + "Controller"
			for _, ra := range restActions {
				rt.add(Route{
					Verb:       ra.verb,
					Path:       "/" + name + ra.suffix,
					Controller: controller,
					Action:     ra.action,
					Name:       routeName(name, ra.action),
				})
			}
			continue
		}

		if m := explicitRouteRe.FindStringSubmatch(line); m != nil {
			rt.add(Route{
				Verb:       strings.ToUpper(m[1]),
				Path:       m[2],
				Controller: SnakeToCamel(m[3]) + "Controller",
				Action:     m[4],
				Name:       m[5],
			})
			continue
		}
	}

	return rt
}

func (rt *RouteTable) add(r Route) {
	key := r.Controller + "#" + r.Action
	if _, exists := rt.routes[key]; !exists {
		rt.order = append(rt.order, key)
	}
	rt.routes[key] = r
}

// routeName derives the conventional route helper name for a REST action.
func routeName(resource, action string) string {
	switch action {
	case "index", "create":
		return resource
	case "new":
		return "new_" + Singularize(resource)
	case "edit":
		return "edit_" + Singularize(resource)
	default:
		return Singularize(resource)
	}
}

// RouteInfo looks up a route by controller class name and action.
func (rt *RouteTable) RouteInfo(controller, action string) (Route, bool) {
	r, ok := rt.routes[controller+"#"+action]
	return r, ok
}

// ControllerRoutes returns all routes declared for a controller, in
// declaration order.
func (rt *RouteTable) ControllerRoutes(controller string) []Route {
	var out []Route
	for _, key := range rt.order {
		if strings.HasPrefix(key, controller+"#") {
			out = append(out, rt.routes[key])
		}
	}
	return out
}

// Routes returns every route in declaration order.
func (rt *RouteTable) Routes() []Route {
	out := make([]Route, 0, len(rt.order))
	for _, key := range rt.order {
		out = append(out, rt.routes[key])
	}
	return out
}

// Len reports the number of distinct Controller#action routes.
func (rt *RouteTable) Len() int {
	return len(rt.routes)
}
