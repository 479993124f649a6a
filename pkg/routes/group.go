// Package routes declares HTTP routes as prefixed groups and registers them
// on a ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
// Pattern is appended to the enclosing group prefixes and may be empty.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes and child groups under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk(groups, func(pattern string, route Route) {
		mux.HandleFunc(pattern, route.Handler)
	})
}

// Patterns returns the method-qualified patterns Register would install,
// in declaration order.
func Patterns(groups ...Group) []string {
	var out []string
	walk(groups, func(pattern string, _ Route) {
		out = append(out, pattern)
	})
	return out
}

func walk(groups []Group, fn func(pattern string, route Route)) {
	for _, g := range groups {
		walkGroup("", g, fn)
	}
}

func walkGroup(parent string, g Group, fn func(string, Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(r.Method+" "+prefix+r.Pattern, r)
	}
	for _, child := range g.Children {
		walkGroup(prefix, child, fn)
	}
}
