package endpoints

import (
	"context"
	"sort"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"

	"github.com/go-openapi/spec"
)

// Request is what a generated handler receives: the first value of every
// supplied form or query parameter and the authenticated caller, if any.
type Request struct {
	Values map[string]string
	User   *entities.User
}

// Response is rendered by the HTTP layer. Body is encoded as JSON unless
// ContentType is set, in which case it must be a []byte.
type Response struct {
	Status      int
	ContentType string
	Body        any
}

type Handler func(ctx context.Context, req Request) (*Response, error)

type RouteKey struct {
	Method string
	Path   string
}

// Route is one installed handler. ToolID names the CLI that owns it.
type Route struct {
	Key       RouteKey
	ToolID    string
	Handler   Handler
	Operation *spec.Operation
}

// RouteTable maps method and path to a handler. It is not safe for
// concurrent use; the Synthesizer serializes access to it.
type RouteTable struct {
	routes map[RouteKey]*Route
}

func NewRouteTable() *RouteTable {
	return &RouteTable{routes: map[RouteKey]*Route{}}
}

// Add installs a route and reports false when the key is already taken.
func (t *RouteTable) Add(route *Route) bool {
	if _, exists := t.routes[route.Key]; exists {
		return false
	}
	t.routes[route.Key] = route
	return true
}

// Remove deletes the route under key if toolID owns it.
func (t *RouteTable) Remove(key RouteKey, toolID string) error {
	route, ok := t.routes[key]
	if !ok || route.ToolID != toolID {
		return errs.NotFoundErrorf("route %s %s is not installed for %s", key.Method, key.Path, toolID)
	}
	delete(t.routes, key)
	return nil
}

func (t *RouteTable) Get(key RouteKey) (*Route, bool) {
	route, ok := t.routes[key]
	return route, ok
}

func (t *RouteTable) Len() int {
	return len(t.routes)
}

// Routes returns the installed routes ordered by path and method.
func (t *RouteTable) Routes() []*Route {
	routes := make([]*Route, 0, len(t.routes))
	for _, r := range t.routes {
		routes = append(routes, r)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Key.Path != routes[j].Key.Path {
			return routes[i].Key.Path < routes[j].Key.Path
		}
		return routes[i].Key.Method < routes[j].Key.Method
	})
	return routes
}
