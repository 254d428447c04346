package inbuilt

import (
	"fmt"

	"github.com/indigo-web/oneshot/http"
	"github.com/indigo-web/oneshot/http/status"
	"github.com/indigo-web/oneshot/router"
	"github.com/indigo-web/oneshot/router/inbuilt/uri"
)

var _ router.Router = new(Router)

type Handler = router.Handler

type route struct {
	path     string
	template Template
	methods  map[string]Handler
	// allowed keeps methods in their registration order, so the Allow header is stable.
	allowed []string
}

// Router is a built-in implementation of router.Router. Static routes are looked up in a
// map, dynamic ones are tried in their registration order.
type Router struct {
	static      map[string]*route
	dynamic     []*route
	middlewares []Middleware
}

// New constructs a new instance of inbuilt router
func New() *Router {
	return &Router{
		static: make(map[string]*route),
	}
}

// Route registers a new endpoint. Panics if the path template is invalid or the endpoint is
// already registered, as both are programming errors discovered at startup.
func (r *Router) Route(method, path string, handler Handler, middlewares ...Middleware) *Router {
	if err := r.AddRoute(method, path, handler, middlewares...); err != nil {
		panic(err)
	}

	return r
}

// AddRoute is the same as Route, but returns an error instead of panicking.
func (r *Router) AddRoute(method, path string, handler Handler, middlewares ...Middleware) error {
	path = uri.Normalize(path)
	template, err := Parse(path)
	if err != nil {
		return fmt.Errorf("route %s %s: %w", method, path, err)
	}

	rt := r.lookup(path)
	if rt == nil {
		rt = &route{
			path:     path,
			template: template,
			methods:  make(map[string]Handler),
		}

		if template.IsStatic() {
			r.static[path] = rt
		} else {
			r.dynamic = append(r.dynamic, rt)
		}
	}

	if _, ok := rt.methods[method]; ok {
		return fmt.Errorf("route already registered: %s %s", method, path)
	}

	rt.methods[method] = compose(handler, append(r.middlewares[:len(r.middlewares):len(r.middlewares)], middlewares...))
	rt.allowed = append(rt.allowed, method)

	return nil
}

// Match implements router.Router.
func (r *Router) Match(method, path string) (Handler, http.Params, error) {
	path = uri.Normalize(path)

	if rt, found := r.static[path]; found {
		handler, err := rt.handler(method)
		return handler, nil, err
	}

	for _, rt := range r.dynamic {
		params, ok := rt.template.Match(path)
		if !ok {
			continue
		}

		handler, err := rt.handler(method)
		if err != nil {
			return nil, nil, err
		}

		return handler, params, nil
	}

	return nil, nil, status.ErrNotFound
}

func (r *Router) lookup(path string) *route {
	if rt, found := r.static[path]; found {
		return rt
	}

	for _, rt := range r.dynamic {
		if rt.path == path {
			return rt
		}
	}

	return nil
}

func (rt *route) handler(method string) (Handler, error) {
	if handler, found := rt.methods[method]; found {
		return handler, nil
	}

	return nil, router.MethodNotAllowedError{Allowed: rt.allowed}
}
