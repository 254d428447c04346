package inbuilt

import (
	"github.com/indigo-web/oneshot/http"
)

// Middleware wraps a handler. It decides itself whether and when to call the next one.
type Middleware func(next Handler, request *http.Request) (*http.Response, error)

// Use adds middlewares, applied to every route registered AFTER the call.
func (r *Router) Use(middlewares ...Middleware) *Router {
	r.middlewares = append(r.middlewares, middlewares...)
	return r
}

// compose just makes a single Handler from a chain of middlewares and a handler in the
// end. The first middleware is the outermost one.
func compose(handler Handler, middlewares []Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw, next := middlewares[i], handler
		handler = func(request *http.Request) (*http.Response, error) {
			return mw(next, request)
		}
	}

	return handler
}
