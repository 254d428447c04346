package router

import (
	"strings"

	"github.com/indigo-web/oneshot/http"
	"github.com/indigo-web/oneshot/http/status"
)

// Handler is the application logic. Returning an error instead of a response results in an
// error response: status.HTTPError values are answered with their own code, anything else
// with 500 Internal Server Error.
type Handler func(request *http.Request) (*http.Response, error)

// Router resolves the handler for the request. Returned params are path parameters extracted
// from the path and may be nil. If nothing matches, status.ErrNotFound is returned. If the
// path is known but not for this method, the error is MethodNotAllowedError.
type Router interface {
	Match(method, path string) (Handler, http.Params, error)
}

// MethodNotAllowedError is returned by routers, when the path exists but isn't registered
// for the requested method.
type MethodNotAllowedError struct {
	// Allowed lists the methods the path is registered for.
	Allowed []string
}

func (m MethodNotAllowedError) Error() string {
	return status.ErrMethodNotAllowed.Error()
}

func (MethodNotAllowedError) Unwrap() error {
	return status.ErrMethodNotAllowed
}

// Allow returns the value for the Allow header.
func (m MethodNotAllowedError) Allow() string {
	return strings.Join(m.Allowed, ", ")
}
