package http

import (
	"strings"

	"github.com/indigo-web/oneshot/http/status"
	"github.com/indigo-web/oneshot/kv"
)

type (
	Headers = *kv.Storage
	Params  = *kv.Storage
)

// Request represents a single HTTP request. It is owned by exactly one connection and never
// outlives it.
type Request struct {
	// Method is the request method exactly as it was received.
	Method string
	// Path is the request target without the query.
	Path string
	// Protocol is the version token of the request line, e.g. HTTP/1.1.
	Protocol string
	// Headers holds header pairs keyed case-sensitively as received. May be nil, in which
	// case lookups simply find nothing.
	Headers Headers
	// Params are path parameters extracted by the router.
	Params Params
	// Body is nil if the request carries no body. Otherwise, its length is exactly the
	// value of the Content-Length header.
	Body []byte
	// Remote is the address of the peer, if known.
	Remote string

	query    string
	hasQuery bool
}

func NewRequest(method, path, protocol string) *Request {
	return &Request{
		Method:   method,
		Path:     path,
		Protocol: protocol,
	}
}

// SetQuery marks the query as present, even if it's empty.
func (r *Request) SetQuery(query string) *Request {
	r.query, r.hasQuery = query, true
	return r
}

// Query returns the query string and whether it was presented at all. A request to /path?
// has an empty but present query, a request to /path has none.
func (r *Request) Query() (string, bool) {
	return r.query, r.hasQuery
}

// AddHeader inserts a header or overwrites an existing one with the same key. The same rules
// as for response headers apply.
func (r *Request) AddHeader(key, value string) error {
	if r == nil || !validHeader(key, value) {
		return status.ErrInvalidArgument
	}

	if r.Headers == nil {
		r.Headers = kv.New()
	}

	r.Headers.Set(key, value)
	return nil
}

// Header returns the header value. A request without headers has no values.
func (r *Request) Header(key string) (string, bool) {
	if r == nil {
		return "", false
	}

	return r.Headers.Get(key)
}

// Param returns the path parameter. A request without parameters has no values.
func (r *Request) Param(key string) (string, bool) {
	if r == nil {
		return "", false
	}

	return r.Params.Get(key)
}

// String returns a short representation of the request in form of <METHOD PATH?QUERY PROTO>,
// where ?QUERY is omitted entirely if there is no query. Is meant to be used in logs.
func (r *Request) String() string {
	var sb strings.Builder
	sb.Grow(len(r.Method) + len(r.Path) + len(r.query) + len(r.Protocol) + len("< ? >"))
	sb.WriteByte('<')
	sb.WriteString(r.Method)
	sb.WriteByte(' ')
	sb.WriteString(r.Path)
	if r.hasQuery {
		sb.WriteByte('?')
		sb.WriteString(r.query)
	}
	sb.WriteByte(' ')
	sb.WriteString(r.Protocol)
	sb.WriteByte('>')

	return sb.String()
}

// Release drops everything the request refers to. Any subset of the fields may be absent.
// Using the request after release is allowed, but it'll look empty.
func (r *Request) Release() {
	if r == nil {
		return
	}

	r.query, r.hasQuery = "", false
	r.Headers.Release()
	r.Headers = nil
	r.Params.Release()
	r.Params = nil
	r.Body = nil
}
