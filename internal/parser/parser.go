package parser

import (
	"github.com/indigo-web/oneshot/http"
)

// Parser turns raw bytes into a request. Every call receives the whole data collected so far,
// not just the latest piece. Until the request is complete, Pending is returned and the
// caller must read more. The request returned with Completed refers to the passed memory, so
// the data must be kept intact as long as the request lives.
type Parser interface {
	Parse(data []byte) (State, *http.Request, error)
	Reset()
}
