package http

import (
	"errors"
	"iter"
	"strconv"

	"github.com/indigo-web/oneshot/http/mime"
	"github.com/indigo-web/oneshot/http/status"
	"github.com/indigo-web/oneshot/kv"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

const (
	// Protocol is the only protocol responses are ever written in.
	Protocol = "HTTP/1.1"

	crlf = "\r\n"
	// why 4? Content-Type, Content-Length and a couple of user-defined ones.
	preallocRespHeaders = 4
)

// MaxResponseSize limits the size of a serialized response. Serialize refuses to allocate
// more and reports status.ErrOutOfMemory instead.
var MaxResponseSize = 512 * 1024 * 1024

// Response is an immutable-bodied HTTP response. The body is set once at construction,
// therefore the Content-Length header always corresponds to it.
type Response struct {
	code    status.Code
	status  status.Status
	headers *kv.Storage
	body    []byte
}

// NewResponse returns a response with Content-Type set to text/plain. A non-nil body is used
// WITHOUT COPYING, and Content-Length is set to its length. Empty message is replaced by the
// standard reason phrase of the code, a too long one is truncated to status.MaxStatusLen.
func NewResponse(code status.Code, message string, body []byte) *Response {
	if len(message) == 0 {
		message = string(status.Text(code))
	}

	resp := &Response{
		code:    code,
		status:  status.NewStatus(message),
		headers: kv.NewPrealloc(preallocRespHeaders),
		body:    body,
	}

	resp.headers.Set("Content-Type", mime.Plain)
	if body != nil {
		resp.headers.Set("Content-Length", strconv.Itoa(len(body)))
	}

	return resp
}

// NewStringResponse is the same as NewResponse, but takes the body as a string.
func NewStringResponse(code status.Code, message, body string) *Response {
	return NewResponse(code, message, uf.S2B(body))
}

// Code returns a response with no body and standard reason phrase.
func Code(code status.Code) *Response {
	return NewResponse(code, "", nil)
}

// String returns a response with standard reason phrase and passed body.
func String(code status.Code, body string) *Response {
	return NewStringResponse(code, "", body)
}

// JSON encodes the model and returns it as an application/json response.
func JSON(code status.Code, model any) (*Response, error) {
	body, err := json.ConfigCompatibleWithStandardLibrary.Marshal(model)
	if err != nil {
		return nil, err
	}

	resp := NewResponse(code, "", body)
	resp.headers.Set("Content-Type", mime.JSON)

	return resp, nil
}

// Error returns a response for the error. If an instance of status.HTTPError is passed,
// its code and message are used. Any other error results in 500 Internal Server Error,
// without revealing the error text to the client.
func Error(err error) *Response {
	var httpErr status.HTTPError
	if errors.As(err, &httpErr) {
		return String(httpErr.Code, httpErr.Message)
	}

	return Code(status.InternalServerError)
}

// AddHeader sets the header, overwriting the previous value of the same key. Content-Length
// is derived from the body and can't be set manually. Keys must be tokens and values must be
// free of control characters, otherwise status.ErrInvalidArgument is returned.
func (r *Response) AddHeader(key, value string) error {
	if r == nil || !validHeader(key, value) || strcomp.EqualFold(key, "content-length") {
		return status.ErrInvalidArgument
	}

	if r.headers == nil {
		r.headers = kv.New()
	}

	r.headers.Set(key, value)
	return nil
}

// Header returns a value of the header.
func (r *Response) Header(key string) (string, bool) {
	return r.headers.Get(key)
}

// Headers iterates over the headers in the order they are going to be serialized.
func (r *Response) Headers() iter.Seq2[string, string] {
	return r.headers.Pairs()
}

func (r *Response) Code() status.Code {
	return r.code
}

func (r *Response) Status() status.Status {
	return r.status
}

// Body returns the body or nil, if there is none. The returned slice must not be modified.
func (r *Response) Body() []byte {
	return r.body
}

// Serialize renders the response into its wire representation. The exact size is computed
// ahead, so the resulting slice is allocated just once.
func (r *Response) Serialize() ([]byte, error) {
	if r == nil {
		return nil, status.ErrInvalidArgument
	}

	code := status.StringCode(r.code)
	size := len(Protocol) + 1 + len(code) + 1 + len(r.status) + len(crlf)
	for key, value := range r.headers.Pairs() {
		size += len(key) + len(": ") + len(value) + len(crlf)
	}
	size += len(crlf) + len(r.body)

	if size > MaxResponseSize {
		return nil, status.ErrOutOfMemory
	}

	w := boundedWriter{buff: make([]byte, 0, size)}
	w.write(Protocol)
	w.write(" ")
	w.write(code)
	w.write(" ")
	w.write(string(r.status))
	w.write(crlf)

	for key, value := range r.headers.Pairs() {
		w.write(key)
		w.write(": ")
		w.write(value)
		w.write(crlf)
	}

	w.write(crlf)
	if len(r.body) > 0 {
		w.write(uf.B2S(r.body))
	}

	if w.overflow {
		return nil, status.ErrOutOfMemory
	}

	return w.buff, nil
}

// Release drops the body and the headers.
func (r *Response) Release() {
	if r == nil {
		return
	}

	r.body = nil
	r.headers.Release()
	r.headers = nil
}

// boundedWriter appends into a buffer never growing it beyond its initial capacity.
type boundedWriter struct {
	buff     []byte
	overflow bool
}

func (b *boundedWriter) write(str string) {
	if b.overflow || len(b.buff)+len(str) > cap(b.buff) {
		b.overflow = true
		return
	}

	b.buff = append(b.buff, str...)
}
