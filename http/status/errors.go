package status

// HTTPError is an error carrying the status code it must be answered with. Errors of this
// type are compared by value, so errors.Is works with the predefined ones below.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrOutOfMemory             = NewError(InternalServerError, "out of memory")
	ErrInvalidArgument         = NewError(InternalServerError, "invalid argument")
	ErrHandlerFailure          = NewError(InternalServerError, "handler failure")
	ErrMalformedRequest        = NewError(BadRequest, "malformed request")
	ErrBadContentLength        = NewError(BadRequest, "bad Content-Length value")
	ErrRequestTooLarge         = NewError(RequestEntityTooLarge, "request is too large")
	ErrRequestTimeout          = NewError(RequestTimeout, "request timeout")
	ErrUnauthorized            = NewError(Unauthorized, "unauthorized")
	ErrForbidden               = NewError(Forbidden, "forbidden")
	ErrNotFound                = NewError(NotFound, "not found")
	ErrMethodNotAllowed        = NewError(MethodNotAllowed, "method not allowed")
	ErrUnsupportedMediaType    = NewError(UnsupportedMediaType, "unsupported media type")
	ErrTooManyHeaders          = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrNotImplemented          = NewError(NotImplemented, "not implemented")
	ErrUnsupportedEncoding     = NewError(NotImplemented, "transfer encoding is not supported")
	ErrHTTPVersionNotSupported = NewError(HTTPVersionNotSupported, "HTTP version not supported")
)
