package status

import (
	"strconv"
	"strings"
)

// MaxStatusLen is the maximal length of a reason phrase in bytes. Longer phrases are
// truncated, never rejected.
const MaxStatusLen = 63

// Status is a reason phrase of the response status line. Values constructed via NewStatus
// never exceed MaxStatusLen bytes and never contain CR or LF, so the length of a status
// line is always known in advance.
type Status string

// NewStatus bounds the passed phrase. Everything starting from the first CR or LF is
// dropped, the rest is cut to MaxStatusLen bytes.
func NewStatus(phrase string) Status {
	if i := strings.IndexAny(phrase, "\r\n"); i != -1 {
		phrase = phrase[:i]
	}

	if len(phrase) > MaxStatusLen {
		phrase = phrase[:MaxStatusLen]
	}

	return Status(phrase)
}

// StringCode returns the decimal representation of the code.
func StringCode(code Code) string {
	return strconv.Itoa(int(code))
}

// KnownCodes lists every code Text has a phrase for.
var KnownCodes = []Code{
	Continue, SwitchingProtocols, Processing, EarlyHints,
	OK, Created, Accepted, NonAuthoritativeInfo, NoContent, ResetContent, PartialContent,
	MultiStatus, AlreadyReported, IMUsed,
	MultipleChoices, MovedPermanently, Found, SeeOther, NotModified, UseProxy,
	TemporaryRedirect, PermanentRedirect,
	BadRequest, Unauthorized, PaymentRequired, Forbidden, NotFound, MethodNotAllowed,
	NotAcceptable, ProxyAuthRequired, RequestTimeout, Conflict, Gone, LengthRequired,
	PreconditionFailed, RequestEntityTooLarge, RequestURITooLong, UnsupportedMediaType,
	RequestedRangeNotSatisfiable, ExpectationFailed, Teapot, MisdirectedRequest,
	UnprocessableEntity, Locked, FailedDependency, TooEarly, UpgradeRequired,
	PreconditionRequired, TooManyRequests, RequestHeaderFieldsTooLarge,
	UnavailableForLegalReasons,
	InternalServerError, NotImplemented, BadGateway, ServiceUnavailable, GatewayTimeout,
	HTTPVersionNotSupported, VariantAlsoNegotiates, InsufficientStorage, LoopDetected,
	NotExtended, NetworkAuthenticationRequired,
}
