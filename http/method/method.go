package method

// Methods are kept as plain strings, because requests carry them as received. Unknown
// methods aren't rejected by the parser unless they contain non-token characters, routing
// decides what to do with them.
const (
	GET     = "GET"
	HEAD    = "HEAD"
	POST    = "POST"
	PUT     = "PUT"
	DELETE  = "DELETE"
	CONNECT = "CONNECT"
	OPTIONS = "OPTIONS"
	TRACE   = "TRACE"
	PATCH   = "PATCH"
)

// List contains all the well-known HTTP methods.
var List = []string{GET, HEAD, POST, PUT, DELETE, CONNECT, OPTIONS, TRACE, PATCH}

// Known reports whether the method is one of the List.
func Known(str string) bool {
	switch len(str) {
	case 3:
		return str == GET || str == PUT
	case 4:
		return str == POST || str == HEAD
	case 5:
		return str == PATCH || str == TRACE
	case 6:
		return str == DELETE
	case 7:
		return str == CONNECT || str == OPTIONS
	}

	return false
}

// IsToken reports whether str is a non-empty RFC 9110 token, which a method must be.
func IsToken(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		if !isTokenChar(str[i]) {
			return false
		}
	}

	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}

	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}

	return false
}
