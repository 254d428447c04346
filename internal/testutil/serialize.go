package testutil

import (
	"strconv"

	"github.com/indigo-web/oneshot/http"
)

// SerializeRequest renders the request the way a client would send it. Content-Length is
// appended automatically if the request has a body and doesn't carry the header itself.
func SerializeRequest(request *http.Request) string {
	var buff []byte

	buff = append(buff, request.Method...)
	buff = space(buff)
	buff = append(buff, request.Path...)

	if query, ok := request.Query(); ok {
		buff = question(buff)
		buff = append(buff, query...)
	}

	buff = space(buff)
	buff = append(buff, request.Protocol...)
	buff = crlf(buff)

	for key, value := range request.Headers.Pairs() {
		buff = header(buff, key, value)
	}

	if _, found := request.Header("Content-Length"); !found && request.Body != nil {
		buff = header(buff, "Content-Length", strconv.Itoa(len(request.Body)))
	}

	buff = crlf(buff)
	buff = append(buff, request.Body...)

	return string(buff)
}

func space(b []byte) []byte {
	return append(b, ' ')
}

func question(b []byte) []byte {
	return append(b, '?')
}

func crlf(b []byte) []byte {
	return append(b, '\r', '\n')
}

func header(b []byte, key, value string) []byte {
	b = append(b, key...)
	b = colonsp(b)
	b = append(b, value...)

	return crlf(b)
}

func colonsp(b []byte) []byte {
	return append(b, ':', ' ')
}
