package testutil

import (
	"errors"
	"strconv"
	"strings"

	"github.com/indigo-web/oneshot/http/status"
	"github.com/indigo-web/oneshot/kv"
)

var ErrBadResponse = errors.New("bad response")

// Response is a response as it was seen on the wire.
type Response struct {
	Protocol string
	Code     status.Code
	Status   string
	Headers  *kv.Storage
	Body     string
}

// ParseResponse parses a complete response. The body must match Content-Length exactly, or
// be empty if there's no such header.
func ParseResponse(data string) (Response, error) {
	head, body, found := strings.Cut(data, "\r\n\r\n")
	if !found {
		return Response{}, ErrBadResponse
	}

	statusLine, fields, _ := strings.Cut(head, "\r\n")
	protocol, rest, _ := strings.Cut(statusLine, " ")
	codeString, statusText, found := strings.Cut(rest, " ")
	if !found {
		return Response{}, ErrBadResponse
	}

	code, err := strconv.ParseUint(codeString, 10, 16)
	if err != nil {
		return Response{}, ErrBadResponse
	}

	headers := kv.New()
	for len(fields) > 0 {
		var line string
		line, fields, _ = strings.Cut(fields, "\r\n")
		key, value, found := strings.Cut(line, ": ")
		if !found {
			return Response{}, ErrBadResponse
		}

		headers.Set(key, value)
	}

	length := 0
	if value, found := headers.Get("Content-Length"); found {
		if length, err = strconv.Atoi(value); err != nil {
			return Response{}, ErrBadResponse
		}
	}

	if len(body) != length {
		return Response{}, ErrBadResponse
	}

	return Response{
		Protocol: protocol,
		Code:     status.Code(code),
		Status:   statusText,
		Headers:  headers,
		Body:     body,
	}, nil
}
