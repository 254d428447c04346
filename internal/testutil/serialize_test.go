package testutil

import (
	"testing"

	"github.com/indigo-web/oneshot/http"
	"github.com/stretchr/testify/require"
)

func TestSerializeRequest(t *testing.T) {
	t.Run("no body", func(t *testing.T) {
		request := http.NewRequest("GET", "/", "HTTP/1.1")
		require.Equal(t, "GET / HTTP/1.1\r\n\r\n", SerializeRequest(request))
	})

	t.Run("query, headers and body", func(t *testing.T) {
		request := http.NewRequest("POST", "/echo", "HTTP/1.0").SetQuery("a=b")
		require.NoError(t, request.AddHeader("Host", "localhost"))
		request.Body = []byte("hello")

		require.Equal(t,
			"POST /echo?a=b HTTP/1.0\r\nHost: localhost\r\nContent-Length: 5\r\n\r\nhello",
			SerializeRequest(request),
		)
	})

	t.Run("explicit content length", func(t *testing.T) {
		request := http.NewRequest("POST", "/", "HTTP/1.1")
		require.NoError(t, request.AddHeader("Content-Length", "2"))
		request.Body = []byte("hi")

		require.Equal(t, "POST / HTTP/1.1\r\nContent-Length: 2\r\n\r\nhi", SerializeRequest(request))
	})
}
