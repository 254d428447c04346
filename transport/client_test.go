package transport

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Run("read and write", func(t *testing.T) {
		server, peer := net.Pipe()
		defer peer.Close()
		client := NewClient(server, time.Second, time.Second, make([]byte, 4))
		defer client.Close()

		go func() {
			_, _ = peer.Write([]byte("Hello"))
		}()

		data, err := client.Read()
		require.NoError(t, err)
		require.Equal(t, "Hell", string(data))

		data, err = client.Read()
		require.NoError(t, err)
		require.Equal(t, "o", string(data))

		payload := []byte("a payload larger than a single pipe read")
		received := make(chan []byte)
		go func() {
			buff := make([]byte, len(payload))
			_, _ = io.ReadFull(peer, buff)
			received <- buff
		}()

		n, err := client.Write(payload)
		require.NoError(t, err)
		require.Equal(t, len(payload), n)
		require.Equal(t, payload, <-received)
	})

	t.Run("read timeout", func(t *testing.T) {
		server, peer := net.Pipe()
		defer peer.Close()
		client := NewClient(server, 50*time.Millisecond, time.Second, make([]byte, 16))
		defer client.Close()

		start := time.Now()
		_, err := client.Read()
		require.Error(t, err)

		var netErr net.Error
		require.ErrorAs(t, err, &netErr)
		require.True(t, netErr.Timeout())
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("remote", func(t *testing.T) {
		server, peer := net.Pipe()
		defer peer.Close()
		client := NewClient(server, time.Second, time.Second, nil)
		require.Equal(t, "pipe", client.Remote())
		require.NoError(t, client.Close())
	})
}
