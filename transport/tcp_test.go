package transport

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func runListen(tcp *TCP, cb func(net.Conn)) chan error {
	errch := make(chan error, 1)
	go func() {
		errch <- tcp.Listen(20*time.Millisecond, cb)
	}()

	return errch
}

func TestTCP(t *testing.T) {
	t.Run("accept and stop", func(t *testing.T) {
		tcp := NewTCP(zerolog.Nop())
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		defer tcp.Close()

		errch := runListen(tcp, func(conn net.Conn) {
			_, _ = conn.Write([]byte("hi"))
		})

		conn, err := net.Dial("tcp", tcp.Addr().String())
		require.NoError(t, err)
		data, err := io.ReadAll(conn)
		require.NoError(t, err)
		require.Equal(t, "hi", string(data))
		require.NoError(t, conn.Close())

		tcp.Stop()
		require.True(t, tcp.Stopped())

		select {
		case err = <-errch:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "accept loop did not stop on time")
		}
	})

	t.Run("in-flight connection completes", func(t *testing.T) {
		tcp := NewTCP(zerolog.Nop())
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		defer tcp.Close()

		accepted := make(chan struct{})
		release := make(chan struct{})
		errch := runListen(tcp, func(conn net.Conn) {
			close(accepted)
			<-release
			_, _ = conn.Write([]byte("done"))
		})

		conn, err := net.Dial("tcp", tcp.Addr().String())
		require.NoError(t, err)
		defer conn.Close()
		<-accepted

		tcp.Stop()
		require.NoError(t, <-errch)
		require.NoError(t, tcp.Close())

		close(release)
		data, err := io.ReadAll(conn)
		require.NoError(t, err)
		require.Equal(t, "done", string(data))
		tcp.Wait()
	})

	t.Run("closed listener", func(t *testing.T) {
		tcp := NewTCP(zerolog.Nop())
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		require.NoError(t, tcp.Close())

		err := tcp.Listen(20*time.Millisecond, func(net.Conn) {})
		require.Error(t, err)
	})

	t.Run("bad address", func(t *testing.T) {
		tcp := NewTCP(zerolog.Nop())
		require.Error(t, tcp.Bind("definitely not an address"))
		require.NoError(t, tcp.Close())
	})
}
