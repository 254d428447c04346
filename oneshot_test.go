package oneshot

import (
	"bufio"
	"errors"
	"io"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/indigo-web/oneshot/config"
	"github.com/indigo-web/oneshot/http"
	"github.com/indigo-web/oneshot/http/status"
	"github.com/indigo-web/oneshot/internal/testutil"
	"github.com/indigo-web/oneshot/router/inbuilt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

func getConfig() *config.Config {
	cfg := config.Default()
	cfg.NET.ReadBufferSize = 512
	cfg.NET.MaxRequestSize = 1024
	cfg.NET.ReadTimeout = time.Second
	cfg.NET.AcceptLoopInterruptPeriod = 50 * time.Millisecond

	return cfg
}

func getRouter() *inbuilt.Router {
	return inbuilt.New().
		Get("/", func(*http.Request) (*http.Response, error) {
			return http.String(status.OK, "Hello, world!"), nil
		}).
		Post("/echo", func(request *http.Request) (*http.Response, error) {
			return http.NewResponse(status.OK, "", request.Body), nil
		}).
		Get("/json", func(*http.Request) (*http.Response, error) {
			return http.JSON(status.OK, map[string]int{"answer": 42})
		}).
		Get("/failure", func(*http.Request) (*http.Response, error) {
			return nil, errors.New("something went wrong")
		})
}

type testServer struct {
	*Server
	addr string
	errs chan error
}

func startServer(t *testing.T, s *Server) *testServer {
	started := make(chan struct{})
	errs := make(chan error, 1)
	s.NotifyOnStart(func() {
		close(started)
	})

	go func() {
		errs <- s.Start()
	}()

	select {
	case <-started:
	case err := <-errs:
		require.FailNow(t, "server didn't start", err)
	case <-time.After(testTimeout):
		require.FailNow(t, "server didn't start in time")
	}

	return &testServer{
		Server: s,
		addr:   s.Addr().String(),
		errs:   errs,
	}
}

// shutdown stops the server and waits for the accept loop to exit.
func (s *testServer) shutdown(t *testing.T) {
	s.Stop()

	select {
	case err := <-s.errs:
		require.NoError(t, err)
	case <-time.After(testTimeout):
		require.FailNow(t, "accept loop didn't exit")
	}

	require.NoError(t, s.Cleanup())
	s.Wait()
}

func newServer(t *testing.T) *testServer {
	s := startServer(t, Init(0, getRouter()).Host("127.0.0.1").Tune(getConfig()).Logger(zerolog.Nop()))
	t.Cleanup(func() {
		s.shutdown(t)
	})

	return s
}

func send(t *testing.T, addr, request string) string {
	response, err := trySend(addr, request)
	require.NoError(t, err)

	return response
}

func trySend(addr, request string) (string, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = conn.Close()
	}()

	if err = conn.SetDeadline(time.Now().Add(testTimeout)); err != nil {
		return "", err
	}

	if _, err = conn.Write([]byte(request)); err != nil {
		return "", err
	}

	response, err := io.ReadAll(conn)
	return string(response), err
}

func TestServer(t *testing.T) {
	s := newServer(t)

	t.Run("simple GET", func(t *testing.T) {
		response := send(t, s.addr, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")
		require.Equal(t,
			"HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 13\r\n\r\nHello, world!",
			response,
		)
	})

	t.Run("echo", func(t *testing.T) {
		request := http.NewRequest("POST", "/echo", "HTTP/1.1")
		request.Body = []byte("hello")

		response, err := testutil.ParseResponse(send(t, s.addr, testutil.SerializeRequest(request)))
		require.NoError(t, err)
		require.Equal(t, status.OK, response.Code)
		require.Equal(t, "5", response.Headers.Value("Content-Length"))
		require.Equal(t, "hello", response.Body)
	})

	t.Run("JSON", func(t *testing.T) {
		response, err := testutil.ParseResponse(send(t, s.addr, "GET /json HTTP/1.1\r\n\r\n"))
		require.NoError(t, err)
		require.Equal(t, "application/json", response.Headers.Value("Content-Type"))
		require.JSONEq(t, `{"answer":42}`, response.Body)
	})

	t.Run("not found", func(t *testing.T) {
		response := send(t, s.addr, "GET /nowhere HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 404 Not Found\r\n"))
	})

	t.Run("method not allowed", func(t *testing.T) {
		response := send(t, s.addr, "PUT / HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 405 Method Not Allowed\r\n"))
		require.Contains(t, response, "\r\nAllow: GET\r\n")
	})

	t.Run("malformed", func(t *testing.T) {
		response := send(t, s.addr, "HELLO WORLD\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 400 Bad Request\r\n"))
	})

	t.Run("too large", func(t *testing.T) {
		// the body is never sent, as the server responds right after the headers
		response := send(t, s.addr, "POST /echo HTTP/1.1\r\nContent-Length: 2048\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 413 Request Entity Too Large\r\n"))
	})

	t.Run("too large with streamed body", func(t *testing.T) {
		body := strings.Repeat("a", 4*1024*1024)
		head := "POST /echo HTTP/1.1\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n"

		for range 20 {
			conn, err := net.Dial("tcp", s.addr)
			require.NoError(t, err)
			require.NoError(t, conn.SetDeadline(time.Now().Add(testTimeout)))

			go func() {
				// fails as soon as the server closes the connection, which is expected
				_, _ = conn.Write([]byte(head + body))
			}()

			statusLine, err := bufio.NewReader(conn).ReadString('\n')
			require.NoError(t, err)
			require.Equal(t, "HTTP/1.1 413 Request Entity Too Large\r\n", statusLine)
			require.NoError(t, conn.Close())
		}
	})

	t.Run("handler failure", func(t *testing.T) {
		response := send(t, s.addr, "GET /failure HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 500 Internal Server Error\r\n"))
		require.NotContains(t, response, "something went wrong")
	})

	t.Run("instant disconnect", func(t *testing.T) {
		conn, err := net.Dial("tcp", s.addr)
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		// the server must stay alive
		response := send(t, s.addr, "GET / HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 200 OK\r\n"))
	})
}

func TestNoGoroutineLeak(t *testing.T) {
	s := newServer(t)
	request := "POST /echo HTTP/1.1\r\nContent-Length: 4096\r\n\r\n"

	// warm up, so lazily started background goroutines are counted in the baseline
	send(t, s.addr, "GET / HTTP/1.1\r\n\r\n")
	baseline := runtime.NumGoroutine()

	for range 50 {
		response := send(t, s.addr, request)
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 413 "))
	}

	// polling right here, as require.Eventually would add a goroutine of its own
	deadline := time.Now().Add(testTimeout)
	for runtime.NumGoroutine() > baseline && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	require.LessOrEqual(t, runtime.NumGoroutine(), baseline)
}

func TestShutdown(t *testing.T) {
	t.Run("in-flight request completes", func(t *testing.T) {
		entered, release := make(chan struct{}), make(chan struct{})
		r := inbuilt.New().Get("/slow", func(*http.Request) (*http.Response, error) {
			close(entered)
			<-release
			return http.String(status.OK, "finally"), nil
		})

		s := startServer(t, Init(0, r).Host("127.0.0.1").Tune(getConfig()).Logger(zerolog.Nop()))
		responses := make(chan string, 1)
		go func() {
			response, _ := trySend(s.addr, "GET /slow HTTP/1.1\r\n\r\n")
			responses <- response
		}()

		select {
		case <-entered:
		case <-time.After(testTimeout):
			require.FailNow(t, "handler wasn't called")
		}

		begin := time.Now()
		s.Stop()
		select {
		case err := <-s.errs:
			require.NoError(t, err)
		case <-time.After(testTimeout):
			require.FailNow(t, "accept loop didn't exit")
		}
		require.Less(t, time.Since(begin), time.Second)
		require.NoError(t, s.Cleanup())

		_, err := net.DialTimeout("tcp", s.addr, time.Second)
		require.Error(t, err, "the listener must be closed")

		close(release)
		select {
		case response := <-responses:
			require.True(t, strings.HasSuffix(response, "finally"))
		case <-time.After(testTimeout):
			require.FailNow(t, "in-flight request wasn't completed")
		}

		s.Wait()
	})

	t.Run("hooks", func(t *testing.T) {
		stopped := make(chan struct{})
		s := Init(0, nil).Host("127.0.0.1").Tune(getConfig()).Logger(zerolog.Nop())
		s.NotifyOnStop(func() {
			close(stopped)
		})

		ts := startServer(t, s)
		response := send(t, ts.addr, "GET / HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 404 Not Found\r\n"))

		ts.shutdown(t)
		select {
		case <-stopped:
		default:
			require.Fail(t, "stop hook wasn't called")
		}
	})

	t.Run("signal", func(t *testing.T) {
		s := Init(0, getRouter()).Host("127.0.0.1").Tune(getConfig()).Logger(zerolog.Nop())
		s.NotifyOnSignals(syscall.SIGUSR1)
		ts := startServer(t, s)

		process, err := os.FindProcess(os.Getpid())
		require.NoError(t, err)
		require.NoError(t, process.Signal(syscall.SIGUSR1))

		select {
		case err = <-ts.errs:
			require.NoError(t, err)
		case <-time.After(testTimeout):
			require.FailNow(t, "signal didn't stop the server")
		}

		require.NoError(t, ts.Cleanup())
	})

	t.Run("stop before start", func(t *testing.T) {
		s := Init(0, getRouter()).Host("127.0.0.1").Tune(getConfig()).Logger(zerolog.Nop())
		s.Stop()
		require.NoError(t, s.Start())
		require.NoError(t, s.Cleanup())
	})
}

func TestStartErrors(t *testing.T) {
	t.Run("port in use", func(t *testing.T) {
		s := newServer(t)
		port := s.Addr().(*net.TCPAddr).Port

		another := Init(uint16(port), nil).Host("127.0.0.1").Tune(getConfig()).Logger(zerolog.Nop())
		require.Error(t, another.Start())
		require.NoError(t, another.Cleanup())
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := getConfig()
		cfg.NET.ReadBufferSize = 0
		s := Init(0, nil).Host("127.0.0.1").Tune(cfg).Logger(zerolog.Nop())
		require.Error(t, s.Start())
		require.Nil(t, s.Addr())
	})
}
