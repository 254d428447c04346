package http1

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/indigo-web/oneshot/config"
	"github.com/indigo-web/oneshot/http"
	"github.com/indigo-web/oneshot/http/method"
	"github.com/indigo-web/oneshot/http/status"
	"github.com/indigo-web/oneshot/internal/parser"
	"github.com/indigo-web/oneshot/kv"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

var _ parser.Parser = new(Parser)

var headEnd = []byte("\r\n\r\n")

// Parser is an HTTP/1.x request parser. It waits for the whole head to arrive, parses it at
// once and then waits for exactly Content-Length bytes of the body. Whatever follows the body
// is ignored, as a connection never carries more than one request.
type Parser struct {
	cfg *config.Config
	// scanned is how many bytes were already searched for the end of the head.
	scanned       int
	bodyOffset    int
	contentLength int
	hasBody       bool
	request       *http.Request
}

func NewParser(cfg *config.Config) *Parser {
	return &Parser{cfg: cfg}
}

// Parse consumes the data collected so far. Strings of the returned request refer to the
// data directly, without copying.
func (p *Parser) Parse(data []byte) (parser.State, *http.Request, error) {
	if p.request == nil {
		// the terminator could've been split between reads, so step back a bit
		from := max(p.scanned-len(headEnd)+1, 0)
		end := bytes.Index(data[from:], headEnd)
		if end == -1 {
			p.scanned = len(data)
			return parser.Pending, nil, nil
		}

		end += from
		request, err := p.parseHead(uf.B2S(data[:end]))
		if err != nil {
			return parser.Error, nil, err
		}

		p.request = request
		p.bodyOffset = end + len(headEnd)

		if p.bodyOffset+p.contentLength > p.cfg.NET.MaxRequestSize || p.bodyOffset+p.contentLength < 0 {
			return parser.Error, nil, status.ErrRequestTooLarge
		}
	}

	bodyEnd := p.bodyOffset + p.contentLength
	if len(data) < bodyEnd {
		return parser.Pending, nil, nil
	}

	if p.hasBody {
		p.request.Body = data[p.bodyOffset:bodyEnd:bodyEnd]
	}

	return parser.Completed, p.request, nil
}

// Reset prepares the parser for another request.
func (p *Parser) Reset() {
	p.scanned = 0
	p.bodyOffset = 0
	p.contentLength = 0
	p.hasBody = false
	p.request = nil
}

func (p *Parser) parseHead(head string) (*http.Request, error) {
	requestLine, rest, _ := strings.Cut(head, "\r\n")
	request, err := parseRequestLine(requestLine)
	if err != nil {
		return nil, err
	}

	if len(rest) > 0 {
		request.Headers = kv.NewPrealloc(p.cfg.Headers.Number.Default)
	}

	for count := 0; len(rest) > 0; count++ {
		if count >= p.cfg.Headers.Number.Maximal {
			return nil, status.ErrTooManyHeaders
		}

		var line string
		line, rest, _ = strings.Cut(rest, "\r\n")
		key, value, err := parseHeader(line)
		if err != nil {
			return nil, err
		}

		if err = p.inspectHeader(key, value); err != nil {
			return nil, err
		}

		request.Headers.Set(key, value)
	}

	return request, nil
}

// inspectHeader looks for headers affecting framing of the request.
func (p *Parser) inspectHeader(key, value string) error {
	switch {
	case strcomp.EqualFold(key, "content-length"):
		length, err := parseContentLength(value)
		if err != nil {
			return err
		}

		if p.hasBody && length != p.contentLength {
			// conflicting values are a classic request smuggling vector
			return status.ErrBadContentLength
		}

		p.contentLength, p.hasBody = length, true
	case strcomp.EqualFold(key, "transfer-encoding"):
		return status.ErrUnsupportedEncoding
	}

	return nil
}

func parseRequestLine(line string) (*http.Request, error) {
	meth, rest, found := strings.Cut(line, " ")
	if !found || !method.IsToken(meth) {
		return nil, malformed("bad method")
	}

	target, protocol, found := strings.Cut(rest, " ")
	if !found || !validTarget(target) {
		return nil, malformed("bad request target")
	}

	switch protocol {
	case "HTTP/1.1", "HTTP/1.0":
	default:
		if strings.HasPrefix(protocol, "HTTP/") {
			return nil, status.ErrHTTPVersionNotSupported
		}

		return nil, malformed("bad protocol")
	}

	path, query, hasQuery := strings.Cut(target, "?")
	request := http.NewRequest(meth, path, protocol)
	if hasQuery {
		request.SetQuery(query)
	}

	return request, nil
}

func parseHeader(line string) (key, value string, err error) {
	key, value, found := strings.Cut(line, ":")
	if !found || !method.IsToken(key) {
		// token check also rejects obsolete line folding, as such lines start with a space
		return "", "", malformed("bad header line")
	}

	value = strings.Trim(value, " \t")
	for i := 0; i < len(value); i++ {
		if c := value[i]; (c < 0x20 && c != '\t') || c == 0x7f {
			return "", "", malformed("control character in header value")
		}
	}

	return key, value, nil
}

func validTarget(target string) bool {
	if target == "*" {
		return true
	}

	if len(target) == 0 || target[0] != '/' {
		return false
	}

	for i := 0; i < len(target); i++ {
		if c := target[i]; c <= 0x20 || c == 0x7f {
			return false
		}
	}

	return true
}

func malformed(reason string) error {
	return fmt.Errorf("%s: %w", reason, status.ErrMalformedRequest)
}
