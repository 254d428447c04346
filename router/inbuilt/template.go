package inbuilt

import (
	"errors"
	"strings"

	"github.com/indigo-web/oneshot/kv"
)

var (
	ErrNotImplemented  = errors.New("current implementation does not allow static text between slashes")
	ErrInvalidTemplate = errors.New("invalid template")
	ErrEmptyPath       = errors.New("path template cannot be empty")
)

// segment is either a static text or a dynamic marker, matching any non-empty text.
type segment struct {
	text    string
	dynamic bool
}

// Template is a parsed path template, e.g. /users/{id}/posts. A marker always occupies the
// whole segment between slashes. Markers with empty names ({}) match, but aren't stored.
type Template struct {
	segments []segment
}

func Parse(tmpl string) (Template, error) {
	var template Template

	if len(tmpl) == 0 {
		return template, ErrEmptyPath
	}

	if tmpl[0] != '/' {
		return template, ErrInvalidTemplate
	}

	if tmpl == "/" {
		return template, nil
	}

	for _, part := range strings.Split(tmpl[1:], "/") {
		open, close := strings.IndexByte(part, '{'), strings.IndexByte(part, '}')

		switch {
		case open == -1 && close == -1:
			template.segments = append(template.segments, segment{text: part})
		case open == 0 && close == len(part)-1:
			name := part[1:close]
			if strings.ContainsAny(name, "{}") {
				return template, ErrInvalidTemplate
			}

			template.segments = append(template.segments, segment{text: name, dynamic: true})
		case open > 0 || (close != -1 && close < len(part)-1):
			return template, ErrNotImplemented
		default:
			return template, ErrInvalidTemplate
		}
	}

	return template, nil
}

// MustParse is the same as Parse, but panics on error.
func MustParse(tmpl string) Template {
	template, err := Parse(tmpl)
	if err != nil {
		panic(err)
	}

	return template
}

// IsStatic reports whether the template contains no markers.
func (t Template) IsStatic() bool {
	for _, seg := range t.segments {
		if seg.dynamic {
			return false
		}
	}

	return true
}

// Match matches the path against the template. Values of markers are stored into params,
// which is allocated lazily, so nil is returned for static templates.
func (t Template) Match(path string) (params *kv.Storage, ok bool) {
	if len(path) == 0 || path[0] != '/' {
		return nil, false
	}

	rest := path[1:]
	if len(t.segments) == 0 {
		return nil, len(rest) == 0
	}

	for i, seg := range t.segments {
		part, tail, found := strings.Cut(rest, "/")
		if found == (i == len(t.segments)-1) {
			// either the path is longer or shorter than the template
			return nil, false
		}

		rest = tail

		if !seg.dynamic {
			if part != seg.text {
				return nil, false
			}

			continue
		}

		if len(part) == 0 {
			return nil, false
		}

		if len(seg.text) > 0 {
			if params == nil {
				params = kv.New()
			}

			params.Set(seg.text, part)
		}
	}

	return params, true
}
