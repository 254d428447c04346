package http

import "github.com/indigo-web/oneshot/http/method"

// validHeader reports whether the pair can be serialized as is. Keys must be tokens, values
// must not contain control characters except horizontal tab, so neither can break the framing.
func validHeader(key, value string) bool {
	if !method.IsToken(key) {
		return false
	}

	for i := 0; i < len(value); i++ {
		if c := value[i]; (c < 0x20 && c != '\t') || c == 0x7f {
			return false
		}
	}

	return true
}
