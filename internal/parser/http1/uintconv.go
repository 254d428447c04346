package http1

import (
	"math"

	"github.com/indigo-web/oneshot/http/status"
)

// parseContentLength is a tiny implementation of strconv.Atoi, accepting digits only, so
// neither signs nor whitespaces are tolerated.
func parseContentLength(raw string) (num int, err error) {
	if len(raw) == 0 {
		return 0, status.ErrBadContentLength
	}

	for i := 0; i < len(raw); i++ {
		char := raw[i] - '0'
		if char > 9 {
			return 0, status.ErrBadContentLength
		}

		if num > (math.MaxInt-int(char))/10 {
			return 0, status.ErrBadContentLength
		}

		num = num*10 + int(char)
	}

	return num, nil
}
