package uri

// Normalize removes trailing slashes, as all request paths are also trimmed, resulting
// in consensus between these two. The root path stays intact.
func Normalize(path string) string {
	for i := len(path) - 1; i > 0; i-- {
		if path[i] != '/' {
			return path[:i+1]
		}
	}

	if len(path) > 0 {
		return path[:1]
	}

	return path
}
