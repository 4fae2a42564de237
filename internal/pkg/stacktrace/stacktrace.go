package stacktrace

import "strings"

// InternalPaths filters a raw debug.Stack dump down to this repo's frames,
// each trimmed to the path from internal/ through the line number. The
// result is short enough to log without drowning the entry in runtime
// frames.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")

	var paths []string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, ".go:")
		if idx == -1 || !strings.Contains(line, "/internal/") {
			continue
		}

		end := strings.Index(line[idx:], " ")
		if end == -1 {
			end = len(line)
		} else {
			end += idx
		}

		if start := strings.Index(line[:end], "/internal/"); start != -1 {
			paths = append(paths, line[start+1:end])
		}
	}

	return paths
}
