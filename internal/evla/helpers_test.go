package evla

import "strings"

func toCRLF(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// dropLines removes every line starting with prefix.
func dropLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if !strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
