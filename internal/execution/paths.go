package execution

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ProgramPaths lists observation directories under root laid out as
// <year>/<month>/<project>. Test programs, whose names carry no "-", are
// left out unless includeTests is set.
func ProgramPaths(root string, includeTests bool) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	sort.Strings(matches)

	out := matches[:0]
	for _, p := range matches {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		if !includeTests && !strings.Contains(filepath.Base(p), "-") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ScriptPaths lists every script of every non-test program under root.
func ScriptPaths(root string) ([]string, error) {
	programs, err := ProgramPaths(root, false)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range programs {
		scripts, err := filepath.Glob(filepath.Join(p, "*.evla"))
		if err != nil {
			return nil, fmt.Errorf("failed to list scripts: %w", err)
		}
		sort.Strings(scripts)
		out = append(out, scripts...)
	}
	return out, nil
}
