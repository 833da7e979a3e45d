// ABOUTME: Static table mapping speckit operations to output-artifact glob patterns
// ABOUTME: Matching uses doublestar globs over slash-separated workspace-relative paths

package completion

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Namespace prefixes every dedup key and trigger operation.
const Namespace = "speckit"

// artifactPatterns maps operation names to the glob patterns of the files
// those operations write when they finish.
var artifactPatterns = map[string][]string{
	"constitution": {".specify/memory/constitution.md"},
	"specify":      {"specs/**/spec.md"},
	"plan":         {"specs/**/plan.md"},
	"tasks":        {"specs/**/tasks.md"},
}

// Operations returns the watched operation names in arbitrary order.
func Operations() []string {
	ops := make([]string, 0, len(artifactPatterns))
	for op := range artifactPatterns {
		ops = append(ops, op)
	}
	return ops
}

// MatchOperation returns the operation whose artifact patterns match the
// given workspace-relative path, or false if no pattern matches.
func MatchOperation(relPath string) (string, bool) {
	rel := filepath.ToSlash(relPath)
	rel = strings.TrimPrefix(rel, "./")
	for op, patterns := range artifactPatterns {
		for _, pattern := range patterns {
			if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
				return op, true
			}
		}
	}
	return "", false
}

// DedupKey returns the namespaced key used for debounce and anti-duplicate
// bookkeeping.
func DedupKey(operation string) string {
	return Namespace + "." + operation
}
