// ABOUTME: YAML frontmatter extraction for Markdown definition files
// ABOUTME: Splits a --- delimited header from the body and unmarshals it as T

package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// ParseFrontmatter splits content into a typed YAML frontmatter header and
// the Markdown body that follows it. Content without an opening delimiter
// is returned untouched with a zero T. An opening delimiter without a
// matching closing one is an error; hook and agent files must not be
// silently half-parsed.
func ParseFrontmatter[T any](content string) (T, string, error) {
	var zero T

	// Definition files edited on Windows arrive with CRLF line endings.
	normalized := strings.ReplaceAll(content, "\r\n", "\n")

	if !strings.HasPrefix(normalized, fmDelim+"\n") {
		return zero, content, nil
	}
	rest := normalized[len(fmDelim)+1:]

	var header, body string
	switch {
	case rest == fmDelim, strings.HasPrefix(rest, fmDelim+"\n"):
		// Opening and closing delimiters back to back: empty header.
		body = rest[len(fmDelim):]
	default:
		before, after, ok := strings.Cut(rest, "\n"+fmDelim)
		if !ok {
			return zero, "", errors.New("unterminated frontmatter: missing closing ---")
		}
		header = before
		body = after
	}
	body = strings.TrimPrefix(body, "\n")

	var parsed T
	if err := yaml.Unmarshal([]byte(header), &parsed); err != nil {
		return zero, "", fmt.Errorf("parse frontmatter YAML: %w", err)
	}
	return parsed, body, nil
}

// StripFrontmatter returns content with any frontmatter header removed.
// Malformed frontmatter is left in place rather than dropped.
func StripFrontmatter(content string) string {
	_, body, err := ParseFrontmatter[map[string]any](content)
	if err != nil {
		return content
	}
	return body
}
