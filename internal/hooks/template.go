// ABOUTME: {variable} template substitution for hook action parameters
// ABOUTME: Unknown variables expand to empty string; Validate reports coded issues

package hooks

import (
	"regexp"
	"strconv"
	"strings"
)

// Issue codes reported by Validate.
const (
	IssueUnclosedBrace   = "UNCLOSED_BRACE"
	IssueEmptyVariable   = "EMPTY_VARIABLE"
	IssueInvalidVariable = "INVALID_VARIABLE_NAME"
)

// Issue is one problem found in a template.
type Issue struct {
	Code    string
	Message string
	Pos     int
}

var validVarName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Expand substitutes {variable} references in template from vars. Unknown
// variables expand to the empty string and are returned in the second
// value. Dollar signs are literal; malformed references are left as-is.
func Expand(template string, vars map[string]string) (string, []string) {
	var (
		out     strings.Builder
		unknown []string
	)

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:open])

		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			// Unclosed reference stays literal.
			out.WriteString(rest[open:])
			break
		}
		name := rest[open+1 : open+closing]
		rest = rest[open+closing+1:]

		if !validVarName.MatchString(name) {
			out.WriteByte('{')
			out.WriteString(name)
			out.WriteByte('}')
			continue
		}

		value, ok := vars[name]
		if !ok {
			unknown = append(unknown, name)
		}
		out.WriteString(value)
	}

	return out.String(), unknown
}

// ExpandParams expands every value of a parameter map. Unknown variable
// names are deduplicated across parameters.
func ExpandParams(params, vars map[string]string) (map[string]string, []string) {
	expanded := make(map[string]string, len(params))
	seen := make(map[string]bool)
	var unknown []string

	for key, value := range params {
		ev, missing := Expand(value, vars)
		expanded[key] = ev
		for _, name := range missing {
			if !seen[name] {
				seen[name] = true
				unknown = append(unknown, name)
			}
		}
	}
	return expanded, unknown
}

// Validate checks a template for malformed variable references.
func Validate(template string) []Issue {
	var issues []Issue

	rest := template
	offset := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		abs := offset + open

		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			issues = append(issues, Issue{
				Code:    IssueUnclosedBrace,
				Message: "variable reference is missing its closing brace",
				Pos:     abs,
			})
			break
		}

		name := rest[open+1 : open+closing]
		switch {
		case name == "":
			issues = append(issues, Issue{
				Code:    IssueEmptyVariable,
				Message: "variable reference has no name",
				Pos:     abs,
			})
		case !validVarName.MatchString(name):
			issues = append(issues, Issue{
				Code:    IssueInvalidVariable,
				Message: "variable name " + strconv.Quote(name) + " is not a valid identifier",
				Pos:     abs,
			})
		}

		rest = rest[open+closing+1:]
		offset = abs + closing + 1
	}

	return issues
}
