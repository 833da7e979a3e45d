// ABOUTME: Tests for template expansion and validation
// ABOUTME: Covers substitution, unknown variables, literals, and issue codes

package hooks

import (
	"reflect"
	"testing"
)

func TestExpand(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"operation":  "tasks",
		"outputPath": "/ws/specs/a/tasks.md",
	}

	tests := []struct {
		name        string
		template    string
		want        string
		wantUnknown []string
	}{
		{
			name:     "basic substitution",
			template: "done: {operation} at {outputPath}",
			want:     "done: tasks at /ws/specs/a/tasks.md",
		},
		{
			name:        "unknown expands empty",
			template:    "x{missing}y",
			want:        "xy",
			wantUnknown: []string{"missing"},
		},
		{
			name:     "dollar is literal",
			template: "cost: $5 for {operation}",
			want:     "cost: $5 for tasks",
		},
		{
			name:     "unclosed brace stays literal",
			template: "broken {operation",
			want:     "broken {operation",
		},
		{
			name:     "invalid name stays literal",
			template: "keep {not valid}",
			want:     "keep {not valid}",
		},
		{
			name:     "no references",
			template: "plain text",
			want:     "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, unknown := Expand(tt.template, vars)
			if got != tt.want {
				t.Errorf("Expand = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(unknown, tt.wantUnknown) {
				t.Errorf("unknown = %v, want %v", unknown, tt.wantUnknown)
			}
		})
	}
}

func TestExpandParams_DeduplicatesUnknown(t *testing.T) {
	t.Parallel()

	params := map[string]string{
		"a": "{ghost}",
		"b": "{ghost} again",
	}

	expanded, unknown := ExpandParams(params, nil)
	if expanded["a"] != "" || expanded["b"] != " again" {
		t.Errorf("expanded = %v", expanded)
	}
	if len(unknown) != 1 || unknown[0] != "ghost" {
		t.Errorf("unknown = %v, want [ghost]", unknown)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		template  string
		wantCodes []string
	}{
		{"clean", "run {operation} now", nil},
		{"unclosed", "run {operation", []string{IssueUnclosedBrace}},
		{"empty", "run {}", []string{IssueEmptyVariable}},
		{"invalid", "run {1bad}", []string{IssueInvalidVariable}},
		{"multiple", "{} then {also bad}", []string{IssueEmptyVariable, IssueInvalidVariable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			issues := Validate(tt.template)
			var codes []string
			for _, issue := range issues {
				codes = append(codes, issue.Code)
			}
			if !reflect.DeepEqual(codes, tt.wantCodes) {
				t.Errorf("codes = %v, want %v", codes, tt.wantCodes)
			}
		})
	}
}
