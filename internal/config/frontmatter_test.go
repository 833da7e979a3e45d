// ABOUTME: Tests for the generic YAML frontmatter parser
// ABOUTME: Covers typed extraction, CRLF input, missing and unterminated blocks

package config

import "testing"

type testMeta struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

func TestParseFrontmatter_Typed(t *testing.T) {
	t.Parallel()

	content := "---\nname: demo\nenabled: true\n---\nbody text\n"

	meta, body, err := ParseFrontmatter[testMeta](content)
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if meta.Name != "demo" || !meta.Enabled {
		t.Errorf("meta = %+v, want {demo true}", meta)
	}
	if body != "body text\n" {
		t.Errorf("body = %q, want %q", body, "body text\n")
	}
}

func TestParseFrontmatter_NoFrontmatter(t *testing.T) {
	t.Parallel()

	content := "just a document\n"

	meta, body, err := ParseFrontmatter[testMeta](content)
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if meta.Name != "" {
		t.Errorf("meta should be zero, got %+v", meta)
	}
	if body != content {
		t.Errorf("body = %q, want original content", body)
	}
}

func TestParseFrontmatter_CRLF(t *testing.T) {
	t.Parallel()

	content := "---\r\nname: win\r\n---\r\nbody\r\n"

	meta, _, err := ParseFrontmatter[testMeta](content)
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if meta.Name != "win" {
		t.Errorf("meta.Name = %q, want %q", meta.Name, "win")
	}
}

func TestParseFrontmatter_Unterminated(t *testing.T) {
	t.Parallel()

	content := "---\nname: broken\nno closing delimiter"

	if _, _, err := ParseFrontmatter[testMeta](content); err == nil {
		t.Error("expected error for unterminated frontmatter")
	}
}

func TestParseFrontmatter_Empty(t *testing.T) {
	t.Parallel()

	content := "---\n---\nbody\n"

	meta, body, err := ParseFrontmatter[testMeta](content)
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if meta.Name != "" {
		t.Errorf("meta should be zero, got %+v", meta)
	}
	if body != "body\n" {
		t.Errorf("body = %q, want %q", body, "body\n")
	}
}

func TestStripFrontmatter(t *testing.T) {
	t.Parallel()

	content := "---\nname: x\n---\nkept\n"
	if got := StripFrontmatter(content); got != "kept\n" {
		t.Errorf("StripFrontmatter = %q, want %q", got, "kept\n")
	}
}
