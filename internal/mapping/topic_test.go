package mapping

import (
	"errors"
	"reflect"
	"testing"
)

func mustCompilePattern(t *testing.T, pattern string) *TopicPattern {
	t.Helper()
	p, err := CompilePattern(pattern)
	if err != nil {
		t.Fatalf("CompilePattern(%q) error = %v", pattern, err)
	}
	return p
}

func TestCompilePattern_Levels(t *testing.T) {
	tests := []struct {
		pattern   string
		levels    []topicLevel
		wildcards int
	}{
		{"foo/bar", []topicLevel{
			{kind: levelLiteral, literal: "foo"},
			{kind: levelLiteral, literal: "bar"},
		}, 0},
		// Leading slash yields a leading empty literal level
		{"/foo/bar", []topicLevel{
			{kind: levelLiteral, literal: ""},
			{kind: levelLiteral, literal: "foo"},
			{kind: levelLiteral, literal: "bar"},
		}, 0},
		// Trailing slash yields a trailing empty literal level
		{"foo/bar/", []topicLevel{
			{kind: levelLiteral, literal: "foo"},
			{kind: levelLiteral, literal: "bar"},
			{kind: levelLiteral, literal: ""},
		}, 0},
		{"foo/bar/#", []topicLevel{
			{kind: levelLiteral, literal: "foo"},
			{kind: levelLiteral, literal: "bar"},
			{kind: levelMulti},
		}, 0},
		{"foo/+/bar", []topicLevel{
			{kind: levelLiteral, literal: "foo"},
			{kind: levelSingle},
			{kind: levelLiteral, literal: "bar"},
		}, 1},
		{"foo/+/bar/#", []topicLevel{
			{kind: levelLiteral, literal: "foo"},
			{kind: levelSingle},
			{kind: levelLiteral, literal: "bar"},
			{kind: levelMulti},
		}, 1},
	}

	for _, tt := range tests {
		p := mustCompilePattern(t, tt.pattern)
		if !reflect.DeepEqual(p.levels, tt.levels) {
			t.Errorf("CompilePattern(%q) levels = %+v, want %+v", tt.pattern, p.levels, tt.levels)
		}
		if p.WildcardCount() != tt.wildcards {
			t.Errorf("CompilePattern(%q) wildcards = %d, want %d", tt.pattern, p.WildcardCount(), tt.wildcards)
		}
		if p.Filter() != tt.pattern {
			t.Errorf("Filter() = %q, want %q", p.Filter(), tt.pattern)
		}
	}
}

func TestCompilePattern_Invalid(t *testing.T) {
	tests := []struct {
		pattern string
		want    error
	}{
		{"foo/#/bar", ErrMisplacedMultiWildcard},
		{"foo/bar#", ErrInvalidPatternLevel},
		{"foo/bar+baz/quux", ErrInvalidPatternLevel},
		{"foo/bar#baz/quux", ErrInvalidPatternLevel},
	}

	for _, tt := range tests {
		_, err := CompilePattern(tt.pattern)
		if err == nil {
			t.Errorf("CompilePattern(%q) expected error", tt.pattern)
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("CompilePattern(%q) error = %v, want %v", tt.pattern, err, tt.want)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		// Literal-only patterns match exactly their own segmentation
		{"foo/bar", "foo/bar", true},
		{"foo/bar", "foo/baz", false},
		{"foo/bar", "foo", false},
		{"foo/bar", "foo/bar/baz", false},
		{"/foo/bar", "/foo/bar", true},
		{"/foo/bar", "foo/bar", false},

		// Single wildcard consumes exactly one level, even an empty one
		{"foo/+/bar", "foo/X/bar", true},
		{"foo/+/bar", "foo//bar", true},
		{"foo/+/bar", "foo/bar", false},
		{"foo/+/bar", "foo/X/Y/bar", false},
		{"foo/+", "foo/bar/baz", false},

		// Multi wildcard matches any remaining suffix, including none
		{"foo/bar/#", "foo/bar", true},
		{"foo/bar/#", "foo/bar/anything/deep", true},
		{"foo/bar/#", "foo/baz/deep", false},
		{"#", "anything/at/all", true},

		// Leftover topic levels fail
		{"foo/+/bar/#", "foo/X/bar/a/b", true},
		{"foo/+/bar", "foo/X/bar/extra", false},
	}

	for _, tt := range tests {
		p := mustCompilePattern(t, tt.pattern)
		if got := p.Matches(tt.topic); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
		}
	}
}

func TestCaptures(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    []string
		matched bool
	}{
		{"foo/+/bar", "foo/X/bar", []string{"X"}, true},
		{"foo/+/bar/#", "foo/X/bar/a/b", []string{"X"}, true},
		{"+/+", "a/b", []string{"a", "b"}, true},
		{"foo/+/bar", "foo//bar", []string{""}, true},
		{"foo/bar/#", "foo/bar/deep", nil, true},
		{"foo/+/bar", "nope", nil, false},
	}

	for _, tt := range tests {
		p := mustCompilePattern(t, tt.pattern)
		got, matched := p.Captures(tt.topic)
		if matched != tt.matched {
			t.Errorf("Captures(%q, %q) matched = %v, want %v", tt.pattern, tt.topic, matched, tt.matched)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Captures(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Captures(%q, %q)[%d] = %q, want %q", tt.pattern, tt.topic, i, got[i], tt.want[i])
			}
		}
	}
}

// TestMatches_Idempotent verifies matching carries no hidden state.
func TestMatches_Idempotent(t *testing.T) {
	p := mustCompilePattern(t, "foo/+/bar/#")
	for i := 0; i < 3; i++ {
		if !p.Matches("foo/X/bar/deep") {
			t.Fatalf("Matches() = false on iteration %d, want true", i)
		}
		caps, _ := p.Captures("foo/X/bar/deep")
		if len(caps) != 1 || caps[0] != "X" {
			t.Fatalf("Captures() = %v on iteration %d, want [X]", caps, i)
		}
	}
}
