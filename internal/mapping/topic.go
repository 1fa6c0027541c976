package mapping

import (
	"fmt"
	"strings"
)

// levelKind identifies what a single pattern level matches.
type levelKind int

const (
	levelLiteral levelKind = iota
	levelSingle            // '+', exactly one topic level
	levelMulti             // '#', the remaining suffix
)

// topicLevel is one slash-delimited segment of a compiled pattern.
// literal is only meaningful for levelLiteral.
type topicLevel struct {
	kind    levelKind
	literal string
}

// TopicPattern is a compiled MQTT topic pattern.
//
// Patterns are split on '/'; empty segments are preserved as literal
// empty-string levels, so "/foo/bar" has a leading empty level that
// matches only a leading empty level in the topic. A pattern is
// immutable once compiled and safe for concurrent use.
type TopicPattern struct {
	raw       string
	levels    []topicLevel
	wildcards int
}

// CompilePattern parses a topic pattern into its levels.
//
// Validation matches MQTT filter rules:
//   - a level containing '+' or '#' alongside other characters is
//     rejected (ErrInvalidPatternLevel)
//   - '#' is only valid as the final level (ErrMisplacedMultiWildcard)
func CompilePattern(pattern string) (*TopicPattern, error) {
	segments := strings.Split(pattern, "/")
	levels := make([]topicLevel, 0, len(segments))
	wildcards := 0

	for i, segment := range segments {
		switch {
		case segment == "+":
			levels = append(levels, topicLevel{kind: levelSingle})
			wildcards++
		case segment == "#":
			if i != len(segments)-1 {
				return nil, fmt.Errorf("%w: pattern %q", ErrMisplacedMultiWildcard, pattern)
			}
			levels = append(levels, topicLevel{kind: levelMulti})
		case strings.ContainsAny(segment, "+#"):
			return nil, fmt.Errorf("%w: level %q in pattern %q", ErrInvalidPatternLevel, segment, pattern)
		default:
			levels = append(levels, topicLevel{kind: levelLiteral, literal: segment})
		}
	}

	return &TopicPattern{raw: pattern, levels: levels, wildcards: wildcards}, nil
}

// Filter returns the original pattern string, suitable for use as an
// MQTT subscription filter.
func (p *TopicPattern) Filter() string {
	return p.raw
}

// WildcardCount returns the number of single-level wildcards in the
// pattern, which is the number of captures a matching topic produces.
func (p *TopicPattern) WildcardCount() int {
	return p.wildcards
}

// Matches reports whether the concrete topic matches the pattern.
func (p *TopicPattern) Matches(topic string) bool {
	_, ok := p.match(strings.Split(topic, "/"), false)
	return ok
}

// Captures returns the topic substrings consumed by single-level
// wildcards, in pattern order, and whether the topic matched at all.
// A multi-level wildcard never contributes a capture.
func (p *TopicPattern) Captures(topic string) ([]string, bool) {
	return p.match(strings.Split(topic, "/"), true)
}

// match walks pattern and topic levels in lockstep. A single wildcard
// consumes exactly one topic level regardless of content (including the
// empty string); a multi wildcard succeeds immediately; a literal must
// equal the current topic level. Leftover topic levels fail the match.
func (p *TopicPattern) match(topicLevels []string, collect bool) ([]string, bool) {
	var captures []string
	if collect && p.wildcards > 0 {
		captures = make([]string, 0, p.wildcards)
	}

	i := 0
	for _, level := range p.levels {
		switch level.kind {
		case levelMulti:
			return captures, true
		case levelSingle:
			if i >= len(topicLevels) {
				return nil, false
			}
			if collect {
				captures = append(captures, topicLevels[i])
			}
			i++
		case levelLiteral:
			if i >= len(topicLevels) || topicLevels[i] != level.literal {
				return nil, false
			}
			i++
		}
	}

	if i != len(topicLevels) {
		return nil, false
	}
	return captures, true
}
