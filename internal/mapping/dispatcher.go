package mapping

import (
	"fmt"
	"time"
)

// Stage identifies where in the per-message pipeline a dispatch failed.
type Stage string

const (
	StageMatch            Stage = "match"
	StageFieldName        Stage = "field-name"
	StageDecodePayload    Stage = "decode-payload"
	StageExtractValue     Stage = "extract-value"
	StageExtractTimestamp Stage = "extract-timestamp"
	StageCoerceValue      Stage = "coerce-value"
	StageRenderTag        Stage = "render-tag"
)

// DispatchError carries enough context to log a dropped message: the
// inbound topic, the index of the matched rule (-1 when no rule
// matched) and the pipeline stage that failed. It wraps the underlying
// sentinel error for errors.Is checks.
type DispatchError struct {
	Topic string
	Rule  int
	Stage Stage
	Err   error
}

func (e *DispatchError) Error() string {
	if e.Rule < 0 {
		return fmt.Sprintf("dispatch topic %q: %s: %v", e.Topic, e.Stage, e.Err)
	}
	return fmt.Sprintf("dispatch topic %q: rule %d: %s: %v", e.Topic, e.Rule, e.Stage, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// PointTag is one rendered tag on an output point. Tag values are
// always strings on the wire.
type PointTag struct {
	Name  string
	Value string
}

// Point is the assembled output of a successful dispatch: a timestamp,
// a rendered field name, a typed value and the rendered tags, ready for
// the datastore writer. Points are message-local and never retained by
// the engine.
type Point struct {
	Time  time.Time
	Field string
	Value Value
	Tags  []PointTag
}

// Dispatcher matches inbound messages against an ordered, immutable
// rule list and runs the mapping pipeline. It holds no per-message
// state; concurrent Dispatch calls need no locking.
type Dispatcher struct {
	rules []*Rule

	// now supplies the wall-clock fallback timestamp; replaced in tests.
	now func() time.Time
}

// NewDispatcher creates a dispatcher over the compiled rules. Rule
// order is significant: the first matching rule wins, with no
// specificity tie-breaking.
func NewDispatcher(rules []*Rule) *Dispatcher {
	return &Dispatcher{rules: rules, now: time.Now}
}

// RuleCount returns the number of compiled rules.
func (d *Dispatcher) RuleCount() int {
	return len(d.rules)
}

// Filters returns the distinct subscription filters of the rule list,
// in first-appearance order. The bridge subscribes to each once.
func (d *Dispatcher) Filters() []string {
	seen := make(map[string]struct{}, len(d.rules))
	filters := make([]string, 0, len(d.rules))
	for _, rule := range d.rules {
		filter := rule.Pattern.Filter()
		if _, ok := seen[filter]; ok {
			continue
		}
		seen[filter] = struct{}{}
		filters = append(filters, filter)
	}
	return filters
}

// findRule scans rules in configured order and returns the first whose
// pattern matches, or (nil, -1).
func (d *Dispatcher) findRule(topic string) (*Rule, int) {
	for i, rule := range d.rules {
		if rule.Pattern.Matches(topic) {
			return rule, i
		}
	}
	return nil, -1
}

// Dispatch maps one inbound message to a Point.
//
// Pipeline: find first matching rule, derive captures, render the field
// name, obtain the value (raw UTF-8 text, or decode + path-extract for
// JSON rules), coerce it to the rule's declared type, render tags, and
// stamp the point with the extracted timestamp or the current wall
// clock. Every failure returns a *DispatchError naming the stage; the
// error is scoped to this message only.
func (d *Dispatcher) Dispatch(topic string, payload []byte) (*Point, error) {
	rule, index := d.findRule(topic)
	if rule == nil {
		return nil, &DispatchError{Topic: topic, Rule: -1, Stage: StageMatch, Err: ErrNoMatchingRule}
	}

	fail := func(stage Stage, err error) (*Point, error) {
		return nil, &DispatchError{Topic: topic, Rule: index, Stage: stage, Err: err}
	}

	captures, _ := rule.Pattern.Captures(topic)

	field, err := rule.FieldName.Render(captures)
	if err != nil {
		return fail(StageFieldName, err)
	}

	var value Value
	var timestamp time.Time
	hasTimestamp := false

	if rule.Payload == nil {
		text, err := RawText(payload)
		if err != nil {
			return fail(StageDecodePayload, err)
		}
		value, err = CoerceString(text, rule.ValueType)
		if err != nil {
			return fail(StageCoerceValue, err)
		}
	} else {
		doc, err := DecodeDocument(payload)
		if err != nil {
			return fail(StageDecodePayload, err)
		}
		node, err := rule.Payload.ExtractValue(doc)
		if err != nil {
			return fail(StageExtractValue, err)
		}
		if rule.Payload.HasTimestamp() {
			timestamp, err = rule.Payload.ExtractTimestamp(doc)
			if err != nil {
				return fail(StageExtractTimestamp, err)
			}
			hasTimestamp = true
		}
		value, err = CoerceNode(node, rule.ValueType)
		if err != nil {
			return fail(StageCoerceValue, err)
		}
	}

	if !hasTimestamp {
		timestamp = d.now()
	}

	tags := make([]PointTag, 0, len(rule.Tags))
	for _, tag := range rule.Tags {
		if tag.Template == nil {
			tags = append(tags, PointTag{Name: tag.Name, Value: tag.Literal.String()})
			continue
		}
		rendered, err := tag.Template.Render(captures)
		if err != nil {
			return fail(StageRenderTag, fmt.Errorf("tag %q: %w", tag.Name, err))
		}
		tags = append(tags, PointTag{Name: tag.Name, Value: rendered})
	}

	return &Point{Time: timestamp, Field: field, Value: value, Tags: tags}, nil
}
