package mapping

import (
	"fmt"

	"github.com/mqttflux/mqttflux/internal/infrastructure/config"
)

// Tag is one compiled tag on a rule: either a fixed typed literal or a
// text template rendered per message. Exactly one of Literal/Template
// is set.
type Tag struct {
	Name     string
	Literal  *Value
	Template *Template
}

// Rule is one compiled topic-to-data-point mapping. Rules are built
// once from configuration, never mutated afterwards, and shared freely
// across concurrent dispatches.
type Rule struct {
	Pattern   *TopicPattern
	Payload   *PayloadSpec // nil: raw text payload
	FieldName *Template
	ValueType ValueType
	Tags      []Tag
}

// CompileRule compiles and validates a single configured mapping.
//
// All configuration errors surface here: invalid pattern levels,
// misplaced '#', invalid path expressions, invalid reference indices,
// and references exceeding the pattern's single-wildcard count
// (ErrReferenceOutOfRange). Static reference validation guarantees that
// field-name and tag renders cannot run out of captures at dispatch
// time.
func CompileRule(cfg config.MappingConfig) (*Rule, error) {
	pattern, err := CompilePattern(cfg.Topic)
	if err != nil {
		return nil, err
	}

	valueType, err := ParseValueType(cfg.ValueType)
	if err != nil {
		return nil, err
	}

	fieldName, err := CompileTemplate(cfg.FieldName)
	if err != nil {
		return nil, fmt.Errorf("field name: %w", err)
	}
	if fieldName.MaxReference() > pattern.WildcardCount() {
		return nil, fmt.Errorf("%w: field name %q references $%d but pattern %q has %d wildcard(s)",
			ErrReferenceOutOfRange, cfg.FieldName, fieldName.MaxReference(), cfg.Topic, pattern.WildcardCount())
	}

	var payload *PayloadSpec
	if cfg.Payload != nil {
		if cfg.Payload.Type != "json" {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedPayloadType, cfg.Payload.Type)
		}
		payload, err = CompilePayloadSpec(cfg.Payload.ValuePath, cfg.Payload.TimestampPath)
		if err != nil {
			return nil, err
		}
	}

	tags := make([]Tag, 0, len(cfg.Tags))
	for _, tagCfg := range cfg.Tags {
		tag, err := compileTag(tagCfg, pattern)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", tagCfg.Name, err)
		}
		tags = append(tags, tag)
	}

	return &Rule{
		Pattern:   pattern,
		Payload:   payload,
		FieldName: fieldName,
		ValueType: valueType,
		Tags:      tags,
	}, nil
}

// compileTag builds one tag. Text tags compile as templates; when the
// template turns out to be a single literal run it folds into a fixed
// literal so dispatch skips the render. Non-text tags coerce their
// configured value once, at compile time.
func compileTag(cfg config.TagConfig, pattern *TopicPattern) (Tag, error) {
	valueType, err := ParseValueType(cfg.Type)
	if err != nil {
		return Tag{}, err
	}

	if valueType == TypeText {
		tpl, err := CompileTemplate(cfg.Value)
		if err != nil {
			return Tag{}, err
		}
		if literal, ok := tpl.LiteralOnly(); ok {
			value := TextValue(literal)
			return Tag{Name: cfg.Name, Literal: &value}, nil
		}
		if tpl.MaxReference() > pattern.WildcardCount() {
			return Tag{}, fmt.Errorf("%w: value %q references $%d but pattern %q has %d wildcard(s)",
				ErrReferenceOutOfRange, cfg.Value, tpl.MaxReference(), pattern.Filter(), pattern.WildcardCount())
		}
		return Tag{Name: cfg.Name, Template: tpl}, nil
	}

	value, err := CoerceString(cfg.Value, valueType)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Name: cfg.Name, Literal: &value}, nil
}

// CompileRules compiles every configured mapping, preserving order.
// The first failure aborts with the offending mapping's index and
// topic; a process must not start with a bad rule.
func CompileRules(cfgs []config.MappingConfig) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(cfgs))
	for i, cfg := range cfgs {
		rule, err := CompileRule(cfg)
		if err != nil {
			return nil, fmt.Errorf("mapping %d (topic %q): %w", i, cfg.Topic, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
