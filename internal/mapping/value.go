package mapping

import (
	"fmt"
	"strconv"
)

// ValueType is the declared scalar type a rule assigns to its field (or
// a fixed tag). The string values are the config spellings.
type ValueType string

const (
	TypeBoolean         ValueType = "boolean"
	TypeFloat           ValueType = "float"
	TypeSignedInteger   ValueType = "signed-integer"
	TypeUnsignedInteger ValueType = "unsigned-integer"
	TypeText            ValueType = "text"
)

// ParseValueType validates a config-supplied type name.
func ParseValueType(s string) (ValueType, error) {
	switch vt := ValueType(s); vt {
	case TypeBoolean, TypeFloat, TypeSignedInteger, TypeUnsignedInteger, TypeText:
		return vt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownValueType, s)
	}
}

// Value is a typed scalar produced by coercion. Only the field matching
// Type is meaningful; the zero Value has an empty Type and is invalid.
// Values are comparable with ==.
type Value struct {
	Type  ValueType
	Bool  bool
	Float float64
	Int   int64
	Uint  uint64
	Text  string
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{Type: TypeBoolean, Bool: b} }

// FloatValue returns a float Value.
func FloatValue(f float64) Value { return Value{Type: TypeFloat, Float: f} }

// IntValue returns a signed integer Value.
func IntValue(i int64) Value { return Value{Type: TypeSignedInteger, Int: i} }

// UintValue returns an unsigned integer Value.
func UintValue(u uint64) Value { return Value{Type: TypeUnsignedInteger, Uint: u} }

// TextValue returns a text Value.
func TextValue(s string) Value { return Value{Type: TypeText, Text: s} }

// Field returns the native Go scalar for a datastore field write.
func (v Value) Field() any {
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeFloat:
		return v.Float
	case TypeSignedInteger:
		return v.Int
	case TypeUnsignedInteger:
		return v.Uint
	default:
		return v.Text
	}
}

// String renders the value as text, as used for tag values.
func (v Value) String() string {
	switch v.Type {
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case TypeSignedInteger:
		return strconv.FormatInt(v.Int, 10)
	case TypeUnsignedInteger:
		return strconv.FormatUint(v.Uint, 10)
	default:
		return v.Text
	}
}

// CoerceString converts a textual value to the declared type.
//
// Booleans accept exactly "true" and "false" (case-sensitive). Numbers
// parse with the standard library parse for the corresponding width.
// Text always succeeds. Coercion is pure: the input is never mutated.
func CoerceString(raw string, valueType ValueType) (Value, error) {
	switch valueType {
	case TypeBoolean:
		switch raw {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		default:
			return Value{}, fmt.Errorf("%w: %q", ErrInvalidBoolean, raw)
		}
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as float: %w", ErrInvalidNumber, raw, err)
		}
		return FloatValue(f), nil
	case TypeSignedInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as signed integer: %w", ErrInvalidNumber, raw, err)
		}
		return IntValue(i), nil
	case TypeUnsignedInteger:
		u, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as unsigned integer: %w", ErrInvalidNumber, raw, err)
		}
		return UintValue(u), nil
	case TypeText:
		return TextValue(raw), nil
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownValueType, valueType)
	}
}

// CoerceNode converts a decoded document node to the declared type.
//
// Nodes come from DecodeDocument: bool, int64, float64, string, nil,
// []any or map[string]any. Numeric nodes must convert without loss to
// the target representation: a float node never satisfies an integer
// type, and a negative integer never satisfies unsigned-integer. Text
// accepts string, boolean and numeric nodes and stringifies them; any
// other node kind fails with ErrUnsupportedTextSource.
func CoerceNode(node any, valueType ValueType) (Value, error) {
	switch valueType {
	case TypeBoolean:
		if b, ok := node.(bool); ok {
			return BoolValue(b), nil
		}
		return Value{}, fmt.Errorf("%w: node %v", ErrInvalidBoolean, node)
	case TypeFloat:
		switch n := node.(type) {
		case float64:
			return FloatValue(n), nil
		case int64:
			return FloatValue(float64(n)), nil
		default:
			return Value{}, fmt.Errorf("%w: node %v as float", ErrInvalidNumber, node)
		}
	case TypeSignedInteger:
		if i, ok := node.(int64); ok {
			return IntValue(i), nil
		}
		return Value{}, fmt.Errorf("%w: node %v as signed integer", ErrInvalidNumber, node)
	case TypeUnsignedInteger:
		if i, ok := node.(int64); ok && i >= 0 {
			return UintValue(uint64(i)), nil
		}
		return Value{}, fmt.Errorf("%w: node %v as unsigned integer", ErrInvalidNumber, node)
	case TypeText:
		switch n := node.(type) {
		case string:
			return TextValue(n), nil
		case bool:
			return TextValue(strconv.FormatBool(n)), nil
		case int64:
			return TextValue(strconv.FormatInt(n, 10)), nil
		case float64:
			return TextValue(strconv.FormatFloat(n, 'g', -1, 64)), nil
		default:
			return Value{}, fmt.Errorf("%w: node %v", ErrUnsupportedTextSource, node)
		}
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownValueType, valueType)
	}
}
