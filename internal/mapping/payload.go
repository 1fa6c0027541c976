package mapping

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// PayloadSpec describes how to pull a value (and optionally a
// timestamp) out of a structured JSON payload. Path expressions are
// JSONPath, compiled once at rule-compile time. A nil *PayloadSpec on a
// rule means the raw payload bytes are the value.
type PayloadSpec struct {
	valuePath        jp.Expr
	valuePathRaw     string
	timestampPath    jp.Expr
	timestampPathRaw string
}

// CompilePayloadSpec compiles the value path and the optional timestamp
// path (empty string means none). The value path is required: a
// structured rule without one could never produce a value, so it is
// rejected here rather than failing every message at dispatch. A path
// that is empty or fails to parse is a configuration error
// (ErrInvalidPath).
func CompilePayloadSpec(valuePath, timestampPath string) (*PayloadSpec, error) {
	if valuePath == "" {
		return nil, fmt.Errorf("%w: value path is required", ErrInvalidPath)
	}

	vp, err := jp.ParseString(valuePath)
	if err != nil {
		return nil, fmt.Errorf("%w: value path %q: %v", ErrInvalidPath, valuePath, err)
	}

	spec := &PayloadSpec{valuePath: vp, valuePathRaw: valuePath}

	if timestampPath != "" {
		tp, err := jp.ParseString(timestampPath)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp path %q: %v", ErrInvalidPath, timestampPath, err)
		}
		spec.timestampPath = tp
		spec.timestampPathRaw = timestampPath
	}

	return spec, nil
}

// HasTimestamp reports whether a timestamp path is configured.
func (s *PayloadSpec) HasTimestamp() bool {
	return s.timestampPath != nil
}

// DecodeDocument parses raw payload bytes as a JSON document. Failure
// is ErrMalformedPayload, fatal for that message only.
func DecodeDocument(payload []byte) (any, error) {
	doc, err := oj.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return doc, nil
}

// ExtractValue evaluates the value path against the document and
// returns the first matching node in document order.
func (s *PayloadSpec) ExtractValue(doc any) (any, error) {
	results := s.valuePath.Get(doc)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: path %q", ErrValueNotFound, s.valuePathRaw)
	}
	return results[0], nil
}

// ExtractTimestamp evaluates the timestamp path and converts the first
// matching node to a timestamp. The node must be a non-negative integer
// counting milliseconds since the Unix epoch. A rule that configures a
// timestamp path requires it to resolve: no match fails the message
// rather than falling back to wall-clock time.
func (s *PayloadSpec) ExtractTimestamp(doc any) (time.Time, error) {
	results := s.timestampPath.Get(doc)
	if len(results) == 0 {
		return time.Time{}, fmt.Errorf("%w: path %q", ErrTimestampNotFound, s.timestampPathRaw)
	}

	millis, ok := results[0].(int64)
	if !ok || millis < 0 {
		return time.Time{}, fmt.Errorf("%w: node %v", ErrTimestampNotNumeric, results[0])
	}
	return time.UnixMilli(millis).UTC(), nil
}

// RawText validates a non-structured payload as UTF-8 text. The bytes
// are the entire value; no extraction step runs.
func RawText(payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", ErrInvalidPayloadEncoding
	}
	return string(payload), nil
}
