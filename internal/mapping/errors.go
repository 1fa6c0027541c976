package mapping

import "errors"

// Configuration errors, detected when rules are compiled at startup.
// A rule that fails to compile is fatal: the process refuses to run
// rather than silently skipping the rule.
var (
	// ErrInvalidPatternLevel indicates a topic pattern level that mixes
	// '+' or '#' with other characters (e.g. "bar+baz").
	ErrInvalidPatternLevel = errors.New("mapping: topic level cannot contain '+' or '#'")

	// ErrMisplacedMultiWildcard indicates a '#' level that is not the
	// final level of the pattern.
	ErrMisplacedMultiWildcard = errors.New("mapping: '#' wildcard must be the last topic level")

	// ErrInvalidReferenceIndex indicates a template reference of $0.
	// References are 1-based.
	ErrInvalidReferenceIndex = errors.New("mapping: template reference indices start at 1")

	// ErrReferenceOutOfRange indicates a template referencing more
	// captures than the rule's topic pattern can produce.
	ErrReferenceOutOfRange = errors.New("mapping: template reference exceeds wildcard count")

	// ErrInvalidPath indicates a value or timestamp path expression that
	// failed to parse.
	ErrInvalidPath = errors.New("mapping: invalid path expression")

	// ErrUnsupportedPayloadType indicates a payload spec whose type is
	// not "json".
	ErrUnsupportedPayloadType = errors.New("mapping: unsupported payload type")

	// ErrUnknownValueType indicates a declared value type outside the
	// supported set.
	ErrUnknownValueType = errors.New("mapping: unknown value type")
)

// Per-message errors, recovered at the message boundary. The offending
// message is dropped and logged; later messages are unaffected.
var (
	// ErrNoMatchingRule indicates an inbound topic that no rule matches.
	ErrNoMatchingRule = errors.New("mapping: no rule matches topic")

	// ErrMalformedPayload indicates a payload that failed to decode as a
	// structured document.
	ErrMalformedPayload = errors.New("mapping: malformed payload")

	// ErrInvalidPayloadEncoding indicates a raw payload that is not
	// valid UTF-8.
	ErrInvalidPayloadEncoding = errors.New("mapping: payload is not valid UTF-8")

	// ErrValueNotFound indicates the value path matched nothing in the
	// payload document.
	ErrValueNotFound = errors.New("mapping: value not found in payload")

	// ErrTimestampNotFound indicates the configured timestamp path
	// matched nothing in the payload document.
	ErrTimestampNotFound = errors.New("mapping: timestamp not found in payload")

	// ErrTimestampNotNumeric indicates a timestamp node that is not a
	// non-negative integer.
	ErrTimestampNotNumeric = errors.New("mapping: timestamp is not a non-negative integer")

	// ErrInvalidBoolean indicates a value that could not be coerced to a
	// boolean.
	ErrInvalidBoolean = errors.New("mapping: invalid boolean value")

	// ErrInvalidNumber indicates a value that could not be coerced to
	// the declared numeric type.
	ErrInvalidNumber = errors.New("mapping: invalid numeric value")

	// ErrUnsupportedTextSource indicates a document node (array, object,
	// null) that cannot be stringified for a text value.
	ErrUnsupportedTextSource = errors.New("mapping: node cannot be converted to text")

	// ErrUnresolvedReference indicates a template reference with no
	// corresponding capture at render time. Rule compilation validates
	// references statically, so dispatch should never hit this.
	ErrUnresolvedReference = errors.New("mapping: unresolved template reference")
)
