package mapping

import (
	"errors"
	"testing"
	"time"
)

func mustCompilePayloadSpec(t *testing.T, valuePath, timestampPath string) *PayloadSpec {
	t.Helper()
	spec, err := CompilePayloadSpec(valuePath, timestampPath)
	if err != nil {
		t.Fatalf("CompilePayloadSpec(%q, %q) error = %v", valuePath, timestampPath, err)
	}
	return spec
}

func TestCompilePayloadSpec(t *testing.T) {
	spec := mustCompilePayloadSpec(t, "$.value", "")
	if spec.HasTimestamp() {
		t.Fatal("HasTimestamp() = true without a timestamp path")
	}

	spec = mustCompilePayloadSpec(t, "$.value", "$.ts")
	if !spec.HasTimestamp() {
		t.Fatal("HasTimestamp() = false with a timestamp path")
	}
}

func TestCompilePayloadSpec_InvalidPath(t *testing.T) {
	if _, err := CompilePayloadSpec("$.[", ""); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("CompilePayloadSpec with bad value path error = %v, want ErrInvalidPath", err)
	}
	if _, err := CompilePayloadSpec("$.value", "$.["); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("CompilePayloadSpec with bad timestamp path error = %v, want ErrInvalidPath", err)
	}
}

func TestCompilePayloadSpec_EmptyValuePath(t *testing.T) {
	// A structured rule without a value path can never yield a value;
	// it must be rejected at compile time, not per message.
	if _, err := CompilePayloadSpec("", ""); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("CompilePayloadSpec with empty value path error = %v, want ErrInvalidPath", err)
	}
	if _, err := CompilePayloadSpec("", "$.ts"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("CompilePayloadSpec with only a timestamp path error = %v, want ErrInvalidPath", err)
	}
}

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"value": 21.5, "ts": 1700000000000}`))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		t.Fatalf("DecodeDocument() = %T, want map[string]any", doc)
	}
	if obj["value"] != 21.5 {
		t.Errorf("value node = %v, want 21.5", obj["value"])
	}
}

func TestDecodeDocument_Malformed(t *testing.T) {
	for _, payload := range []string{`{"unterminated`, `not json at all {{`} {
		if _, err := DecodeDocument([]byte(payload)); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("DecodeDocument(%q) error = %v, want ErrMalformedPayload", payload, err)
		}
	}
}

func TestExtractValue(t *testing.T) {
	spec := mustCompilePayloadSpec(t, "$.sensor.reading", "")
	doc, err := DecodeDocument([]byte(`{"sensor": {"reading": 42}}`))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}

	node, err := spec.ExtractValue(doc)
	if err != nil {
		t.Fatalf("ExtractValue() error = %v", err)
	}
	if node != int64(42) {
		t.Fatalf("ExtractValue() = %v (%T), want int64 42", node, node)
	}
}

func TestExtractValue_NotFound(t *testing.T) {
	spec := mustCompilePayloadSpec(t, "$.missing", "")
	doc, _ := DecodeDocument([]byte(`{"value": 1}`))

	if _, err := spec.ExtractValue(doc); !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("ExtractValue() error = %v, want ErrValueNotFound", err)
	}
}

func TestExtractTimestamp(t *testing.T) {
	spec := mustCompilePayloadSpec(t, "$.value", "$.ts")
	doc, _ := DecodeDocument([]byte(`{"value": 1, "ts": 1700000000000}`))

	got, err := spec.ExtractTimestamp(doc)
	if err != nil {
		t.Fatalf("ExtractTimestamp() error = %v", err)
	}
	want := time.UnixMilli(1700000000000).UTC()
	if !got.Equal(want) {
		t.Fatalf("ExtractTimestamp() = %v, want %v", got, want)
	}
}

func TestExtractTimestamp_Errors(t *testing.T) {
	spec := mustCompilePayloadSpec(t, "$.value", "$.ts")

	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"path yields nothing", `{"value": 1}`, ErrTimestampNotFound},
		{"float node", `{"value": 1, "ts": 1.5}`, ErrTimestampNotNumeric},
		{"string node", `{"value": 1, "ts": "now"}`, ErrTimestampNotNumeric},
		{"negative node", `{"value": 1, "ts": -5}`, ErrTimestampNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tt.payload))
			if err != nil {
				t.Fatalf("DecodeDocument() error = %v", err)
			}
			if _, err := spec.ExtractTimestamp(doc); !errors.Is(err, tt.want) {
				t.Fatalf("ExtractTimestamp() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRawText(t *testing.T) {
	got, err := RawText([]byte("21.5"))
	if err != nil {
		t.Fatalf("RawText() error = %v", err)
	}
	if got != "21.5" {
		t.Fatalf("RawText() = %q, want %q", got, "21.5")
	}

	if _, err := RawText([]byte{0xff, 0xfe, 0xfd}); !errors.Is(err, ErrInvalidPayloadEncoding) {
		t.Fatalf("RawText(invalid utf8) error = %v, want ErrInvalidPayloadEncoding", err)
	}
}
