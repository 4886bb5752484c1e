package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textInput struct {
	Text string `json:"text"`
}

type signupInput struct {
	Email string `json:"email" validate:"email"`
	Age   int    `json:"age" validate:"gte=18"`
}

const textSchema = `{
	"type": "object",
	"properties": {"text": {"type": "string"}},
	"required": ["text"]
}`

const signupSchema = `{
	"type": "object",
	"properties": {
		"email": {"type": "string"},
		"age": {"type": "integer"}
	},
	"required": ["email", "age"]
}`

func TestJSONValidateAcceptsStringsVerbatim(t *testing.T) {
	s := MustJSON[textInput]("text", textSchema)

	for _, text := range []string{"world", "", "   ", "\t\n", " padded ", "ÜNÏCÖDE"} {
		t.Run(text, func(t *testing.T) {
			got, err := s.Validate(map[string]any{"text": text})
			require.NoError(t, err)
			assert.Equal(t, text, got.Text)
		})
	}
}

func TestJSONValidateRawForms(t *testing.T) {
	s := MustJSON[textInput]("text", textSchema)

	tests := []struct {
		name string
		raw  any
	}{
		{name: "raw message", raw: json.RawMessage(`{"text":"hi"}`)},
		{name: "bytes", raw: []byte(`{"text":"hi"}`)},
		{name: "decoded map", raw: map[string]any{"text": "hi"}},
		{name: "go struct", raw: textInput{Text: "hi"}},
		{name: "extra properties", raw: map[string]any{"text": "hi", "other": 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Validate(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, "hi", got.Text)
		})
	}
}

func TestJSONValidateRejectsWrongTypes(t *testing.T) {
	s := MustJSON[textInput]("text", textSchema)

	tests := []struct {
		name     string
		raw      any
		wantPath string
	}{
		{name: "int", raw: map[string]any{"text": 123}, wantPath: "/text"},
		{name: "json number", raw: json.RawMessage(`{"text":123}`), wantPath: "/text"},
		{name: "float", raw: map[string]any{"text": 1.5}, wantPath: "/text"},
		{name: "bool", raw: map[string]any{"text": true}, wantPath: "/text"},
		{name: "null", raw: map[string]any{"text": nil}, wantPath: "/text"},
		{name: "array", raw: map[string]any{"text": []string{"a"}}, wantPath: "/text"},
		{name: "object", raw: map[string]any{"text": map[string]any{}}, wantPath: "/text"},
		{name: "missing", raw: map[string]any{}, wantPath: ""},
		{name: "not an object", raw: "hello", wantPath: ""},
		{name: "nil", raw: nil, wantPath: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Validate(tc.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "text", verr.SchemaID)
			require.NotEmpty(t, verr.Issues)
			assert.Equal(t, tc.wantPath, verr.Issues[0].Path)
		})
	}
}

func TestJSONValidateAppliesStructTags(t *testing.T) {
	s := MustJSON[signupInput]("signup", signupSchema)

	got, err := s.Validate(map[string]any{"email": "a@b.com", "age": 30})
	require.NoError(t, err)
	assert.Equal(t, signupInput{Email: "a@b.com", Age: 30}, got)

	_, err = s.Validate(map[string]any{"email": "nope", "age": 12})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 2)
	assert.Equal(t, "/email", verr.Issues[0].Path)
	assert.Contains(t, verr.Issues[0].Message, "email")
	assert.Equal(t, "/age", verr.Issues[1].Path)
}

func TestNewJSONRejectsBadDocuments(t *testing.T) {
	_, err := NewJSON[textInput]("broken", `{"type": 12}`)
	assert.Error(t, err)

	_, err = NewJSON[textInput]("", textSchema)
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustJSON[textInput]("broken", `not json`)
	})
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("hello", "/text", "expected string, but got number")
	assert.Equal(t, "hello: input validation failed: /text: expected string, but got number", err.Error())
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("other")))

	empty := &ValidationError{SchemaID: "hello"}
	assert.Equal(t, "hello: input validation failed", empty.Error())
}
