package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/phrazzld/scaffold-api/internal/platform/jsoncodec"
)

// Schema validates raw input and produces a typed value.
type Schema[T any] interface {
	// ID names the schema in errors and introspection output.
	ID() string

	// Validate checks raw and returns the typed value, or a *ValidationError.
	Validate(raw any) (T, error)
}

// validate is shared by every JSON schema; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names the way clients spell them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// JSON is a Schema backed by a JSON Schema document and the validate tags of T.
type JSON[T any] struct {
	id       string
	compiled *jsonschema.Schema
}

// NewJSON compiles document (draft 2020-12) into a schema producing T.
func NewJSON[T any](id, document string) (*JSON[T], error) {
	if id == "" {
		return nil, errors.New("schema id is required")
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://scaffold.local/schemas/%s.schema.json", id)
	if err := c.AddResource(url, strings.NewReader(document)); err != nil {
		return nil, fmt.Errorf("schema %s load failed: %w", id, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s compile failed: %w", id, err)
	}

	return &JSON[T]{id: id, compiled: compiled}, nil
}

// MustJSON is like NewJSON but panics on error. Use it for schemas declared
// at package initialisation.
func MustJSON[T any](id, document string) *JSON[T] {
	s, err := NewJSON[T](id, document)
	if err != nil {
		panic(err)
	}
	return s
}

// ID implements Schema.
func (s *JSON[T]) ID() string {
	return s.id
}

// Validate implements Schema.
func (s *JSON[T]) Validate(raw any) (T, error) {
	var out T

	value, err := normalize(raw)
	if err != nil {
		return out, NewValidationError(s.id, "", err.Error())
	}

	if err := s.compiled.Validate(value); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return out, &ValidationError{SchemaID: s.id, Issues: schemaIssues(verr)}
		}
		return out, NewValidationError(s.id, "", err.Error())
	}

	data, err := jsoncodec.Marshal(value)
	if err != nil {
		return out, NewValidationError(s.id, "", err.Error())
	}
	if err := jsoncodec.Unmarshal(data, &out); err != nil {
		return out, NewValidationError(s.id, "", "value does not match the declared type")
	}

	if isStruct(out) {
		if err := validate.Struct(out); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) {
				return out, &ValidationError{SchemaID: s.id, Issues: fieldIssues(fieldErrs)}
			}
			return out, NewValidationError(s.id, "", err.Error())
		}
	}

	return out, nil
}

// normalize converts raw into a generic JSON value. Byte slices are parsed as
// JSON documents; any other value is round-tripped through the encoder so
// that Go numbers, structs and maps take their JSON form.
func normalize(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeDocument(v)
	case interface{ MarshalJSON() ([]byte, error) }:
		data, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("value is not valid JSON: %w", err)
		}
		return decodeDocument(data)
	}

	data, err := jsoncodec.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("value is not representable as JSON: %w", err)
	}
	return decodeDocument(data)
}

func decodeDocument(data []byte) (any, error) {
	v, err := jsoncodec.DecodeValue(data)
	if err != nil {
		return nil, fmt.Errorf("value is not valid JSON: %w", err)
	}
	return v, nil
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}

// schemaIssues flattens the cause tree to its leaves, which name the
// individual mismatches.
func schemaIssues(verr *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			issues = append(issues, Issue{Path: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Path < issues[j].Path
	})
	return issues
}

func fieldIssues(errs validator.ValidationErrors) []Issue {
	issues := make([]Issue, 0, len(errs))
	for _, fe := range errs {
		issues = append(issues, Issue{
			Path:    fieldPointer(fe.Namespace()),
			Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
		})
	}
	return issues
}

// fieldPointer turns "HelloInput.user.email" into "/user/email".
func fieldPointer(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 1 {
		return ""
	}
	return "/" + strings.Join(parts[1:], "/")
}
