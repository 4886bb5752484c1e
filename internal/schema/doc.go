// Package schema validates untyped procedure input against a declared shape
// before any handler sees it.
//
// A Schema[T] turns a raw value (a JSON document, an already decoded JSON
// value, or a plain Go value from an in-process caller) into a T or a
// *ValidationError. The JSON implementation checks structure with a compiled
// JSON Schema document and then applies the validator/v10 tags declared on T.
// No type coercion is performed: a number never becomes a string and strings
// are passed through byte for byte.
package schema
