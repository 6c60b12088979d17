// Package validation decodes request bodies into typed inputs and reports
// every problem as an itemized Issue.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	CodeInvalidType      = "invalid_type"
	CodeTooSmall         = "too_small"
	CodeInvalidEnumValue = "invalid_enum_value"
	CodeInvalidString    = "invalid_string"
	CodeInvalidJSON      = "invalid_json"
	CodeCustom           = "custom"
)

// Issue is one field-level problem. Path holds field names and, for array
// elements, integer indexes.
type Issue struct {
	Path    []any  `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error carries every issue found in one payload.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 1 {
		return "validation failed: " + e.Issues[0].Message
	}
	return fmt.Sprintf("validation failed with %d issues", len(e.Issues))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Check runs the struct's validate tags and converts failures into an *Error.
// Fields listed in skip already have an issue and are not reported twice.
func Check(v any, skip ...string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}

	var issues []Issue
	for _, fe := range fieldErrs {
		if skipped[fe.Field()] {
			continue
		}
		issues = append(issues, issueFromFieldError(fe))
	}
	if len(issues) == 0 {
		return nil
	}
	return &Error{Issues: issues}
}

func issueFromFieldError(fe validator.FieldError) Issue {
	issue := Issue{Path: []any{fe.Field()}, Code: CodeCustom, Message: fe.Error()}

	switch fe.Tag() {
	case "min":
		issue.Code = CodeTooSmall
		if fe.Kind() == reflect.Slice {
			issue.Message = fmt.Sprintf("Array must contain at least %s element(s)", fe.Param())
		} else {
			issue.Message = fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
		}
	case "gt":
		issue.Code = CodeTooSmall
		issue.Message = fmt.Sprintf("Number must be greater than %s", fe.Param())
	case "oneof":
		issue.Code = CodeInvalidEnumValue
		options := strings.Fields(fe.Param())
		issue.Message = fmt.Sprintf("Invalid enum value. Expected '%s', received '%v'",
			strings.Join(options, "' | '"), fe.Value())
	case "email":
		issue.Code = CodeInvalidString
		issue.Message = "Invalid email"
	}
	return issue
}

// fieldReader pulls typed values out of a JSON object, recording an issue for
// every missing required field and every value of the wrong type.
type fieldReader struct {
	raw    map[string]json.RawMessage
	issues []Issue
	failed []string
}

// newFieldReader parses body as a JSON object. Malformed JSON and non-object
// payloads are returned as an *Error.
func newFieldReader(body []byte) (*fieldReader, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, &Error{Issues: []Issue{{
			Path:    []any{},
			Code:    CodeInvalidJSON,
			Message: "Malformed JSON body",
		}}}
	}
	if got := jsonType(trimmed); got != "object" {
		return nil, &Error{Issues: []Issue{{
			Path:    []any{},
			Code:    CodeInvalidType,
			Message: "Expected object, received " + got,
		}}}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &Error{Issues: []Issue{{Path: []any{}, Code: CodeInvalidJSON, Message: "Malformed JSON body"}}}
	}
	return &fieldReader{raw: raw}, nil
}

func (fr *fieldReader) fail(name, code, message string, path ...any) {
	if len(path) == 0 {
		path = []any{name}
	}
	fr.issues = append(fr.issues, Issue{Path: path, Code: code, Message: message})
	fr.failed = append(fr.failed, name)
}

func (fr *fieldReader) lookup(name string, required bool) (json.RawMessage, bool) {
	value, ok := fr.raw[name]
	if !ok {
		if required {
			fr.fail(name, CodeInvalidType, "Required")
		}
		return nil, false
	}
	return bytes.TrimSpace(value), true
}

func (fr *fieldReader) wrongType(name, expected string, value json.RawMessage) {
	fr.fail(name, CodeInvalidType, fmt.Sprintf("Expected %s, received %s", expected, jsonType(value)))
}

// str returns a pointer to the string at name, or nil when the field is
// absent or not a string.
func (fr *fieldReader) str(name string, required bool) *string {
	value, ok := fr.lookup(name, required)
	if !ok {
		return nil
	}
	var s string
	if jsonType(value) != "string" || json.Unmarshal(value, &s) != nil {
		fr.wrongType(name, "string", value)
		return nil
	}
	return &s
}

// stringList returns the string array at name. Each non-string element is
// reported with its index in the path.
func (fr *fieldReader) stringList(name string, required bool) *[]string {
	value, ok := fr.lookup(name, required)
	if !ok {
		return nil
	}
	var elems []json.RawMessage
	if jsonType(value) != "array" || json.Unmarshal(value, &elems) != nil {
		fr.wrongType(name, "array", value)
		return nil
	}

	out := make([]string, 0, len(elems))
	valid := true
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		var s string
		if jsonType(elem) != "string" || json.Unmarshal(elem, &s) != nil {
			fr.fail(name, CodeInvalidType, "Expected string, received "+jsonType(elem), name, i)
			valid = false
			continue
		}
		out = append(out, s)
	}
	if !valid {
		return nil
	}
	return &out
}

// integer returns the whole number at name. Fractional numbers are a type error.
func (fr *fieldReader) integer(name string, required bool) *int {
	value, ok := fr.lookup(name, required)
	if !ok {
		return nil
	}
	var f float64
	if jsonType(value) != "number" || json.Unmarshal(value, &f) != nil {
		fr.wrongType(name, "number", value)
		return nil
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		fr.fail(name, CodeInvalidType, "Expected integer, received float")
		return nil
	}
	n := int(f)
	return &n
}

// finish merges the type issues with the tag checks run against target.
func (fr *fieldReader) finish(target any) error {
	checkErr := Check(target, fr.failed...)

	issues := append([]Issue{}, fr.issues...)
	if checkErr != nil {
		verr, ok := checkErr.(*Error)
		if !ok {
			return checkErr
		}
		issues = append(issues, verr.Issues...)
	}
	if len(issues) == 0 {
		return nil
	}
	return &Error{Issues: issues}
}

func jsonType(value json.RawMessage) string {
	if len(value) == 0 {
		return "undefined"
	}
	switch value[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
