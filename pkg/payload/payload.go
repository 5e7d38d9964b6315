// Package payload pulls typed fields out of loosely shaped JSON events.
package payload

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind classifies a FieldError
type Kind int

// Kinds of payload problems
const (
	InvalidJSON Kind = iota
	NotObject
	MissingField
	WrongType
)

// FieldError says what is wrong with a payload
type FieldError struct {
	Field string
	Kind  Kind
}

func (e *FieldError) Error() string {
	switch e.Kind {
	case InvalidJSON:
		return "payload is not valid JSON"
	case NotObject:
		if e.Field != "" {
			return fmt.Sprintf("field %v is not a JSON object", e.Field)
		}
		return "payload is not a JSON object"
	case MissingField:
		return fmt.Sprintf("missing field: %v", e.Field)
	case WrongType:
		return fmt.Sprintf("wrong type for field: %v", e.Field)
	}
	return "invalid payload"
}

// Object parses s and checks it is a JSON object
func Object(s string) (gjson.Result, error) {
	if !gjson.Valid(s) {
		return gjson.Result{}, &FieldError{Kind: InvalidJSON}
	}
	r := gjson.Parse(s)
	if !r.IsObject() {
		return gjson.Result{}, &FieldError{Kind: NotObject}
	}
	return r, nil
}

// Unwrap returns the request payload carried by a Lambda event. Proxy
// integrations put it in "body", as a string or already decoded; direct
// invocations send the payload itself.
func Unwrap(event []byte) (gjson.Result, error) {

	ev, err := Object(string(event))
	if err != nil {
		return gjson.Result{}, err
	}

	body := ev.Get("body")
	switch {
	case !body.Exists():
		return ev, nil
	case body.Type == gjson.Null:
		return gjson.Parse("{}"), nil
	case body.Type == gjson.String:
		return Object(body.Str)
	case body.IsObject():
		return body, nil
	}
	return gjson.Result{}, &FieldError{Field: "body", Kind: WrongType}
}

// String reads a string field. A missing optional field gives def.
func String(obj gjson.Result, field string, required bool, def string) (string, error) {
	v := obj.Get(gjson.Escape(field))
	if !v.Exists() || v.Type == gjson.Null {
		if required {
			return "", &FieldError{Field: field, Kind: MissingField}
		}
		return def, nil
	}
	if v.Type != gjson.String {
		return "", &FieldError{Field: field, Kind: WrongType}
	}
	return v.Str, nil
}

// StringMap reads an optional object of string values
func StringMap(obj gjson.Result, field string) (map[string]string, error) {

	v := obj.Get(gjson.Escape(field))
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, &FieldError{Field: field, Kind: NotObject}
	}

	out := map[string]string{}
	var ferr error
	v.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			ferr = &FieldError{Field: field + "." + key.Str, Kind: WrongType}
			return false
		}
		out[key.Str] = value.Str
		return true
	})
	if ferr != nil {
		return nil, ferr
	}
	return out, nil
}
