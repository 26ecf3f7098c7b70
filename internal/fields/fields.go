// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package fields carries partially specified request payloads and checks the
// provided field names against per-operation whitelists.
package fields

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/pkg/errutil"
)

// Set maps provided field names to their raw JSON values.
type Set map[string]json.RawMessage

// Decode reads a JSON object from r. An empty body yields an empty Set.
func Decode(r io.Reader) (Set, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, oops.Code("BODY_READ_FAILED").Wrap(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Set{}, nil
	}

	var set Set
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, oops.Code("BODY_MALFORMED").Wrap(errutil.Validation("request body must be a JSON object"))
	}
	if set == nil {
		// a literal null decodes without error
		return Set{}, nil
	}
	return set, nil
}

// Of builds a Set from Go values. It is meant for tests and internal callers.
func Of(values map[string]any) Set {
	set := make(Set, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		set[k] = raw
	}
	return set
}

// Names returns the provided field names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name was provided.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Rename moves the value stored under from to to, unless to is already set.
func (s Set) Rename(from, to string) {
	v, ok := s[from]
	if !ok || s.Has(to) {
		return
	}
	s[to] = v
	delete(s, from)
}

// String returns the string value of name, or nil when it was not provided.
func (s Set) String(name string) (*string, error) {
	raw, ok := s[name]
	if !ok {
		return nil, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, typeError(name, "a string")
	}
	return &v, nil
}

// Int returns the integer value of name, or nil when it was not provided.
// Integral JSON numbers and numeric strings are accepted.
func (s Set) Int(name string) (*int, error) {
	raw, ok := s[name]
	if !ok {
		return nil, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var str string
		if strErr := json.Unmarshal(raw, &str); strErr != nil {
			return nil, typeError(name, "a number")
		}
		parsed, convErr := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if convErr != nil {
			return nil, typeError(name, "a number")
		}
		f = parsed
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, typeError(name, "a whole number")
	}
	v := int(f)
	return &v, nil
}

// Bool returns the boolean value of name, or nil when it was not provided.
// JSON booleans and the strings "true" and "false" are accepted.
func (s Set) Bool(name string) (*bool, error) {
	raw, ok := s[name]
	if !ok {
		return nil, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v, nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if parsed, convErr := strconv.ParseBool(strings.TrimSpace(str)); convErr == nil {
			return &parsed, nil
		}
	}
	return nil, typeError(name, "a boolean")
}

func typeError(name, want string) error {
	return oops.Code("FIELD_TYPE_INVALID").
		With("field", name).
		Wrap(errutil.Validation("%s must be %s", name, want))
}

// Whitelist is the set of fields an operation accepts.
type Whitelist struct {
	Allowed []string
	// EmptyMessage, when set, rejects an empty Set with this message.
	EmptyMessage string
	// UnknownMessage is reported when a field outside Allowed is present.
	UnknownMessage string
}

// ErrEmpty and ErrNotAllowed let callers tell the two whitelist failures apart.
var (
	ErrEmpty      = errors.New("no fields provided")
	ErrNotAllowed = errors.New("field not allowed")
)

// Allows reports whether every name is a member of the whitelist.
func (w Whitelist) Allows(names []string) bool {
	for _, name := range names {
		if !slices.Contains(w.Allowed, name) {
			return false
		}
	}
	return true
}

// Check validates s against the whitelist.
func (w Whitelist) Check(s Set) error {
	if len(s) == 0 && w.EmptyMessage != "" {
		return oops.Code("EMPTY_BODY").
			Wrap(&checkError{kind: ErrEmpty, public: errutil.Validation("%s", w.EmptyMessage)})
	}
	for _, name := range s.Names() {
		if !slices.Contains(w.Allowed, name) {
			return oops.Code("FIELD_NOT_ALLOWED").
				With("field", name).
				With("allowed", w.Allowed).
				Wrap(&checkError{kind: ErrNotAllowed, public: errutil.Validation("%s", w.UnknownMessage)})
		}
	}
	return nil
}

// checkError joins a whitelist sentinel with its public validation error so
// both errors.Is and errutil.KindOf see through it.
type checkError struct {
	kind   error
	public error
}

func (e *checkError) Error() string   { return e.public.Error() }
func (e *checkError) Unwrap() []error { return []error{e.kind, e.public} }
