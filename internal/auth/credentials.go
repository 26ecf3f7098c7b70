// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package auth

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/fields"
	"github.com/tasktrack/tasktrack/pkg/errutil"
)

// Credential constraints.
const (
	MinNameLength     = 2
	MaxNameLength     = 50
	MinHandleLength   = 4
	MaxHandleLength   = 30
	MinAge            = 12
	MaxAge            = 100
	DefaultAge        = 12
	MinPasswordLength = 6
)

// Field whitelists for the account operations.
var (
	SignupFields = fields.Whitelist{
		Allowed:        []string{"name", "handle", "age", "email", "password"},
		UnknownMessage: "Not allowed fields passed, allowed fields [name,handle,age,email,password]",
	}
	UpdateFields = fields.Whitelist{
		Allowed:        []string{"name", "email", "password", "age"},
		EmptyMessage:   "Please provide at least 1 field to update!",
		UnknownMessage: "Invalid updates passed!",
	}
	LoginFields = fields.Whitelist{
		Allowed:        []string{"email", "handle", "password"},
		UnknownMessage: "Unrequired data passed!",
	}
)

// handleAlias is the handle's field name in the older API.
const handleAlias = "userName"

var emailValidator = validator.New()

func invalid(code, field, format string, args ...any) error {
	return oops.Code(code).With("field", field).Wrap(errutil.Validation(format, args...))
}

// ValidateName trims name and checks its length in runes.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < MinNameLength || n > MaxNameLength {
		return "", invalid("AUTH_INVALID_NAME", "name",
			"name must be between %d and %d characters", MinNameLength, MaxNameLength)
	}
	return name, nil
}

// ValidateHandle trims handle and checks its length in runes.
func ValidateHandle(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if n := utf8.RuneCountInString(handle); n < MinHandleLength || n > MaxHandleLength {
		return "", invalid("AUTH_INVALID_HANDLE", "handle",
			"handle must be between %d and %d characters", MinHandleLength, MaxHandleLength)
	}
	return handle, nil
}

// ValidateAge checks that age lies in [MinAge, MaxAge].
func ValidateAge(age int) error {
	if age < MinAge || age > MaxAge {
		return invalid("AUTH_INVALID_AGE", "age", "age must be between %d and %d", MinAge, MaxAge)
	}
	return nil
}

// NormalizeEmail trims and lowercases email and checks its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("AUTH_INVALID_EMAIL", "email", "email is required")
	}
	if err := emailValidator.Var(email, "email"); err != nil {
		return "", invalid("AUTH_INVALID_EMAIL", "email", "email is invalid")
	}
	return email, nil
}

// ValidatePassword checks the plaintext password rules. Passwords are never
// trimmed.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("AUTH_INVALID_PASSWORD", "password",
			"password must be at least %d characters", MinPasswordLength)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return invalid("AUTH_INVALID_PASSWORD", "password", `password must not contain "password"`)
	}
	return nil
}

// requiredString reads a mandatory string field.
func requiredString(set fields.Set, name string) (string, error) {
	v, err := set.String(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", invalid("AUTH_FIELD_REQUIRED", name, "%s is required", name)
	}
	return *v, nil
}

// signupInput is a fully validated signup request.
type signupInput struct {
	name     string
	handle   string
	age      int
	email    string
	password string
}

func parseSignup(set fields.Set) (signupInput, error) {
	set.Rename(handleAlias, "handle")
	if err := SignupFields.Check(set); err != nil {
		return signupInput{}, err
	}

	var in signupInput
	name, err := requiredString(set, "name")
	if err != nil {
		return in, err
	}
	if in.name, err = ValidateName(name); err != nil {
		return in, err
	}

	handle, err := requiredString(set, "handle")
	if err != nil {
		return in, err
	}
	if in.handle, err = ValidateHandle(handle); err != nil {
		return in, err
	}

	in.age = DefaultAge
	age, err := set.Int("age")
	if err != nil {
		return in, err
	}
	if age != nil {
		if err := ValidateAge(*age); err != nil {
			return in, err
		}
		in.age = *age
	}

	email, err := requiredString(set, "email")
	if err != nil {
		return in, err
	}
	if in.email, err = NormalizeEmail(email); err != nil {
		return in, err
	}

	if in.password, err = requiredString(set, "password"); err != nil {
		return in, err
	}
	if err := ValidatePassword(in.password); err != nil {
		return in, err
	}
	return in, nil
}

// IdentifierKind selects the column a login identifier is matched against.
type IdentifierKind int

// Identifier kinds.
const (
	IdentifierEmail IdentifierKind = iota
	IdentifierHandle
)

func (k IdentifierKind) String() string {
	if k == IdentifierHandle {
		return "handle"
	}
	return "email"
}

// Identifier names the account a login attempt targets.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

var errInvalidLoginData = errutil.Validation("Invalid data passed!")

// nonBlank treats an empty or whitespace-only identifier as absent.
func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func parseLogin(set fields.Set) (Identifier, string, error) {
	set.Rename(handleAlias, "handle")

	password, err := set.String("password")
	if err != nil {
		return Identifier{}, "", err
	}
	email, err := set.String("email")
	if err != nil {
		return Identifier{}, "", err
	}
	handle, err := set.String("handle")
	if err != nil {
		return Identifier{}, "", err
	}

	email, handle = nonBlank(email), nonBlank(handle)
	if password == nil || *password == "" || (email == nil && handle == nil) {
		return Identifier{}, "", oops.Code("AUTH_LOGIN_FIELDS_MISSING").Wrap(errInvalidLoginData)
	}
	if err := LoginFields.Check(set); err != nil {
		return Identifier{}, "", err
	}
	if email != nil && handle != nil {
		return Identifier{}, "", oops.Code("AUTH_LOGIN_AMBIGUOUS").Wrap(errInvalidLoginData)
	}

	if email != nil {
		return Identifier{Kind: IdentifierEmail, Value: strings.ToLower(strings.TrimSpace(*email))}, *password, nil
	}
	return Identifier{Kind: IdentifierHandle, Value: strings.TrimSpace(*handle)}, *password, nil
}
