// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package api

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// SignupRequest documents the POST /users/signup body.
type SignupRequest struct {
	Name     string `json:"name" jsonschema:"minLength=2,maxLength=50"`
	Handle   string `json:"handle" jsonschema:"minLength=4,maxLength=30"`
	Age      *int   `json:"age,omitempty" jsonschema:"minimum=12,maximum=100,default=12"`
	Email    string `json:"email" jsonschema:"format=email"`
	Password string `json:"password" jsonschema:"minLength=6"`
}

// LoginRequest documents the POST /users/login body. Exactly one of email
// and handle is accepted.
type LoginRequest struct {
	Email    string `json:"email,omitempty" jsonschema:"format=email"`
	Handle   string `json:"handle,omitempty"`
	Password string `json:"password"`
}

// UpdateUserRequest documents the PATCH /users/me body.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" jsonschema:"minLength=2,maxLength=50"`
	Email    *string `json:"email,omitempty" jsonschema:"format=email"`
	Password *string `json:"password,omitempty" jsonschema:"minLength=6"`
	Age      *int    `json:"age,omitempty" jsonschema:"minimum=12,maximum=100"`
}

// CreateTaskRequest documents the POST /tasks body.
type CreateTaskRequest struct {
	Text      string `json:"text" jsonschema:"minLength=1"`
	Completed *bool  `json:"completed,omitempty"`
}

// UpdateTaskRequest documents the PATCH /tasks/{id} body.
type UpdateTaskRequest struct {
	Text      *string `json:"text,omitempty" jsonschema:"minLength=1"`
	Completed *bool   `json:"completed,omitempty"`
}

var payloads = map[string]any{
	"signup-request":      &SignupRequest{},
	"login-request":       &LoginRequest{},
	"update-user-request": &UpdateUserRequest{},
	"create-task-request": &CreateTaskRequest{},
	"update-task-request": &UpdateTaskRequest{},
	"user":                &UserDTO{},
	"task":                &TaskDTO{},
	"auth-response":       &AuthResponse{},
	"message-response":    &MessageResponse{},
}

// SchemaNames lists the payloads GenerateSchema knows, sorted.
func SchemaNames() []string {
	names := make([]string, 0, len(payloads))
	for name := range payloads {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GenerateSchema returns the JSON Schema of the named payload.
func GenerateSchema(name string) ([]byte, error) {
	v, ok := payloads[name]
	if !ok {
		return nil, oops.Code("SCHEMA_UNKNOWN").With("name", name).Errorf("unknown schema %q", name)
	}
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(v)
	schema.ID = jsonschema.ID("https://tasktrack.dev/schemas/" + name + ".schema.json")
	schema.Title = "TaskTrack " + name

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_MARSHAL_FAILED").With("name", name).Wrap(err)
	}
	return data, nil
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jschema.Schema{}
)

func compiledSchema(name string) (*jschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if sch, ok := compiled[name]; ok {
		return sch, nil
	}

	data, err := GenerateSchema(name)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code("SCHEMA_PARSE_FAILED").With("name", name).Wrap(err)
	}

	c := jschema.NewCompiler()
	url := name + ".schema.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("name", name).Wrap(err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("name", name).Wrap(err)
	}
	compiled[name] = sch
	return sch, nil
}

// ValidatePayload checks a JSON document against the named schema.
func ValidatePayload(name string, data []byte) error {
	sch, err := compiledSchema(name)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return oops.Code("PAYLOAD_MALFORMED").With("name", name).Wrap(err)
	}
	if err := sch.Validate(doc); err != nil {
		return oops.Code("PAYLOAD_INVALID").With("name", name).Wrap(err)
	}
	return nil
}
