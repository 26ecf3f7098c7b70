// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package api

import (
	"time"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/task"
)

// UserDTO is the only user representation written to responses. It never
// carries the password hash, sessions or avatar.
type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Handle    string    `json:"handle"`
	Age       int       `json:"age"`
	Email     string    `json:"email" jsonschema:"format=email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskDTO is the only task representation written to responses.
type TaskDTO struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// MessageResponse is the body of message-only successes and of every error.
type MessageResponse struct {
	Content string `json:"content"`
	Error   string `json:"error"`
}

func toUserDTO(u *auth.User) UserDTO {
	return UserDTO{
		ID:        u.ID.String(),
		Name:      u.Name,
		Handle:    u.Handle,
		Age:       u.Age,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toTaskDTO(t *task.Task) TaskDTO {
	return TaskDTO{
		ID:        t.ID.String(),
		Text:      t.Text,
		Completed: t.Completed,
		Owner:     t.OwnerID.String(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toTaskDTOs(ts []*task.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTaskDTO(t))
	}
	return out
}
