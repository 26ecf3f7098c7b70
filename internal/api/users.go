// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/fields"
	"github.com/tasktrack/tasktrack/pkg/errutil"
)

// Account event names recorded in metrics.
const (
	eventSignup    = "signup"
	eventLogin     = "login"
	eventLogout    = "logout"
	eventLogoutAll = "logout_all"
	eventDelete    = "delete"
)

// decode reads the JSON object body. It writes the error response itself and
// reports false on failure.
func (h *handler) decode(c *gin.Context) (fields.Set, bool) {
	set, err := fields.Decode(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = oops.Code("BODY_TOO_LARGE").Wrap(errutil.Validation("request body too large"))
		}
		h.fail(c, err)
		return nil, false
	}
	return set, true
}

func (h *handler) signup(c *gin.Context) {
	set, ok := h.decode(c)
	if !ok {
		return
	}
	user, token, err := h.auth.Signup(c.Request.Context(), set, clientInfo(c))
	h.metrics.RecordAuthEvent(eventSignup, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{User: toUserDTO(user), Token: token})
}

func (h *handler) login(c *gin.Context) {
	set, ok := h.decode(c)
	if !ok {
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), set, clientInfo(c))
	h.metrics.RecordAuthEvent(eventLogin, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{User: toUserDTO(user), Token: token})
}

func (h *handler) logout(c *gin.Context) {
	id := identity(c)
	err := h.auth.RevokeOne(c.Request.Context(), id.User.ID, id.Token)
	h.metrics.RecordAuthEvent(eventLogout, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Content: "Logged-out successfully"})
}

func (h *handler) terminateAll(c *gin.Context) {
	err := h.auth.RevokeAll(c.Request.Context(), identity(c).User.ID)
	h.metrics.RecordAuthEvent(eventLogoutAll, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Content: "All sessions terminated successfully."})
}

func (h *handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, toUserDTO(identity(c).User))
}

func (h *handler) updateMe(c *gin.Context) {
	set, ok := h.decode(c)
	if !ok {
		return
	}
	user, err := h.auth.UpdateSelf(c.Request.Context(), identity(c).User, set)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}

func (h *handler) deleteMe(c *gin.Context) {
	user, err := h.auth.DeleteSelf(c.Request.Context(), identity(c).User.ID)
	h.metrics.RecordAuthEvent(eventDelete, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}
