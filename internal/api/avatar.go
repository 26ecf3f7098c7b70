// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/avatar"
)

// multipartOverhead is allowed on top of the avatar size for form framing.
const multipartOverhead = 64 << 10

func (h *handler) uploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.avatars.MaxBytes()+multipartOverhead)

	file, err := c.FormFile("avatar")
	if err != nil {
		h.fail(c, oops.Code("AVATAR_MISSING").With("reason", err.Error()).Wrap(avatar.ErrUnsupportedFormat))
		return
	}
	if !avatar.AllowedName(file.Filename) {
		h.fail(c, oops.Code("AVATAR_EXTENSION_INVALID").With("filename", file.Filename).Wrap(avatar.ErrUnsupportedFormat))
		return
	}
	if file.Size > h.avatars.MaxBytes() {
		h.fail(c, oops.Code("AVATAR_TOO_LARGE").With("size", file.Size).Wrap(avatar.ErrTooLarge))
		return
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, oops.Code("AVATAR_OPEN_FAILED").Wrap(err))
		return
	}
	defer f.Close() //nolint:errcheck // read-only multipart part

	png, err := h.avatars.Normalize(f)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.auth.SetAvatar(c.Request.Context(), identity(c).User.ID, png); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Content: "Avatar uploaded successfully"})
}

func (h *handler) deleteAvatar(c *gin.Context) {
	if err := h.auth.ClearAvatar(c.Request.Context(), identity(c).User.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Content: "Avatar deleted successfully"})
}

func (h *handler) getAvatar(c *gin.Context) {
	userID, err := ulid.ParseStrict(c.Param("id"))
	if err != nil {
		h.fail(c, oops.Code("AVATAR_USER_INVALID").With("id", c.Param("id")).Wrap(auth.ErrNotFound))
		return
	}
	png, err := h.auth.Avatar(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, avatar.ContentType, png)
}
