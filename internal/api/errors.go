// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/pkg/errutil"
)

const internalMessage = "internal server error"

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errutil.Kind) int {
	switch kind {
	case errutil.KindValidation, errutil.KindInvalidLogin:
		return http.StatusBadRequest
	case errutil.KindConflict:
		return http.StatusConflict
	case errutil.KindUnauthenticated:
		return http.StatusUnauthorized
	case errutil.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail aborts the request with the error's status and public message.
// Internal errors are logged and reported without detail.
func (h *handler) fail(c *gin.Context, err error) {
	kind := errutil.KindOf(err)
	msg := errutil.PublicMessage(err)
	if kind == errutil.KindInternal || msg == "" {
		errutil.LogErrorContext(c.Request.Context(), h.logger, "request failed", err)
		msg = internalMessage
	} else {
		h.logger.DebugContext(c.Request.Context(), "request rejected",
			"kind", kind.String(),
			"error", err.Error(),
			"request_id", c.GetString(requestIDKey),
		)
	}
	c.AbortWithStatusJSON(StatusFor(kind), MessageResponse{Error: msg})
}

// recovered turns a handler panic into a 500 response.
func (h *handler) recovered(c *gin.Context, rec any) {
	err, ok := rec.(error)
	if !ok {
		err = oops.Errorf("panic: %v", rec)
	}
	h.fail(c, oops.Code("HTTP_PANIC").With("route", c.FullPath()).Wrap(err))
}
