// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasktrack/tasktrack/internal/task"
)

func (h *handler) createTask(c *gin.Context) {
	set, ok := h.decode(c)
	if !ok {
		return
	}
	t, err := h.tasks.Create(c.Request.Context(), identity(c).User.ID, set)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskDTO(t))
}

// listTasks serves GET /tasks?completed=&limit=&skip=&page=&sortBy=field:dir.
func (h *handler) listTasks(c *gin.Context) {
	opts, err := task.ParseListOptions(c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}
	ts, err := h.tasks.List(c.Request.Context(), identity(c).User.ID, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTOs(ts))
}

func (h *handler) getTask(c *gin.Context) {
	t, err := h.tasks.Get(c.Request.Context(), identity(c).User.ID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTO(t))
}

func (h *handler) updateTask(c *gin.Context) {
	set, ok := h.decode(c)
	if !ok {
		return
	}
	t, err := h.tasks.Update(c.Request.Context(), identity(c).User.ID, c.Param("id"), set)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTO(t))
}

func (h *handler) deleteTask(c *gin.Context) {
	t, err := h.tasks.Delete(c.Request.Context(), identity(c).User.ID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTO(t))
}

func (h *handler) deleteAllTasks(c *gin.Context) {
	n, err := h.tasks.DeleteAll(c.Request.Context(), identity(c).User.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.DebugContext(c.Request.Context(), "tasks cleared", "count", n)
	c.JSON(http.StatusOK, MessageResponse{Content: "All user's Tasks removed successfully."})
}
