package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard/internal/models"
	"dashboard/internal/services"
)

const notifyTimeout = 10 * time.Second

type TaskHandler struct {
	service services.TaskService
	// nil when Telegram is not configured
	notifier services.Notifier
	log      *logrus.Logger
}

func NewTaskHandler(service services.TaskService, notifier services.Notifier, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{service: service, notifier: notifier, log: log}
}

func (h *TaskHandler) op(name string) *logrus.Entry {
	return h.log.WithField("operation", "handlers.Task."+name)
}

// List godoc
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        category query string false "exact category"
// @Param        status   query string false "exact status"
// @Param        date     query string false "YYYY-MM-DD"
// @Success      200 {array} models.Task
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	log := h.op("list")
	filter := models.TaskFilter{
		Category: optionalQuery(c, "category"),
		Status:   optionalQuery(c, "status"),
		Date:     optionalQuery(c, "date"),
	}

	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	log.Debugf("[task][list][ok] count=%d", len(tasks))
	c.JSON(http.StatusOK, tasks)
}

// GetByID godoc
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Param        id path int true "task id"
// @Success      200 {object} models.Task
// @Failure      404 {object} map[string]string
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	log := h.op("get")
	id, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        task body models.TaskInput true "task"
// @Success      201 {object} models.Task
// @Failure      400 {object} map[string]string
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	log := h.op("create")
	var in models.TaskInput
	if !bindJSON(c, &in, log) {
		return
	}

	task, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[task][create][ok] id=%d", task.ID)
	c.JSON(http.StatusCreated, task)
}

// Update godoc
// @Summary      Partially update a task
// @Description  Only fields present in the body change. null clears nullable fields.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id   path int              true "task id"
// @Param        task body models.TaskPatch true "fields to change"
// @Success      200 {object} models.Task
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	log := h.op("update")
	id, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	var patch models.TaskPatch
	if !bindJSON(c, &patch, log) {
		return
	}

	task, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[task][update][ok] id=%d", id)
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id path int true "task id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	log := h.op("delete")
	id, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[task][delete][ok] id=%d", id)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Complete godoc
// @Summary      Mark a task completed
// @Tags         tasks
// @Produce      json
// @Param        id path int true "task id"
// @Success      200 {object} models.Task
// @Failure      404 {object} map[string]string
// @Router       /api/tasks/{id}/complete [patch]
func (h *TaskHandler) Complete(c *gin.Context) {
	log := h.op("complete")
	id, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	task, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[task][complete][ok] id=%d", id)
	c.JSON(http.StatusOK, task)

	h.notifyCompleted(*task)
}

// Stats godoc
// @Summary      Task statistics
// @Description  Status counts, completion rate and completions for each of the last seven days.
// @Tags         tasks
// @Produce      json
// @Success      200 {object} models.TaskStats
// @Router       /api/tasks/stats [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	log := h.op("stats")
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// notifyCompleted runs in the background; a failed notification never affects the response.
func (h *TaskHandler) notifyCompleted(task models.Task) {
	if h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := h.notifier.TaskCompleted(ctx, task); err != nil {
			h.op("notify").Warnf("[tg][send][err] task=%d: %v", task.ID, err)
		}
	}()
}
