package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard/internal/models"
	"dashboard/internal/services"
)

type ProjectHandler struct {
	service services.ProjectService
	log     *logrus.Logger
}

func NewProjectHandler(service services.ProjectService, log *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, log: log}
}

func (h *ProjectHandler) op(name string) *logrus.Entry {
	return h.log.WithField("operation", "handlers.Project."+name)
}

// List godoc
// @Summary      List projects with their tasks
// @Tags         projects
// @Produce      json
// @Param        status query string false "active, paused or completed"
// @Success      200 {array} models.Project
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	log := h.op("list")
	projects, err := h.service.GetAll(c.Request.Context(), models.ProjectFilter{Status: optionalQuery(c, "status")})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetByID godoc
// @Summary      Get a project with its tasks
// @Tags         projects
// @Produce      json
// @Param        id path int true "project id"
// @Success      200 {object} models.Project
// @Failure      404 {object} map[string]string
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	log := h.op("get")
	id, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        project body models.ProjectInput true "project"
// @Success      201 {object} models.Project
// @Failure      400 {object} map[string]string
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	log := h.op("create")
	var in models.ProjectInput
	if !bindJSON(c, &in, log) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[project][create][ok] id=%d", p.ID)
	c.JSON(http.StatusCreated, p)
}

// Update godoc
// @Summary      Partially update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id      path int                 true "project id"
// @Param        project body models.ProjectPatch true "fields to change"
// @Success      200 {object} models.Project
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	log := h.op("update")
	id, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	var patch models.ProjectPatch
	if !bindJSON(c, &patch, log) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[project][update][ok] id=%d", id)
	c.JSON(http.StatusOK, p)
}

// Delete godoc
// @Summary      Delete a project and all of its tasks
// @Tags         projects
// @Produce      json
// @Param        id path int true "project id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	log := h.op("delete")
	id, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[project][delete][ok] id=%d", id)
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// AddTask godoc
// @Summary      Add a task to a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id   path int                     true "project id"
// @Param        task body models.ProjectTaskInput true "task"
// @Success      201 {object} models.ProjectTask
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /api/projects/{id}/tasks [post]
func (h *ProjectHandler) AddTask(c *gin.Context) {
	log := h.op("addTask")
	projectID, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	var in models.ProjectTaskInput
	if !bindJSON(c, &in, log) {
		return
	}
	t, err := h.service.AddTask(c.Request.Context(), projectID, in)
	if err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[project][task][create][ok] project=%d task=%d", projectID, t.ID)
	c.JSON(http.StatusCreated, t)
}

// ToggleTask godoc
// @Summary      Flip a project task's completed flag
// @Tags         projects
// @Produce      json
// @Param        id     path int true "project id"
// @Param        taskId path int true "task id"
// @Success      200 {object} models.ProjectTask
// @Failure      404 {object} map[string]string
// @Router       /api/projects/{id}/tasks/{taskId} [patch]
func (h *ProjectHandler) ToggleTask(c *gin.Context) {
	log := h.op("toggleTask")
	projectID, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "taskId", log)
	if !ok {
		return
	}
	t, err := h.service.ToggleTask(c.Request.Context(), projectID, taskID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTask godoc
// @Summary      Delete a project task
// @Tags         projects
// @Produce      json
// @Param        id     path int true "project id"
// @Param        taskId path int true "task id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /api/projects/{id}/tasks/{taskId} [delete]
func (h *ProjectHandler) DeleteTask(c *gin.Context) {
	log := h.op("deleteTask")
	projectID, ok := parseID(c, "id", log)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "taskId", log)
	if !ok {
		return
	}
	if err := h.service.DeleteTask(c.Request.Context(), projectID, taskID); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
