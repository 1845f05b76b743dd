package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zapp_server/internal/projects"
)

// UserIDHeader carries the caller identity established by the external
// auth provider.
const UserIDHeader = "X-User-ID"

// requireUser reads the caller id, answering 401 when it is missing.
func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing " + UserIDHeader + " header"})
		return "", false
	}
	return userID, true
}

// ownedProject loads the project at :id and checks it belongs to userID.
// Projects of other users are reported as not found.
func (h *APIHandler) ownedProject(c *gin.Context, log *logrus.Entry, userID string) (*projects.Project, bool) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, log, err)
		return nil, false
	}
	if p == nil || p.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return nil, false
	}
	return p, true
}

// GET /api/projects
func (h *APIHandler) ListProjects(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, h.log.WithField("user_id", userID), err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/projects
func (h *APIHandler) CreateProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req projects.NewProject
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	log := h.log.WithField("user_id", userID)
	p, err := h.projects.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, log, err)
		return
	}
	log.WithField("project_id", p.ID).Info("Project created")
	c.JSON(http.StatusCreated, p)
}

// GET /api/projects/:id
func (h *APIHandler) GetProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, ok := h.ownedProject(c, h.log.WithField("user_id", userID), userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// PATCH /api/projects/:id
func (h *APIHandler) UpdateProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req projects.Update
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	log := h.log.WithFields(logrus.Fields{"user_id": userID, "project_id": c.Param("id")})
	if _, ok := h.ownedProject(c, log, userID); !ok {
		return
	}
	if err := h.projects.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		h.fail(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/projects/:id
func (h *APIHandler) DeleteProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	log := h.log.WithFields(logrus.Fields{"user_id": userID, "project_id": c.Param("id")})
	if _, ok := h.ownedProject(c, log, userID); !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, log, err)
		return
	}
	log.Info("Project deleted")
	c.Status(http.StatusNoContent)
}
