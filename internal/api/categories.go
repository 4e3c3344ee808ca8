package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func bindCategory(c *gin.Context) (string, bool) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "name is required")
		return "", false
	}
	return strings.TrimSpace(req.Name), true
}

// ListCategories GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory POST /api/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	name, ok := bindCategory(c)
	if !ok {
		return
	}
	category, err := h.store.CreateCategory(name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// RenameCategory PATCH /api/categories/:id
func (h *Handler) RenameCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	name, ok := bindCategory(c)
	if !ok {
		return
	}
	if err := h.store.RenameCategory(id, name); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": name})
}

// DeleteCategory DELETE /api/categories/:id
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
