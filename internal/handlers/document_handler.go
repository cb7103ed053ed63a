package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/models"
	"interiorerp/internal/services"
)

type DocumentHandler struct {
	service services.DocumentService
}

func NewDocumentHandler(service services.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// GET /projects/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	docs, err := h.service.List(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "document", "list", err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// POST /projects/:id/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.DocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "document", "create", err)
		return
	}
	d, err := h.service.Create(c.Request.Context(), u, c.Param("id"), req)
	if err != nil {
		fail(c, "document", "create", err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// POST /documents/:id/approval
func (h *DocumentHandler) SetApproval(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Party  models.Party          `json:"party" binding:"required"`
		Status models.ApprovalStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "document", "approve", err)
		return
	}
	d, err := h.service.SetApproval(c.Request.Context(), u, c.Param("id"), req.Party, req.Status)
	if err != nil {
		fail(c, "document", "approve", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), u, c.Param("id")); err != nil {
		fail(c, "document", "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}
