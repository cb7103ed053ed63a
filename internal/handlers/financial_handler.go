package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/models"
	"interiorerp/internal/services"
)

type FinancialHandler struct {
	service services.FinancialService
}

func NewFinancialHandler(service services.FinancialService) *FinancialHandler {
	return &FinancialHandler{service: service}
}

// GET /projects/:id/financials
func (h *FinancialHandler) List(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	recs, err := h.service.List(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "financial", "list", err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// POST /projects/:id/financials
func (h *FinancialHandler) Create(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.FinancialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "financial", "create", err)
		return
	}
	rec, err := h.service.Create(c.Request.Context(), u, c.Param("id"), req)
	if err != nil {
		fail(c, "financial", "create", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// POST /financials/:id/approval
func (h *FinancialHandler) SetApproval(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Party    models.Party `json:"party" binding:"required"`
		Approved *bool        `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "financial", "approve", err)
		return
	}
	rec, err := h.service.SetApproval(c.Request.Context(), u, c.Param("id"), req.Party, *req.Approved)
	if err != nil {
		fail(c, "financial", "approve", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type MeetingHandler struct {
	service services.MeetingService
}

func NewMeetingHandler(service services.MeetingService) *MeetingHandler {
	return &MeetingHandler{service: service}
}

// GET /projects/:id/meetings
func (h *MeetingHandler) List(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "meeting", "list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /projects/:id/meetings
func (h *MeetingHandler) Create(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.MeetingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "meeting", "create", err)
		return
	}
	m, err := h.service.Create(c.Request.Context(), u, c.Param("id"), req)
	if err != nil {
		fail(c, "meeting", "create", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}
