package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/logging"
	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
	"interiorerp/internal/services"
)

type ProjectHandler struct {
	service services.ProjectService
}

func NewProjectHandler(service services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// @Summary      List visible projects
// @Description  Projects of the caller's tenants that the caller may view, with capability sets
// @Tags         Projects
// @Produce      json
// @Success      200  {array}   services.ProjectAccess
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), u)
	if err != nil {
		fail(c, "project", "list", err)
		return
	}
	logging.Logger.Debugf("[project][list][ok] user=%s count=%d", u.ID, len(list))
	c.JSON(http.StatusOK, list)
}

// GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	pa, err := h.service.Get(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "project", "get", err)
		return
	}
	c.JSON(http.StatusOK, pa)
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Name           string   `json:"name" binding:"required"`
		ClientID       string   `json:"client_id"`
		ClientIDs      []string `json:"client_ids"`
		LeadDesignerID string   `json:"lead_designer_id"`
		Budget         float64  `json:"budget"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "project", "create", err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), u, &models.Project{
		Name:           req.Name,
		ClientID:       req.ClientID,
		ClientIDs:      req.ClientIDs,
		LeadDesignerID: req.LeadDesignerID,
		Budget:         req.Budget,
	})
	if err != nil {
		fail(c, "project", "create", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /projects/:id/snapshot
func (h *ProjectHandler) Snapshot(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	snap, err := h.service.Snapshot(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "project", "snapshot", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type memberRequest struct {
	UserID string                   `json:"user_id" binding:"required"`
	List   repositories.MemberField `json:"list"`
}

func (r *memberRequest) field() repositories.MemberField {
	if r.List == "" {
		return repositories.FieldTeamMembers
	}
	return r.List
}

// POST /projects/:id/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "project", "member.add", err)
		return
	}
	if err := h.service.AddMember(c.Request.Context(), u, c.Param("id"), req.field(), req.UserID); err != nil {
		fail(c, "project", "member.add", err)
		return
	}
	logging.Logger.Infof("[project][member.add][ok] project=%s list=%s member=%s by=%s", c.Param("id"), req.field(), req.UserID, u.ID)
	c.Status(http.StatusNoContent)
}

// DELETE /projects/:id/members/:userId?list=teamMembers
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	req := memberRequest{UserID: c.Param("userId"), List: repositories.MemberField(c.Query("list"))}
	if err := h.service.RemoveMember(c.Request.Context(), u, c.Param("id"), req.field(), req.UserID); err != nil {
		fail(c, "project", "member.remove", err)
		return
	}
	logging.Logger.Infof("[project][member.remove][ok] project=%s list=%s member=%s by=%s", c.Param("id"), req.field(), req.UserID, u.ID)
	c.Status(http.StatusNoContent)
}

// @Summary      Pending approvals inbox
// @Description  Approval work awaiting the caller's role across every visible project
// @Tags         Projects
// @Produce      json
// @Success      200  {array}   authz.PendingAction
// @Router       /pending-actions [get]
func (h *ProjectHandler) PendingActions(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	actions, err := h.service.PendingActions(c.Request.Context(), u)
	if err != nil {
		fail(c, "pending", "list", err)
		return
	}
	c.JSON(http.StatusOK, actions)
}
