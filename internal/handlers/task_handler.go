package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/logging"
	"interiorerp/internal/models"
	"interiorerp/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// @Summary      Project task board
// @Description  Tasks of a project with derived completion, blocking and status
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {array}   models.TaskView
// @Failure      403  {object}  map[string]string
// @Router       /projects/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	board, err := h.service.List(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "task", "list", err)
		return
	}
	logging.Logger.Debugf("[task][list][ok] project=%s user=%s count=%d", c.Param("id"), u.ID, len(board))
	c.JSON(http.StatusOK, board)
}

// POST /projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task", "create", err)
		return
	}
	v, err := h.service.Create(c.Request.Context(), u, c.Param("id"), req)
	if err != nil {
		fail(c, "task", "create", err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	v, err := h.service.Get(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "task", "get", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// PATCH /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task", "update", err)
		return
	}
	v, err := h.service.Update(c.Request.Context(), u, c.Param("id"), req)
	if err != nil {
		fail(c, "task", "update", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), u, c.Param("id")); err != nil {
		fail(c, "task", "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Write one approval cell
// @Description  Sets the caller's party cell at a gate. The task status is re-derived afterwards.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string  true  "Task ID"
// @Param        body  body      object{gate=string,party=string,status=string}  true  "Approval"
// @Success      200   {object}  models.TaskView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /tasks/{id}/approvals [post]
func (h *TaskHandler) SetApproval(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Gate   models.Gate           `json:"gate" binding:"required"`
		Party  models.Party          `json:"party" binding:"required"`
		Status models.ApprovalStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task", "approve", err)
		return
	}
	v, err := h.service.SetApproval(c.Request.Context(), u, c.Param("id"), req.Gate, req.Party, req.Status)
	if err != nil {
		fail(c, "task", "approve", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Complete a task
// @Description  First call moves the task to REVIEW, a second call from REVIEW confirms DONE once all gating approvals are in
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  models.TaskView
// @Failure      409  {object}  map[string]string
// @Router       /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	v, err := h.service.Complete(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "task", "complete", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// POST /tasks/:id/status
func (h *TaskHandler) SetStatus(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task", "status", err)
		return
	}
	v, err := h.service.SetStatus(c.Request.Context(), u, c.Param("id"), req.Status)
	if err != nil {
		fail(c, "task", "status", err)
		return
	}
	c.JSON(http.StatusOK, v)
}
