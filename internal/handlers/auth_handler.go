package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/logging"
	"interiorerp/internal/models"
	"interiorerp/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// @Summary      Sign in
// @Description  Authenticates a user and returns an access token for the active tenant
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  services.LoginResult
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "auth", "login", err)
		return
	}
	email := strings.TrimSpace(req.Email)
	logging.Logger.Infof("[auth][login] attempt email=%q", email)

	res, err := h.authService.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		fail(c, "auth", "login", err)
		return
	}
	logging.Logger.Infof("[auth][login][ok] user=%s role=%s tenant=%s took=%s",
		res.User.ID, res.User.Role, res.User.TenantID, time.Since(start).Truncate(time.Millisecond))
	c.JSON(http.StatusOK, res)
}

// GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary      Switch active tenant
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      object{tenant_id=string}  true  "Target tenant"
// @Success      200   {object}  services.LoginResult
// @Failure      403   {object}  map[string]string
// @Router       /tenants/switch [post]
func (h *AuthHandler) SwitchTenant(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		TenantID string `json:"tenant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "auth", "tenant", err)
		return
	}
	res, err := h.authService.SwitchTenant(c.Request.Context(), u, req.TenantID)
	if err != nil {
		fail(c, "auth", "tenant", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /tenants
func (h *AuthHandler) ListTenants(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	tenants, err := h.authService.ListTenants(c.Request.Context(), u)
	if err != nil {
		fail(c, "auth", "tenants", err)
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// POST /users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user", "create", err)
		return
	}
	created, err := h.authService.CreateUser(c.Request.Context(), u, req)
	if err != nil {
		fail(c, "user", "create", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
