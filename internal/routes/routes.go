package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/handlers"
	"interiorerp/internal/middleware"
	"interiorerp/internal/models"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Project   *handlers.ProjectHandler
	Task      *handlers.TaskHandler
	Document  *handlers.DocumentHandler
	Financial *handlers.FinancialHandler
	Meeting   *handlers.MeetingHandler
	Vendor    *handlers.VendorHandler
	Stream    *handlers.StreamHandler

	Integrations *handlers.IntegrationsHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, secret []byte, users middleware.UserLoader) *gin.Engine {
	// ---- public
	r.POST("/login", h.Auth.Login)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/integrations/telegram/webhook", h.Integrations.Webhook)

	// ---- protected
	api := r.Group("/",
		middleware.AuthMiddleware(secret),
		middleware.LoadUser(users),
		middleware.TenantGuard(),
	)

	api.GET("/me", h.Auth.Me)
	api.GET("/tenants", h.Auth.ListTenants)
	api.POST("/tenants/switch", middleware.RequireRoles(models.RoleAdmin), h.Auth.SwitchTenant)
	api.POST("/users", middleware.RequireRoles(models.RoleAdmin), h.Auth.CreateUser)
	api.GET("/pending-actions", h.Project.PendingActions)
	api.POST("/integrations/telegram/link", h.Integrations.RequestTelegramLink)

	projects := api.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.POST("", h.Project.Create)
		projects.GET("/:id", h.Project.Get)
		projects.GET("/:id/snapshot", h.Project.Snapshot)
		projects.POST("/:id/members", h.Project.AddMember)
		projects.DELETE("/:id/members/:userId", h.Project.RemoveMember)

		projects.GET("/:id/tasks", h.Task.List)
		projects.POST("/:id/tasks", h.Task.Create)
		projects.GET("/:id/stream", h.Stream.Board)

		projects.GET("/:id/documents", h.Document.List)
		projects.GET("/:id/documents/stream", h.Stream.Documents)
		projects.POST("/:id/documents", h.Document.Create)

		projects.GET("/:id/financials", h.Financial.List)
		projects.GET("/:id/financials/stream", h.Stream.Financials)
		projects.POST("/:id/financials", h.Financial.Create)

		projects.GET("/:id/meetings", h.Meeting.List)
		projects.POST("/:id/meetings", h.Meeting.Create)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("/:id", h.Task.Get)
		tasks.PATCH("/:id", h.Task.Update)
		tasks.DELETE("/:id", h.Task.Delete)
		tasks.POST("/:id/approvals", h.Task.SetApproval)
		tasks.POST("/:id/complete", h.Task.Complete)
		tasks.POST("/:id/status", h.Task.SetStatus)
	}

	docs := api.Group("/documents")
	{
		docs.POST("/:id/approval", h.Document.SetApproval)
		docs.DELETE("/:id", h.Document.Delete)
	}

	api.POST("/financials/:id/approval", h.Financial.SetApproval)

	vendors := api.Group("/vendors", middleware.RequireRoles(models.RoleAdmin, models.RoleVendor))
	{
		vendors.GET("/:id/metrics", h.Vendor.Metrics)
		vendors.GET("/:id/statement.pdf", h.Vendor.Statement)
	}

	// ADMIN
	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/vendor-metrics/recompute", h.Vendor.Recompute)
	}

	return r
}
