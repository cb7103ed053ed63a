package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/authz"
	"interiorerp/internal/logging"
	"interiorerp/internal/models"
	"interiorerp/internal/services"
)

// BoardRegistry hands out live board feeds per project.
type BoardRegistry interface {
	Register(projectID string) (<-chan []models.TaskView, func())
}

// ProjectFeeds streams raw document and financial snapshots of one project.
type ProjectFeeds interface {
	SubscribeDocuments(ctx context.Context, projectID string, onSnapshot func([]models.Document), onError func(error)) (unsubscribe func())
	SubscribeFinancials(ctx context.Context, projectID string, onSnapshot func([]models.FinancialRecord), onError func(error)) (unsubscribe func())
}

type StreamHandler struct {
	projects  services.ProjectService
	boards    BoardRegistry
	feeds     ProjectFeeds
	keepAlive time.Duration
}

func NewStreamHandler(projects services.ProjectService, boards BoardRegistry, feeds ProjectFeeds) *StreamHandler {
	return &StreamHandler{projects: projects, boards: boards, feeds: feeds, keepAlive: 25 * time.Second}
}

// @Summary      Live task board
// @Description  Server-sent events: a "board" event with the full derived task set after every change
// @Tags         Tasks
// @Produce      text/event-stream
// @Param        id  path  string  true  "Project ID"
// @Router       /projects/{id}/stream [get]
func (h *StreamHandler) Board(c *gin.Context) {
	u, pa, ok := h.open(c, "board")
	if !ok {
		return
	}
	feed, stop := h.boards.Register(pa.Project.ID)
	defer stop()

	relayLoop(h, c, u, "board", feed, func(board []models.TaskView) any {
		if u.Role == models.RoleVendor {
			return ownTasks(board, u.ID)
		}
		return board
	})
}

// GET /projects/:id/documents/stream
func (h *StreamHandler) Documents(c *gin.Context) {
	u, pa, ok := h.open(c, "documents")
	if !ok {
		return
	}
	feed, stop := latest[models.Document](c.Request.Context(), func(ctx context.Context, push func([]models.Document)) func() {
		return h.feeds.SubscribeDocuments(ctx, pa.Project.ID, push, nil)
	})
	defer stop()

	relayLoop(h, c, u, "documents", feed, func(docs []models.Document) any {
		out := make([]models.Document, 0, len(docs))
		for i := range docs {
			if authz.GetDocumentAccess(u, pa.Project, pa.Tasks, &docs[i]).CanView {
				out = append(out, docs[i])
			}
		}
		return out
	})
}

// GET /projects/:id/financials/stream
func (h *StreamHandler) Financials(c *gin.Context) {
	u, pa, ok := h.open(c, "financials")
	if !ok {
		return
	}
	if !pa.Capabilities.CanViewFinancials {
		fail(c, "stream", "financials", services.ErrForbidden)
		return
	}
	feed, stop := latest[models.FinancialRecord](c.Request.Context(), func(ctx context.Context, push func([]models.FinancialRecord)) func() {
		return h.feeds.SubscribeFinancials(ctx, pa.Project.ID, push, nil)
	})
	defer stop()

	relayLoop(h, c, u, "financials", feed, func(recs []models.FinancialRecord) any { return recs })
}

// open resolves the caller and checks project visibility before anything is subscribed.
func (h *StreamHandler) open(c *gin.Context, kind string) (*models.User, *services.ProjectAccess, bool) {
	u, ok := currentUser(c)
	if !ok {
		return nil, nil, false
	}
	pa, err := h.projects.Get(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "stream", kind, err)
		return nil, nil, false
	}
	return u, pa, true
}

func relayLoop[T any](h *StreamHandler, c *gin.Context, u *models.User, event string, feed <-chan []T, shape func([]T) any) {
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	projectID := c.Param("id")
	logging.Logger.Infof("[stream][%s][open] project=%s user=%s", event, projectID, u.ID)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snap, ok := <-feed:
			if !ok {
				return false
			}
			c.SSEvent(event, shape(snap))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
	logging.Logger.Infof("[stream][%s][close] project=%s user=%s", event, projectID, u.ID)
	c.Status(http.StatusOK)
}

// latest adapts a callback subscription to a channel that only keeps the
// newest snapshot. The returned func unsubscribes.
func latest[T any](ctx context.Context, subscribe func(context.Context, func([]T)) func()) (<-chan []T, func()) {
	ch := make(chan []T, 1)
	unsubscribe := subscribe(ctx, func(snap []T) {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	})
	return ch, unsubscribe
}

func ownTasks(board []models.TaskView, userID string) []models.TaskView {
	out := make([]models.TaskView, 0, len(board))
	for _, v := range board {
		if v.AssigneeID == userID {
			out = append(out, v)
		}
	}
	return out
}
