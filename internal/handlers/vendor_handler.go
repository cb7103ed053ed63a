package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/logging"
	"interiorerp/internal/pdf"
	"interiorerp/internal/services"
)

type VendorHandler struct {
	metrics services.VendorMetricsService
	pdf     pdf.StatementGenerator
}

func NewVendorHandler(metrics services.VendorMetricsService, gen pdf.StatementGenerator) *VendorHandler {
	return &VendorHandler{metrics: metrics, pdf: gen}
}

// @Summary      Recompute vendor metrics
// @Description  Full scan of tasks and financial records; writes per-project summaries onto vendor profiles. Metrics are only as fresh as the last run.
// @Tags         Vendors
// @Produce      json
// @Success      200  {object}  services.RecomputeReport
// @Router       /admin/vendor-metrics/recompute [post]
func (h *VendorHandler) Recompute(c *gin.Context) {
	report, err := h.metrics.Recompute(c.Request.Context())
	if err != nil {
		fail(c, "metrics", "recompute", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /vendors/:id/metrics
func (h *VendorHandler) Metrics(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	v, err := h.metrics.Vendor(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "metrics", "get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor_id": v.ID, "project_metrics": v.ProjectMetrics})
}

// @Summary      Vendor statement
// @Description  PDF of a vendor's materialized project metrics
// @Tags         Vendors
// @Produce      application/pdf
// @Param        id   path  string  true  "Vendor user ID"
// @Success      200  {file}  binary
// @Router       /vendors/{id}/statement.pdf [get]
func (h *VendorHandler) Statement(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	v, err := h.metrics.Vendor(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, "statement", "get", err)
		return
	}

	var buf bytes.Buffer
	if err := h.pdf.VendorStatement(&buf, pdf.StatementData{Vendor: *v, GeneratedAt: time.Now()}); err != nil {
		fail(c, "statement", "render", err)
		return
	}
	logging.Logger.Infof("[statement][get][ok] vendor=%s by=%s bytes=%d", v.ID, u.ID, buf.Len())
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="statement_%s.pdf"`, v.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
