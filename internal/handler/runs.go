package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orbitwatch/internal/metrics"
	"orbitwatch/internal/models"
	"orbitwatch/internal/repository"
	"orbitwatch/internal/service"
)

// RunTrigger starts one telemetry run.
type RunTrigger interface {
	RunOnce(ctx context.Context) (*service.RunReport, error)
}

type RunHandler struct {
	Runner  RunTrigger
	Repo    repository.OpsRepository
	Metrics *metrics.Recorder
	Logger  *zap.Logger
}

func (h *RunHandler) Register(r *gin.Engine) {
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	group := r.Group("/api/v1")
	group.POST("/runs", h.trigger)
	group.GET("/runs", h.list)
	group.GET("/sources", h.sources)
}

// @Summary Trigger a telemetry run
// @Description Runs fetch, persist, detect and emit synchronously. A failed run still answers 200 with its report.
// @Tags runs
// @Success 200 {object} apiResponse{data=service.RunReport}
// @Failure 500 {object} apiResponse
// @Router /api/v1/runs [post]
func (h *RunHandler) trigger(c *gin.Context) {
	if h.Runner == nil {
		Error(c, http.StatusInternalServerError, "runner unavailable", nil)
		return
	}
	// A client disconnect must not abort a run between fetch and persist.
	report, err := h.Runner.RunOnce(context.WithoutCancel(c.Request.Context()))
	if err != nil && !errors.Is(err, service.ErrRunFailed) {
		if h.Logger != nil {
			h.Logger.Warn("manual run failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	// A failed run is still a valid report.
	Ok(c, report, nil)
}

// @Summary List telemetry runs
// @Tags runs
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Param state query string false "success|partial|failed"
// @Success 200 {object} apiResponse{data=[]service.RunReport}
// @Failure 400 {object} apiResponse
// @Router /api/v1/runs [get]
func (h *RunHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListRunsParams{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("state"); raw != "" {
		state := models.RunState(raw)
		switch state {
		case models.RunSuccess, models.RunPartial, models.RunFailed:
			params.State = &state
		default:
			Error(c, http.StatusBadRequest, "invalid state", nil)
			return
		}
	}
	items, err := h.Repo.ListTelemetryRuns(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	out := make([]service.RunReport, 0, len(items))
	for _, it := range items {
		out = append(out, service.ReportFromModel(it))
	}
	Ok(c, out, map[string]any{"limit": params.Limit, "offset": params.Offset, "count": len(out)})
}

// @Summary List provider health
// @Tags sources
// @Success 200 {object} apiResponse{data=[]models.SourceHealth}
// @Router /api/v1/sources [get]
func (h *RunHandler) sources(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListSourceHealth(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
