package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/usecase"
	dashboardUC "github.com/fastygo/tracker/usecase/dashboard"
	"github.com/fastygo/tracker/viewmodel"
)

// DashboardHandler serves the read-side views through the dispatcher, so it
// only knows query names and their parameter types.
type DashboardHandler struct {
	baseHandler
	dispatcher *usecase.Dispatcher
}

func NewDashboardHandler(dispatcher *usecase.Dispatcher, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dispatcher:  dispatcher,
	}
}

// @Summary Windowed task metrics and priority histogram
// @Tags dashboard
// @Param window query int false "window size in days"
// @Router /api/v1/dashboard/metrics [get]
func (h *DashboardHandler) Metrics(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	m, err := usecase.Query[viewmodel.Metrics](stdCtx, h.dispatcher, dashboardUC.QueryMetrics, dashboardUC.MetricsParams{
		UserID:     userID,
		WindowDays: parseInt(query(ctx, "window"), 0),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, m)
}

// @Summary Task counts per board column
// @Tags dashboard
// @Router /api/v1/dashboard/status [get]
func (h *DashboardHandler) Status(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	shares, err := usecase.Query[[]viewmodel.StatusShare](stdCtx, h.dispatcher, dashboardUC.QueryStatus, dashboardUC.StatusParams{UserID: userID})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, shares)
}

// @Summary Swimlane board
// @Tags dashboard
// @Param lanes query string false "project or assignee"
// @Router /api/v1/dashboard/board [get]
func (h *DashboardHandler) Board(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	mode, err := dashboardUC.ParseLaneMode(query(ctx, "lanes"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := usecase.Query[viewmodel.Board](stdCtx, h.dispatcher, dashboardUC.QueryBoard, dashboardUC.BoardParams{
		UserID: userID,
		Lanes:  mode,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, board)
}

// @Summary Drop cached views
// @Tags dashboard
// @Router /api/v1/dashboard/refresh [post]
func (h *DashboardHandler) Refresh(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.dispatcher.ExecuteCommand(stdCtx, dashboardUC.CommandRefresh, dashboardUC.RefreshParams{UserID: userID}); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"refreshed": true})
}
