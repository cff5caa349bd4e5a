package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
	projectUC "github.com/fastygo/tracker/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List projects
// @Tags projects
// @Param sort query string false "name, status or updated_at"
// @Param dir query string false "asc or desc"
// @Param toggle query string false "column clicked; flips dir when it is the current sort"
// @Router /api/v1/projects [get]
func (h *ProjectHandler) GetProjects(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	limit, offset := page(ctx)
	sorting := sortState(ctx)
	q := projectUC.ListQuery{
		Status:    query(ctx, "status"),
		Sort:      sorting.Field,
		Direction: sorting.Direction,
		Limit:     limit,
		Offset:    offset,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.ListProjects(stdCtx, userID, q)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, projects, transport.ListMeta{
		Count:     len(projects),
		Limit:     limit,
		Offset:    offset,
		Sort:      string(q.Sort),
		Direction: string(q.Direction),
	})
}

// @Summary Get project
// @Tags projects
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetProject(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx)
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.GetProject(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Create project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ProjectRequest
	if !h.decode(ctx, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	delivery, err := parseDate(req.DeliveryDate)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateProject(stdCtx, &domain.Project{
		OwnerID:      userID,
		Name:         req.Name,
		ClientName:   req.ClientName,
		Status:       domain.ProjectStatus(req.Status),
		StartDate:    start,
		DeliveryDate: delivery,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update project
// @Tags projects
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx)
	if id == "" {
		return
	}

	var req transport.ProjectPatchRequest
	if !h.decode(ctx, &req) {
		return
	}
	start, err := datePatch(req.StartDate)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	delivery, err := datePatch(req.DeliveryDate)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateProject(stdCtx, userID, id, projectUC.Patch{
		Name:         req.Name,
		ClientName:   req.ClientName,
		Status:       enumPtr[domain.ProjectStatus](req.Status),
		StartDate:    start,
		DeliveryDate: delivery,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete project
// @Tags projects
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx)
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteProject(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
