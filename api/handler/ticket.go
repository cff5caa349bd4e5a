package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
	ticketUC "github.com/fastygo/tracker/usecase/ticket"
)

type TicketHandler struct {
	baseHandler
	uc *ticketUC.UseCase
}

func NewTicketHandler(uc *ticketUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tickets raised by the caller, or all tickets of one task
// @Tags tickets
// @Param task_id query string false "task the tickets belong to"
// @Router /api/v1/tickets [get]
func (h *TicketHandler) GetTickets(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	limit, offset := page(ctx)
	sorting := sortState(ctx)
	q := ticketUC.ListQuery{
		TaskID:    query(ctx, "task_id"),
		Status:    query(ctx, "status"),
		Sort:      sorting.Field,
		Direction: sorting.Direction,
		Limit:     limit,
		Offset:    offset,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tickets, err := h.uc.ListTickets(stdCtx, userID, q)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, tickets, transport.ListMeta{
		Count:     len(tickets),
		Limit:     limit,
		Offset:    offset,
		Sort:      string(q.Sort),
		Direction: string(q.Direction),
	})
}

// @Summary Get ticket
// @Tags tickets
// @Router /api/v1/tickets/{id} [get]
func (h *TicketHandler) GetTicket(ctx *fasthttp.RequestCtx) {
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

	ticket, err := h.uc.GetTicket(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, ticket)
}

// @Summary Raise a ticket against a task
// @Tags tickets
// @Failure 409 {object} transport.Envelope "ticket allowance exhausted"
// @Router /api/v1/tickets [post]
func (h *TicketHandler) CreateTicket(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TicketRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.TaskID == "" {
		h.respondInvalid(ctx, "task_id is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTicket(stdCtx, &domain.Ticket{
		Task:        domain.Unresolved[domain.Task](req.TaskID),
		RequesterID: userID,
		IssueType:   req.IssueType,
		Category:    req.Category,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update ticket
// @Tags tickets
// @Router /api/v1/tickets/{id} [put]
func (h *TicketHandler) UpdateTicket(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx)
	if id == "" {
		return
	}

	var req transport.TicketPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTicket(stdCtx, userID, id, ticketUC.Patch{
		IssueType:   req.IssueType,
		Category:    req.Category,
		Description: req.Description,
		Priority:    enumPtr[domain.Priority](req.Priority),
		Status:      enumPtr[domain.TicketStatus](req.Status),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete ticket
// @Tags tickets
// @Router /api/v1/tickets/{id} [delete]
func (h *TicketHandler) DeleteTicket(ctx *fasthttp.RequestCtx) {
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

	if err := h.uc.DeleteTicket(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
