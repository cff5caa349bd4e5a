package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

type TicketFilter struct {
	TaskID      string
	RequesterID string
	Status      string
	Limit       int
	Offset      int
}

type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
}
