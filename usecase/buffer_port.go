package usecase

import (
	"context"
	"errors"

	"github.com/fastygo/tracker/domain"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer parks writes that Postgres rejected so they can be replayed later.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, user *domain.User) error
	BufferProject(ctx context.Context, operation string, project *domain.Project) error
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
}

// Bufferable reports whether a failed write should be parked for replay.
// Domain errors describe a rejected request, not an outage.
func Bufferable(err error) bool {
	var domainErr *domain.Error
	return err != nil && !errors.As(err, &domainErr)
}
