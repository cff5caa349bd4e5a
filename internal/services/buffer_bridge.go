package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/infrastructure/buffer"
	"github.com/fastygo/tracker/usecase"
)

// BufferBridge adapts BufferProcessor to usecase.OperationBuffer.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return b.buffer(ctx, buffer.EntityProfile, operation, user.ID, user.ID, buffer.PriorityProfile, user)
}

func (b *BufferBridge) BufferProject(ctx context.Context, operation string, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	return b.buffer(ctx, buffer.EntityProject, operation, "", project.OwnerID, buffer.PriorityProject, project)
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return b.buffer(ctx, buffer.EntityTask, operation, "", task.OwnerID, buffer.PriorityTask, task)
}

func (b *BufferBridge) buffer(ctx context.Context, entity, operation, id, userID string, priority int, record interface{}) error {
	if b == nil || b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		ID:        id,
		UserID:    userID,
		Entity:    entity,
		Operation: operation,
		Data:      payload,
		Priority:  priority,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
