package profile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase"
)

// Update carries the editable profile fields. Nil fields are left unchanged.
type Update struct {
	Email    *string
	Name     *string
	Role     *string
	Status   *string
	Metadata map[string]string
}

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile applies upd to userID's profile, creating it on first write.
// Only admins may change a role.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, upd Update) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrInvalidPayload
	}

	user, err := uc.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user = &domain.User{ID: userID, Role: domain.RoleMember, Status: "active"}
	case err != nil:
		return nil, err
	}

	if upd.Role != nil && *upd.Role != user.Role {
		if !domain.ValidRole(*upd.Role) {
			return nil, domain.NewError(domain.ErrCodeInvalid, "unknown role")
		}
		if user.Role != domain.RoleAdmin {
			return nil, domain.ErrForbidden
		}
		user.Role = *upd.Role
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Status != nil {
		user.Status = *upd.Status
	}
	if upd.Metadata != nil {
		user.Metadata = upd.Metadata
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer != nil && usecase.Bufferable(err) {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, err
	}
	return user, nil
}
