package contract

import (
	"context"
	"errors"

	"kisansetu-be/internal/entity"
	"kisansetu-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate record")

type UserProfileRepository interface {
	Create(ctx context.Context, profile *entity.UserProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserProfile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserProfile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
