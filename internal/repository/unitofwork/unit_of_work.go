package unitofwork

import (
	"context"

	"kisansetu-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserProfileRepository() contract.UserProfileRepository
}
