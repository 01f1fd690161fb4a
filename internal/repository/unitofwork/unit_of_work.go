package unitofwork

import (
	"context"

	"portfolio-notes-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	ActivityRepository() contract.ActivityRepository
}
