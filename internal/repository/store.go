package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store groups the repositories over one gorm handle. A Store built inside
// Transaction shares the transaction across every repository.
type Store struct {
	db *gorm.DB

	Users       *UserRepo
	Projects    *ProjectRepo
	Memberships *MembershipRepo
	Tasks       *TaskRepo
	Activities  *ActivityRepo
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       &UserRepo{db: db},
		Projects:    &ProjectRepo{db: db},
		Memberships: &MembershipRepo{db: db},
		Tasks:       &TaskRepo{db: db},
		Activities:  &ActivityRepo{db: db},
	}
}

// Transaction runs fn inside a single database transaction. fn must only use
// the Store it is given.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
