// Package repo persists finalized catalog entities. Repositories only ever
// receive and return immutable models values; changes to stored rows are
// expressed as modifications of a seeded builder.
//
// The SQL uses $n placeholders and RETURNING, which PostgreSQL and SQLite
// both accept.
package repo

import (
	"context"

	"github.com/Tarun9121/project-lambok/models"
)

//go:generate mockgen -source=repository.go -destination=../mocks/repository_mock.go -package=mocks

// UserRepository stores users.
type UserRepository interface {
	Insert(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Update(ctx context.Context, id int, modify func(*models.UserBuilder)) (models.User, error)
	Delete(ctx context.Context, id int) error
	BatchInsert(ctx context.Context, users []models.User) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

// ProductRepository stores products.
type ProductRepository interface {
	Insert(ctx context.Context, p models.Product) (models.Product, error)
	GetByID(ctx context.Context, id int) (models.Product, error)
	List(ctx context.Context, limit, offset int) ([]models.Product, error)
	Update(ctx context.Context, id int, modify func(*models.ProductBuilder)) (models.Product, error)
	Delete(ctx context.Context, id int) error
	BatchInsert(ctx context.Context, products []models.Product) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
}

// scanner is satisfied by *db.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
