package handler

import (
	"context"

	"github.com/dromero/biblioteca-service/internal/model"
	"github.com/dromero/biblioteca-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type AuthorService interface {
	Create(ctx context.Context, req model.AuthorRequest) (model.Author, error)
	GetByID(ctx context.Context, id int) (*model.Author, error)
	GetAll(ctx context.Context) ([]model.Author, error)
	Update(ctx context.Context, id int, req model.AuthorRequest) (model.Author, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type BookService interface {
	Create(ctx context.Context, req model.BookRequest) (*model.EnrichedBook, error)
	GetByID(ctx context.Context, id int) (*model.EnrichedBook, error)
	GetAll(ctx context.Context) ([]model.Book, error)
	GetByAuthor(ctx context.Context, authorID int) ([]model.EnrichedBook, error)
	Update(ctx context.Context, id int, req model.BookRequest) (*model.EnrichedBook, error)
	Delete(ctx context.Context, id int) (bool, error)
}

var (
	_ AuthorService = (*service.AuthorService)(nil)
	_ BookService   = (*service.BookService)(nil)
)
