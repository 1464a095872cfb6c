package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dromero/biblioteca-service/internal/errs"
	"github.com/dromero/biblioteca-service/internal/model"
	"github.com/dromero/biblioteca-service/internal/repository"
	"github.com/dromero/biblioteca-service/pkg/kafka"
	"github.com/dromero/biblioteca-service/pkg/validate"
)

const entityBook = "libro"

type BookService struct {
	log      *zap.Logger
	repo     repository.BookRepository
	authors  repository.AuthorRepository
	validate *validator.Validate
	events   kafka.Enqueuer
}

func NewBookService(repo repository.BookRepository, authors repository.AuthorRepository, events kafka.Enqueuer, log *zap.Logger) *BookService {
	return &BookService{
		log:      log,
		repo:     repo,
		authors:  authors,
		validate: validate.New(),
		events:   events,
	}
}

// Create validates the request, verifies the referenced author exists and
// persists the book. Field validation runs before any repository call, so
// a bad publication year is reported without touching storage.
// The existence check and the insert are two separate operations with no
// surrounding transaction; see DESIGN.md.
func (s *BookService) Create(ctx context.Context, req model.BookRequest) (*model.EnrichedBook, error) {
	book, err := s.validated(req)
	if err != nil {
		return nil, err
	}

	author, err := s.authorExists(ctx, req.AutorID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Add(ctx, book)
	if err != nil {
		return nil, err
	}

	s.log.Info("book created",
		zap.Int("id", created.ID),
		zap.String("titulo", created.Titulo),
		zap.String("autor", author.Nombre))
	publishEvent(s.log, s.events, entityBook, "created", created.ID)
	return &model.EnrichedBook{Book: created, Author: author}, nil
}

// GetByID returns nil without error when the book does not exist. The
// result nests the owning author, or null when the reference dangles.
func (s *BookService) GetByID(ctx context.Context, id int) (*model.EnrichedBook, error) {
	if id <= 0 {
		return nil, errs.ErrInvalidID
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("book not found", zap.Int("id", id))
			return nil, nil
		}
		return nil, err
	}

	author, err := s.maybeAuthor(ctx, book.AutorID)
	if err != nil {
		return nil, err
	}
	return &model.EnrichedBook{Book: book, Author: author}, nil
}

// GetAll returns bare books. The bulk path is intentionally not enriched,
// unlike the single-item path.
func (s *BookService) GetAll(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("books listed", zap.Int("count", len(books)))
	return books, nil
}

// GetByAuthor lists one author's books, each enriched with that author.
func (s *BookService) GetByAuthor(ctx context.Context, authorID int) ([]model.EnrichedBook, error) {
	var (
		author model.Author
		books  []model.Book
	)
	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		a, err := s.authors.GetByID(ctx, authorID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrAuthorNotFound
			}
			return err
		}
		author = a
		return nil
	})
	gg.Go(func() error {
		list, err := s.repo.GetByAuthor(ctx, authorID)
		if err != nil {
			return err
		}
		books = list
		return nil
	})
	if err := gg.Wait(); err != nil {
		return nil, err
	}

	enriched := make([]model.EnrichedBook, 0, len(books))
	for _, b := range books {
		enriched = append(enriched, model.EnrichedBook{Book: b, Author: &author})
	}
	s.log.Info("books listed by author",
		zap.Int("autor_id", authorID),
		zap.Int("count", len(enriched)))
	return enriched, nil
}

// Update re-validates the fields, re-checks the referenced author and
// replaces every field but id.
func (s *BookService) Update(ctx context.Context, id int, req model.BookRequest) (*model.EnrichedBook, error) {
	if id <= 0 {
		return nil, errs.ErrInvalidID
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	book, err := s.validated(req)
	if err != nil {
		return nil, err
	}

	author, err := s.authorExists(ctx, req.AutorID)
	if err != nil {
		return nil, err
	}

	book.ID = id
	updated, err := s.repo.Update(ctx, book)
	if err != nil {
		return nil, err
	}

	s.log.Info("book updated",
		zap.Int("id", updated.ID),
		zap.String("titulo", updated.Titulo))
	publishEvent(s.log, s.events, entityBook, "updated", updated.ID)
	return &model.EnrichedBook{Book: updated, Author: author}, nil
}

// Delete reports whether a row was removed.
func (s *BookService) Delete(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, errs.ErrInvalidID
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("book deleted", zap.Int("id", id))
		publishEvent(s.log, s.events, entityBook, "deleted", id)
	} else {
		s.log.Warn("book not found for delete", zap.Int("id", id))
	}
	return deleted, nil
}

// validated applies the book business rules and builds the entity.
func (s *BookService) validated(req model.BookRequest) (model.Book, error) {
	req.Titulo = strings.TrimSpace(req.Titulo)
	req.ISBN = strings.TrimSpace(req.ISBN)
	req.Genero = strings.TrimSpace(req.Genero)

	if err := s.validate.Struct(req); err != nil {
		return model.Book{}, firstViolation(err)
	}

	anio := req.AnioPublicacion
	return model.NewBook(req.Titulo, req.ISBN, &anio, req.Genero, req.AutorID)
}

// authorExists resolves the referenced author or fails with the
// referential-integrity error.
func (s *BookService) authorExists(ctx context.Context, authorID int) (*model.Author, error) {
	author, err := s.authors.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

// maybeAuthor resolves an author reference that is allowed to dangle.
func (s *BookService) maybeAuthor(ctx context.Context, authorID int) (*model.Author, error) {
	author, err := s.authors.GetByID(ctx, authorID)
	switch {
	case err == nil:
		return &author, nil
	case errors.Is(err, errs.ErrNotFound):
		return nil, nil
	default:
		return nil, err
	}
}
