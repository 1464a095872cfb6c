package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dromero/biblioteca-service/internal/errs"
	"github.com/dromero/biblioteca-service/internal/model"
	"github.com/dromero/biblioteca-service/internal/repository"
	"github.com/dromero/biblioteca-service/pkg/kafka"
	"github.com/dromero/biblioteca-service/pkg/validate"
)

const entityAuthor = "autor"

type AuthorService struct {
	log      *zap.Logger
	repo     repository.AuthorRepository
	validate *validator.Validate
	events   kafka.Enqueuer
}

func NewAuthorService(repo repository.AuthorRepository, events kafka.Enqueuer, log *zap.Logger) *AuthorService {
	return &AuthorService{
		log:      log,
		repo:     repo,
		validate: validate.New(),
		events:   events,
	}
}

// Create validates the request and persists a new author.
func (s *AuthorService) Create(ctx context.Context, req model.AuthorRequest) (model.Author, error) {
	author, err := s.validated(req)
	if err != nil {
		return model.Author{}, err
	}

	created, err := s.repo.Add(ctx, author)
	if err != nil {
		return model.Author{}, err
	}

	s.log.Info("author created",
		zap.Int("id", created.ID),
		zap.String("nombre", created.Nombre))
	publishEvent(s.log, s.events, entityAuthor, "created", created.ID)
	return created, nil
}

// GetByID returns nil without error when the author does not exist.
func (s *AuthorService) GetByID(ctx context.Context, id int) (*model.Author, error) {
	if id <= 0 {
		return nil, errs.ErrInvalidID
	}

	author, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("author not found", zap.Int("id", id))
			return nil, nil
		}
		return nil, err
	}
	return &author, nil
}

func (s *AuthorService) GetAll(ctx context.Context) ([]model.Author, error) {
	authors, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("authors listed", zap.Int("count", len(authors)))
	return authors, nil
}

// Update re-validates the fields and replaces every field but id.
func (s *AuthorService) Update(ctx context.Context, id int, req model.AuthorRequest) (model.Author, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Author{}, err
	}
	if existing == nil {
		return model.Author{}, errs.ErrNotFound
	}

	author, err := s.validated(req)
	if err != nil {
		return model.Author{}, err
	}
	author.ID = id

	updated, err := s.repo.Update(ctx, author)
	if err != nil {
		return model.Author{}, err
	}

	s.log.Info("author updated",
		zap.Int("id", updated.ID),
		zap.String("nombre", updated.Nombre))
	publishEvent(s.log, s.events, entityAuthor, "updated", updated.ID)
	return updated, nil
}

// Delete reports whether a row was removed; deleting twice returns
// true then false.
func (s *AuthorService) Delete(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, errs.ErrInvalidID
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("author deleted", zap.Int("id", id))
		publishEvent(s.log, s.events, entityAuthor, "deleted", id)
	} else {
		s.log.Warn("author not found for delete", zap.Int("id", id))
	}
	return deleted, nil
}

// validated applies the author business rules and builds the entity.
func (s *AuthorService) validated(req model.AuthorRequest) (model.Author, error) {
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Nacionalidad = strings.TrimSpace(req.Nacionalidad)
	req.FechaNacimiento = strings.TrimSpace(req.FechaNacimiento)

	if err := s.validate.Struct(req); err != nil {
		return model.Author{}, firstViolation(err)
	}

	birth, err := model.ParseDate(req.FechaNacimiento)
	if err != nil {
		return model.Author{}, errs.NewValidation("fecha_nacimiento", "must be a date in format YYYY-MM-DD")
	}
	return model.Author{
		Nombre:          req.Nombre,
		Nacionalidad:    &req.Nacionalidad,
		FechaNacimiento: &birth,
	}, nil
}
