package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dromero/biblioteca-service/internal/errs"
	"github.com/dromero/biblioteca-service/internal/model"
	mock_repository "github.com/dromero/biblioteca-service/internal/repository/mocks"
	"github.com/dromero/biblioteca-service/internal/service"
)

func newAuthorService(t *testing.T) (*service.AuthorService, *mock_repository.MockAuthorRepository) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	repo := mock_repository.NewMockAuthorRepository(c)
	return service.NewAuthorService(repo, nil, zap.NewExample().Named("test")), repo
}

func TestAuthorService_Create(t *testing.T) {
	t.Parallel()

	nacionalidad := "Colombiana"
	birth, err := model.ParseDate("1927-03-06")
	require.NoError(t, err)

	tests := []struct {
		name         string
		req          model.AuthorRequest
		mockBehavior func(r *mock_repository.MockAuthorRepository)
		wantErrField string
	}{
		{
			name: "ok",
			req: model.AuthorRequest{
				Nombre:          "Gabriel García Márquez",
				Nacionalidad:    "Colombiana",
				FechaNacimiento: "1927-03-06",
			},
			mockBehavior: func(r *mock_repository.MockAuthorRepository) {
				entity := model.Author{
					Nombre:          "Gabriel García Márquez",
					Nacionalidad:    &nacionalidad,
					FechaNacimiento: &birth,
				}
				created := entity
				created.ID = 7
				r.EXPECT().Add(context.Background(), entity).Return(created, nil)
			},
		},
		{
			name: "err. nombre too short",
			req: model.AuthorRequest{
				Nombre:          "G",
				Nacionalidad:    "Colombiana",
				FechaNacimiento: "1927-03-06",
			},
			mockBehavior: func(r *mock_repository.MockAuthorRepository) {},
			wantErrField: "nombre",
		},
		{
			name: "err. nombre with digits",
			req: model.AuthorRequest{
				Nombre:          "Gabriel 77",
				Nacionalidad:    "Colombiana",
				FechaNacimiento: "1927-03-06",
			},
			mockBehavior: func(r *mock_repository.MockAuthorRepository) {},
			wantErrField: "nombre",
		},
		{
			name: "err. nacionalidad too short",
			req: model.AuthorRequest{
				Nombre:          "Gabriel García Márquez",
				Nacionalidad:    "C",
				FechaNacimiento: "1927-03-06",
			},
			mockBehavior: func(r *mock_repository.MockAuthorRepository) {},
			wantErrField: "nacionalidad",
		},
		{
			name: "err. bad date",
			req: model.AuthorRequest{
				Nombre:          "Gabriel García Márquez",
				Nacionalidad:    "Colombiana",
				FechaNacimiento: "06/03/1927",
			},
			mockBehavior: func(r *mock_repository.MockAuthorRepository) {},
			wantErrField: "fechanacimiento",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo := newAuthorService(t)
			tt.mockBehavior(repo)

			created, err := svc.Create(context.Background(), tt.req)
			if tt.wantErrField != "" {
				require.Error(t, err)
				require.True(t, errs.IsValidation(err))
				require.Contains(t, err.Error(), tt.wantErrField)
				return
			}
			require.NoError(t, err)
			require.Positive(t, created.ID)
			require.Equal(t, tt.req.Nombre, created.Nombre)
			require.Equal(t, tt.req.Nacionalidad, *created.Nacionalidad)
			require.Equal(t, tt.req.FechaNacimiento, created.FechaNacimiento.String())
		})
	}
}

func TestAuthorService_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("invalid id never touches storage", func(t *testing.T) {
		t.Parallel()
		svc, _ := newAuthorService(t)
		for _, id := range []int{0, -1, -42} {
			author, err := svc.GetByID(context.Background(), id)
			require.ErrorIs(t, err, errs.ErrInvalidID)
			require.Nil(t, author)
		}
	})

	t.Run("absent returns nil without error", func(t *testing.T) {
		t.Parallel()
		svc, repo := newAuthorService(t)
		repo.EXPECT().GetByID(context.Background(), 99).Return(model.Author{}, errs.ErrNotFound)

		author, err := svc.GetByID(context.Background(), 99)
		require.NoError(t, err)
		require.Nil(t, author)
	})

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		svc, repo := newAuthorService(t)
		repo.EXPECT().GetByID(context.Background(), 7).
			Return(model.Author{ID: 7, Nombre: "Julio Cortázar"}, nil)

		author, err := svc.GetByID(context.Background(), 7)
		require.NoError(t, err)
		require.NotNil(t, author)
		require.Equal(t, "Julio Cortázar", author.Nombre)
	})
}

func TestAuthorService_Update(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc, repo := newAuthorService(t)
		repo.EXPECT().GetByID(context.Background(), 5).Return(model.Author{}, errs.ErrNotFound)

		_, err := svc.Update(context.Background(), 5, model.AuthorRequest{
			Nombre:          "Jorge Luis Borges",
			Nacionalidad:    "Argentina",
			FechaNacimiento: "1899-08-24",
		})
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc, repo := newAuthorService(t)
		nacionalidad := "Argentina"
		birth, err := model.ParseDate("1899-08-24")
		require.NoError(t, err)

		repo.EXPECT().GetByID(context.Background(), 5).Return(model.Author{ID: 5, Nombre: "Borges"}, nil)
		entity := model.Author{
			ID:              5,
			Nombre:          "Jorge Luis Borges",
			Nacionalidad:    &nacionalidad,
			FechaNacimiento: &birth,
		}
		repo.EXPECT().Update(context.Background(), entity).Return(entity, nil)

		updated, err := svc.Update(context.Background(), 5, model.AuthorRequest{
			Nombre:          "Jorge Luis Borges",
			Nacionalidad:    "Argentina",
			FechaNacimiento: "1899-08-24",
		})
		require.NoError(t, err)
		require.Equal(t, "Jorge Luis Borges", updated.Nombre)
	})
}

func TestAuthorService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()
		svc, _ := newAuthorService(t)
		_, err := svc.Delete(context.Background(), 0)
		require.ErrorIs(t, err, errs.ErrInvalidID)
	})

	t.Run("idempotent: true then false", func(t *testing.T) {
		t.Parallel()
		svc, repo := newAuthorService(t)
		gomock.InOrder(
			repo.EXPECT().Delete(context.Background(), 3).Return(true, nil),
			repo.EXPECT().Delete(context.Background(), 3).Return(false, nil),
		)

		deleted, err := svc.Delete(context.Background(), 3)
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = svc.Delete(context.Background(), 3)
		require.NoError(t, err)
		require.False(t, deleted)
	})
}
