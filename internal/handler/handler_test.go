package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dromero/biblioteca-service/internal/errs"
	"github.com/dromero/biblioteca-service/internal/handler"
	service_mocks "github.com/dromero/biblioteca-service/internal/handler/mocks"
	"github.com/dromero/biblioteca-service/internal/model"
	"github.com/dromero/biblioteca-service/pkg/validate"
)

func newTestRouter(t *testing.T) (*echo.Echo, *service_mocks.MockAuthorService, *service_mocks.MockBookService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	authorSvc := service_mocks.NewMockAuthorService(c)
	bookSvc := service_mocks.NewMockBookService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(authorSvc, bookSvc, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.POST("/autores", h.CreateAuthor)
	e.GET("/autores/:id", h.GetAuthor)
	e.DELETE("/autores/:id", h.DeleteAuthor)
	e.GET("/autores/:id/libros", h.GetAuthorBooks)
	e.POST("/libros", h.CreateBook)
	e.GET("/libros", h.ListBooks)
	e.GET("/libros/:id", h.GetBook)
	return e, authorSvc, bookSvc
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(a *service_mocks.MockAuthorService, b *service_mocks.MockBookService)

	anio := 1967
	nacionalidad := "Colombiana"
	birth, err := model.ParseDate("1927-03-06")
	require.NoError(t, err)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
		wantErr      bool
	}{
		{
			name: "ok. enriched with author",
			body: `{"titulo":"Cien años de soledad","isbn":"9783161484100","anio_publicacion":1967,"autor_id":1,"genero":"Novela"}`,
			mockBehavior: func(a *service_mocks.MockAuthorService, b *service_mocks.MockBookService) {
				b.EXPECT().
					Create(context.Background(), model.BookRequest{
						Titulo:          "Cien años de soledad",
						ISBN:            "9783161484100",
						AutorID:         1,
						AnioPublicacion: 1967,
						Genero:          "Novela",
					}).
					Return(&model.EnrichedBook{
						Book: model.Book{
							ID:              10,
							Titulo:          "Cien años de soledad",
							ISBN:            "9783161484100",
							AnioPublicacion: &anio,
							Genero:          "Novela",
							AutorID:         1,
						},
						Author: &model.Author{
							ID:              1,
							Nombre:          "Gabriel García Márquez",
							Nacionalidad:    &nacionalidad,
							FechaNacimiento: &birth,
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":10,"titulo":"Cien años de soledad","isbn":"9783161484100","anio_publicacion":1967,"genero":"Novela","autor_id":1,"author":{"id":1,"nombre":"Gabriel García Márquez","nacionalidad":"Colombiana","fecha_nacimiento":"1927-03-06"}}`,
			},
		},
		{
			name: "err. validation",
			body: `{"titulo":"Cien años de soledad","isbn":"9783161484100","anio_publicacion":3000,"autor_id":1,"genero":"Novela"}`,
			mockBehavior: func(a *service_mocks.MockAuthorService, b *service_mocks.MockBookService) {
				b.EXPECT().
					Create(context.Background(), gomock.Any()).
					Return(nil, errs.NewValidation("aniopublicacion", "must be at most 2100"))
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"aniopublicacion: must be at most 2100"}`,
			},
			wantErr: true,
		},
		{
			name: "err. author does not exist",
			body: `{"titulo":"Cien años de soledad","isbn":"9783161484100","anio_publicacion":1967,"autor_id":123,"genero":"Novela"}`,
			mockBehavior: func(a *service_mocks.MockAuthorService, b *service_mocks.MockBookService) {
				b.EXPECT().
					Create(context.Background(), gomock.Any()).
					Return(nil, errs.ErrAuthorNotFound)
			},
			response: response{
				expectedCode: http.StatusUnprocessableEntity,
				expectedBody: `{"message":"author does not exist"}`,
			},
			wantErr: true,
		},
		{
			name: "err. internal",
			body: `{"titulo":"Cien años de soledad","isbn":"9783161484100","anio_publicacion":1967,"autor_id":1,"genero":"Novela"}`,
			mockBehavior: func(a *service_mocks.MockAuthorService, b *service_mocks.MockBookService) {
				b.EXPECT().
					Create(context.Background(), gomock.Any()).
					Return(nil, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, authorSvc, bookSvc := newTestRouter(t)
			tt.mockBehavior(authorSvc, bookSvc)

			r := httptest.NewRequest(http.MethodPost, "/libros", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetAuthor(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		e, authorSvc, _ := newTestRouter(t)
		authorSvc.EXPECT().
			GetByID(context.Background(), 7).
			Return(&model.Author{ID: 7, Nombre: "Julio Cortázar"}, nil)

		r := httptest.NewRequest(http.MethodGet, "/autores/7", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t,
			`{"id":7,"nombre":"Julio Cortázar","nacionalidad":null,"fecha_nacimiento":null}`,
			strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		e, authorSvc, _ := newTestRouter(t)
		authorSvc.EXPECT().GetByID(context.Background(), 99).Return(nil, nil)

		r := httptest.NewRequest(http.MethodGet, "/autores/99", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()
		e, authorSvc, _ := newTestRouter(t)
		authorSvc.EXPECT().GetByID(context.Background(), -1).Return(nil, errs.ErrInvalidID)

		r := httptest.NewRequest(http.MethodGet, "/autores/-1", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		t.Parallel()
		e, _, _ := newTestRouter(t)

		r := httptest.NewRequest(http.MethodGet, "/autores/abc", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, `{"message":"id is invalid"}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_DeleteAuthor(t *testing.T) {
	t.Parallel()

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()
		e, authorSvc, _ := newTestRouter(t)
		authorSvc.EXPECT().Delete(context.Background(), 3).Return(true, nil)

		r := httptest.NewRequest(http.MethodDelete, "/autores/3", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("already gone", func(t *testing.T) {
		t.Parallel()
		e, authorSvc, _ := newTestRouter(t)
		authorSvc.EXPECT().Delete(context.Background(), 3).Return(false, nil)

		r := httptest.NewRequest(http.MethodDelete, "/autores/3", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()

	t.Run("dangling author serialized as null", func(t *testing.T) {
		t.Parallel()
		e, _, bookSvc := newTestRouter(t)
		bookSvc.EXPECT().
			GetByID(context.Background(), 10).
			Return(&model.EnrichedBook{
				Book: model.Book{ID: 10, Titulo: "Rayuela", ISBN: "9788437604572", AutorID: 77},
			}, nil)

		r := httptest.NewRequest(http.MethodGet, "/libros/10", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t,
			`{"id":10,"titulo":"Rayuela","isbn":"9788437604572","anio_publicacion":null,"genero":"","autor_id":77,"author":null}`,
			strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		e, _, bookSvc := newTestRouter(t)
		bookSvc.EXPECT().GetByID(context.Background(), 404).Return(nil, nil)

		r := httptest.NewRequest(http.MethodGet, "/libros/404", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	e, _, bookSvc := newTestRouter(t)

	anio := 1963
	bookSvc.EXPECT().GetAll(context.Background()).Return([]model.Book{
		{ID: 1, Titulo: "Rayuela", ISBN: "9788437604572", AnioPublicacion: &anio, Genero: "Novela", AutorID: 2},
	}, nil)

	r := httptest.NewRequest(http.MethodGet, "/libros", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	// bulk path stays flat: no author key
	require.Equal(t,
		`[{"id":1,"titulo":"Rayuela","isbn":"9788437604572","anio_publicacion":1963,"genero":"Novela","autor_id":2}]`,
		strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_GetAuthorBooks(t *testing.T) {
	t.Parallel()

	t.Run("author absent", func(t *testing.T) {
		t.Parallel()
		e, _, bookSvc := newTestRouter(t)
		bookSvc.EXPECT().GetByAuthor(context.Background(), 5).Return(nil, errs.ErrAuthorNotFound)

		r := httptest.NewRequest(http.MethodGet, "/autores/5/libros", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
