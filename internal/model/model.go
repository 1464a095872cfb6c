package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dromero/biblioteca-service/internal/errs"
)

// Author maps a row of the autores table. A zero ID marks an author that
// was constructed in memory and not yet persisted; the id is assigned by
// the database on Add and immutable afterwards.
type Author struct {
	ID              int     `json:"id" db:"id"`
	Nombre          string  `json:"nombre" db:"nombre"`
	Nacionalidad    *string `json:"nacionalidad" db:"nacionalidad"`
	FechaNacimiento *Date   `json:"fecha_nacimiento" db:"fecha_nacimiento"`
}

// Book maps a row of the libros table. Same zero-ID convention as Author.
type Book struct {
	ID              int    `json:"id" db:"id"`
	Titulo          string `json:"titulo" db:"titulo"`
	ISBN            string `json:"isbn" db:"isbn"`
	AnioPublicacion *int   `json:"anio_publicacion" db:"anio_publicacion"`
	Genero          string `json:"genero" db:"genero"`
	AutorID         int    `json:"autor_id" db:"autor_id"`
}

// NewBook constructs a Book, trimming titulo and isbn. Both are required;
// an empty value after trimming fails construction, not persistence.
func NewBook(titulo, isbn string, anioPublicacion *int, genero string, autorID int) (Book, error) {
	titulo = strings.TrimSpace(titulo)
	if titulo == "" {
		return Book{}, errs.NewValidation("titulo", "must not be empty")
	}
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return Book{}, errs.NewValidation("isbn", "must not be empty")
	}
	return Book{
		Titulo:          titulo,
		ISBN:            isbn,
		AnioPublicacion: anioPublicacion,
		Genero:          strings.TrimSpace(genero),
		AutorID:         autorID,
	}, nil
}

// EnrichedBook nests the owning author's data under the author key.
// A dangling autor_id is rendered as an explicit null, never an error.
type EnrichedBook struct {
	Book
	Author *Author `json:"author"`
}

// AuthorRequest is the create/update payload for authors.
type AuthorRequest struct {
	Nombre          string `json:"nombre" validate:"required,min=2,alpha_space"`
	Nacionalidad    string `json:"nacionalidad" validate:"required,min=2"`
	FechaNacimiento string `json:"fecha_nacimiento" validate:"required,datetime=2006-01-02"`
}

// BookRequest is the create/update payload for books. Field order matters:
// the first violated rule is the one reported.
type BookRequest struct {
	Titulo          string `json:"titulo" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	AutorID         int    `json:"autor_id" validate:"required,gt=0"`
	AnioPublicacion int    `json:"anio_publicacion" validate:"required,gte=1000,lte=2100"`
	Genero          string `json:"genero" validate:"required,min=2"`
}

// Date is a calendar date without a time component, serialized as an
// ISO-8601 date string.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}
