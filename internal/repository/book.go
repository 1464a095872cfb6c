package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dromero/biblioteca-service/internal/errs"
	"github.com/dromero/biblioteca-service/internal/model"
)

const booksTableName = `libros`

var bookColumns = []string{"id", "titulo", "isbn", "anio_publicacion", "genero", "autor_id"}

type bookRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewBookRepository(db *pgxpool.Pool, log *zap.Logger) (*bookRepository, error) {
	return &bookRepository{
		db:  db,
		log: log.Named("book-repo"),
	}, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	return withConn(ctx, r.db, r.log, "GetByID", func(ctx context.Context, conn *pgxpool.Conn) (model.Book, error) {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return model.Book{}, err
		}
		defer rows.Close()

		book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.Book{}, errs.ErrNotFound
			}
			return model.Book{}, err
		}
		return book, nil
	})
}

func (r *bookRepository) GetAll(ctx context.Context) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("titulo").
		ToSql()
	if err != nil {
		return nil, err
	}

	return withConn(ctx, r.db, r.log, "GetAll", func(ctx context.Context, conn *pgxpool.Conn) ([]model.Book, error) {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		return pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	})
}

// GetByAuthor lists the books referencing one author. Read-only, so no
// transaction is opened.
func (r *bookRepository) GetByAuthor(ctx context.Context, authorID int) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"autor_id": authorID}).
		OrderBy("titulo").
		ToSql()
	if err != nil {
		return nil, err
	}

	return withConn(ctx, r.db, r.log, "GetByAuthor", func(ctx context.Context, conn *pgxpool.Conn) ([]model.Book, error) {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		return pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	})
}

func (r *bookRepository) Add(ctx context.Context, entity model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("titulo", "isbn", "anio_publicacion", "genero", "autor_id").
		Values(entity.Titulo, entity.ISBN, entity.AnioPublicacion, entity.Genero, entity.AutorID).
		Suffix("returning id, titulo, isbn, anio_publicacion, genero, autor_id").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	return withTx(ctx, r.db, r.log, "Add", func(ctx context.Context, tx pgx.Tx) (model.Book, error) {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return model.Book{}, constraintErr(err)
		}
		defer rows.Close()

		book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
		if err != nil {
			return model.Book{}, constraintErr(err)
		}
		return book, nil
	})
}

func (r *bookRepository) Update(ctx context.Context, entity model.Book) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("titulo", entity.Titulo).
		Set("isbn", entity.ISBN).
		Set("anio_publicacion", entity.AnioPublicacion).
		Set("genero", entity.Genero).
		Set("autor_id", entity.AutorID).
		Where(sq.Eq{"id": entity.ID}).
		Suffix("returning id, titulo, isbn, anio_publicacion, genero, autor_id").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	return withTx(ctx, r.db, r.log, "Update", func(ctx context.Context, tx pgx.Tx) (model.Book, error) {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return model.Book{}, constraintErr(err)
		}
		defer rows.Close()

		book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.Book{}, errs.ErrNotFound
			}
			return model.Book{}, constraintErr(err)
		}
		return book, nil
	})
}

func (r *bookRepository) Delete(ctx context.Context, id int) (bool, error) {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}

	return withTx(ctx, r.db, r.log, "Delete", func(ctx context.Context, tx pgx.Tx) (bool, error) {
		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return false, constraintErr(err)
		}
		return ct.RowsAffected() > 0, nil
	})
}
