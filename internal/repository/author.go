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

const authorsTableName = `autores`

var authorColumns = []string{"id", "nombre", "nacionalidad", "fecha_nacimiento"}

type authorRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewAuthorRepository(db *pgxpool.Pool, log *zap.Logger) (*authorRepository, error) {
	return &authorRepository{
		db:  db,
		log: log.Named("author-repo"),
	}, nil
}

func (r *authorRepository) GetByID(ctx context.Context, id int) (model.Author, error) {
	query, args, err := qb.Select(authorColumns...).
		From(authorsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	return withConn(ctx, r.db, r.log, "GetByID", func(ctx context.Context, conn *pgxpool.Conn) (model.Author, error) {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return model.Author{}, err
		}
		defer rows.Close()

		author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.Author{}, errs.ErrNotFound
			}
			return model.Author{}, err
		}
		return author, nil
	})
}

func (r *authorRepository) GetAll(ctx context.Context) ([]model.Author, error) {
	query, args, err := qb.Select(authorColumns...).
		From(authorsTableName).
		OrderBy("nombre").
		ToSql()
	if err != nil {
		return nil, err
	}

	return withConn(ctx, r.db, r.log, "GetAll", func(ctx context.Context, conn *pgxpool.Conn) ([]model.Author, error) {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		return pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
	})
}

func (r *authorRepository) Add(ctx context.Context, entity model.Author) (model.Author, error) {
	query, args, err := qb.Insert(authorsTableName).
		Columns("nombre", "nacionalidad", "fecha_nacimiento").
		Values(entity.Nombre, entity.Nacionalidad, entity.FechaNacimiento).
		Suffix("returning id, nombre, nacionalidad, fecha_nacimiento").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	return withTx(ctx, r.db, r.log, "Add", func(ctx context.Context, tx pgx.Tx) (model.Author, error) {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return model.Author{}, constraintErr(err)
		}
		defer rows.Close()

		author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
		if err != nil {
			return model.Author{}, constraintErr(err)
		}
		return author, nil
	})
}

func (r *authorRepository) Update(ctx context.Context, entity model.Author) (model.Author, error) {
	query, args, err := qb.Update(authorsTableName).
		Set("nombre", entity.Nombre).
		Set("nacionalidad", entity.Nacionalidad).
		Set("fecha_nacimiento", entity.FechaNacimiento).
		Where(sq.Eq{"id": entity.ID}).
		Suffix("returning id, nombre, nacionalidad, fecha_nacimiento").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	return withTx(ctx, r.db, r.log, "Update", func(ctx context.Context, tx pgx.Tx) (model.Author, error) {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return model.Author{}, constraintErr(err)
		}
		defer rows.Close()

		author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.Author{}, errs.ErrNotFound
			}
			return model.Author{}, constraintErr(err)
		}
		return author, nil
	})
}

func (r *authorRepository) Delete(ctx context.Context, id int) (bool, error) {
	query, args, err := qb.Delete(authorsTableName).
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
