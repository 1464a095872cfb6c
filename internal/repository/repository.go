package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dromero/biblioteca-service/internal/errs"
	"github.com/dromero/biblioteca-service/internal/model"
)

// CRUD is the uniform repository contract per entity.
type CRUD[T any] interface {
	// GetByID returns errs.ErrNotFound when the id resolves to no row.
	GetByID(ctx context.Context, id int) (T, error)
	// GetAll returns every row, ordered by a human-sortable field.
	GetAll(ctx context.Context) ([]T, error)
	// Add persists an entity without id and returns it with the assigned id.
	Add(ctx context.Context, entity T) (T, error)
	// Update replaces every field but id; errs.ErrNotFound when no row matches.
	Update(ctx context.Context, entity T) (T, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int) (bool, error)
}

type AuthorRepository interface {
	CRUD[model.Author]
}

type BookRepository interface {
	CRUD[model.Book]
	GetByAuthor(ctx context.Context, authorID int) ([]model.Book, error)
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// withConn borrows one connection from the pool for a read operation and
// releases it on every exit path.
func withConn[T any](ctx context.Context, db *pgxpool.Pool, log *zap.Logger, opName string,
	op func(ctx context.Context, conn *pgxpool.Conn) (T, error),
) (T, error) {
	var zero T
	conn, err := db.Acquire(ctx)
	if err != nil {
		log.Error(opName, zap.String("stage", "acquire"), zap.Error(err))
		return zero, err
	}
	defer conn.Release()

	res, err := op(ctx, conn)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			log.Error(opName, zap.Error(err))
		}
		return zero, err
	}
	return res, nil
}

// withTx borrows a connection for a write operation, running it in a
// transaction: commit on success, rollback on failure, release always.
func withTx[T any](ctx context.Context, db *pgxpool.Pool, log *zap.Logger, opName string,
	op func(ctx context.Context, tx pgx.Tx) (T, error),
) (T, error) {
	var zero T
	conn, err := db.Acquire(ctx)
	if err != nil {
		log.Error(opName, zap.String("stage", "acquire"), zap.Error(err))
		return zero, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		log.Error(opName, zap.String("stage", "begin"), zap.Error(err))
		return zero, err
	}

	res, err := op(ctx, tx)
	if err != nil {
		_ = tx.Rollback(ctx) //nolint:errcheck
		if !errors.Is(err, errs.ErrNotFound) {
			log.Error(opName, zap.Error(err))
		}
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		log.Error(opName, zap.String("stage", "commit"), zap.Error(err))
		return zero, err
	}
	return res, nil
}

// constraintErr translates postgres constraint violations into domain errors.
func constraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errs.ErrConflict
		case pgerrcode.ForeignKeyViolation:
			return errs.ErrAuthorNotFound
		}
	}
	return err
}
