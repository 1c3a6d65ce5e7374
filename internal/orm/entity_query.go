package orm

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/ksred/ironforge/internal/utils"
)

// All returns every row of the table, trashed rows included
func (e *Entity[T]) All(ctx context.Context) ([]*T, error) {
	return e.Get(ctx, e.Query())
}

// Count returns the number of rows in the table
func (e *Entity[T]) Count(ctx context.Context) (int64, error) {
	return e.CountWhere(ctx, e.Query())
}

// CountWhere returns the number of rows matched by the builder
func (e *Entity[T]) CountWhere(ctx context.Context, qb *QueryBuilder) (int64, error) {
	query, params, err := qb.CountSQL()
	if err != nil {
		return 0, err
	}
	rows, err := e.conn.Query(ctx, query, params)
	if err != nil {
		return 0, e.wrap("count", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return cast.ToInt64E(rows[0]["aggregate"])
}

// Paginate returns page (1-based) of perPage rows ordered by id
func (e *Entity[T]) Paginate(ctx context.Context, page, perPage int) ([]*T, error) {
	if page < 1 {
		return nil, utils.InvalidFieldError("page", "must be at least 1")
	}
	if perPage < 1 {
		return nil, utils.InvalidFieldError("per_page", "must be at least 1")
	}
	qb := e.Query().OrderBy(columnID, "ASC").Limit(perPage).Offset((page - 1) * perPage)
	return e.Get(ctx, qb)
}

// Filter returns the rows matching every equality condition
func (e *Entity[T]) Filter(ctx context.Context, conditions Attributes) ([]*T, error) {
	return e.Get(ctx, e.Query().WhereAll(conditions))
}

// First returns the row with the lowest id, or nil on an empty table
func (e *Entity[T]) First(ctx context.Context) (*T, error) {
	return e.FirstWhere(ctx, e.Query().OrderBy(columnID, "ASC"))
}

// Latest returns the row with the greatest value in column (created_at by default)
func (e *Entity[T]) Latest(ctx context.Context, column string) (*T, error) {
	return e.FirstWhere(ctx, e.Query().OrderBy(orDefault(column, columnCreatedAt), "DESC"))
}

// Oldest returns the row with the smallest value in column (created_at by default)
func (e *Entity[T]) Oldest(ctx context.Context, column string) (*T, error) {
	return e.FirstWhere(ctx, e.Query().OrderBy(orDefault(column, columnCreatedAt), "ASC"))
}

// Pluck returns the values of a single column across all rows
func (e *Entity[T]) Pluck(ctx context.Context, column string) ([]interface{}, error) {
	query, params, err := e.Query().Select(column).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := e.conn.Query(ctx, query, params)
	if err != nil {
		return nil, e.wrap("pluck", err)
	}

	key := column[strings.LastIndex(column, ".")+1:]
	values := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, row[key])
	}
	return values, nil
}

// Exists reports whether any row matches every equality condition
func (e *Entity[T]) Exists(ctx context.Context, conditions Attributes) (bool, error) {
	query, params, err := e.Query().WhereAll(conditions).ExistsSQL()
	if err != nil {
		return false, err
	}
	rows, err := e.conn.Query(ctx, query, params)
	if err != nil {
		return false, e.wrap("exists", err)
	}
	return len(rows) > 0, nil
}

// Increment adds amount to column on the row with the given id in a
// single statement.
func (e *Entity[T]) Increment(ctx context.Context, id int64, column string, amount int64) (bool, error) {
	query, params, err := e.Query().Where(columnID, "=", id).IncrementSQL(column, amount)
	if err != nil {
		return false, err
	}
	if _, err := e.conn.Execute(ctx, query, params); err != nil {
		return false, e.wrap("increment", err)
	}
	return true, nil
}

// Decrement subtracts amount from column on the row with the given id
func (e *Entity[T]) Decrement(ctx context.Context, id int64, column string, amount int64) (bool, error) {
	return e.Increment(ctx, id, column, -amount)
}

// Chunk walks the table in id order, handing fn batches of size rows. It
// stops after an empty or short batch, or when fn returns an error.
func (e *Entity[T]) Chunk(ctx context.Context, size int, fn func([]*T) error) error {
	if size < 1 {
		return utils.InvalidFieldError("size", "must be at least 1")
	}
	for offset := 0; ; offset += size {
		batch, err := e.Get(ctx, e.Query().OrderBy(columnID, "ASC").Limit(size).Offset(offset))
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < size {
			return nil
		}
	}
}

// Trash marks the row as deleted by setting deleted_at
func (e *Entity[T]) Trash(ctx context.Context, id int64) (bool, error) {
	if err := e.requireSoftDelete(); err != nil {
		return false, err
	}
	return e.Update(ctx, id, Attributes{columnDeletedAt: time.Now().UTC()})
}

// Restore clears deleted_at on the row
func (e *Entity[T]) Restore(ctx context.Context, id int64) (bool, error) {
	if err := e.requireSoftDelete(); err != nil {
		return false, err
	}
	return e.Update(ctx, id, Attributes{columnDeletedAt: nil})
}

// WithTrashed returns every row, trashed or not
func (e *Entity[T]) WithTrashed(ctx context.Context) ([]*T, error) {
	return e.All(ctx)
}

// OnlyTrashed returns the rows with deleted_at set
func (e *Entity[T]) OnlyTrashed(ctx context.Context) ([]*T, error) {
	if err := e.requireSoftDelete(); err != nil {
		return nil, err
	}
	return e.Get(ctx, e.Query().WhereNotNull(columnDeletedAt))
}

func (e *Entity[T]) requireSoftDelete() error {
	if !e.columns[columnDeletedAt] {
		return utils.InvalidFieldError(columnDeletedAt, "soft deletes are not enabled on "+e.table)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
