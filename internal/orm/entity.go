package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/utils"
)

// Entity maps one table to the record type T and exposes its persistence
// operations. The table name is resolved once, at construction.
//
// A record is persisted when its id attribute is non-zero.
type Entity[T Record] struct {
	conn     Connection
	table    string
	fillable []string
	columns  map[string]bool
	logger   zerolog.Logger
}

// NewEntity creates an Entity for T bound to conn
func NewEntity[T Record](conn Connection, logger zerolog.Logger) *Entity[T] {
	zero := new(T)

	columns := make(map[string]bool)
	for _, c := range columnsOf(zero) {
		columns[c] = true
	}

	table := tableNameOf(zero)
	return &Entity[T]{
		conn:     conn,
		table:    table,
		fillable: (*zero).Fillable(),
		columns:  columns,
		logger:   logger.With().Str("table", table).Logger(),
	}
}

// Table returns the backing table name
func (e *Entity[T]) Table() string {
	return e.table
}

// Connection returns the connection the entity issues statements on
func (e *Entity[T]) Connection() Connection {
	return e.conn
}

// Fillable returns the columns accepted from external data
func (e *Entity[T]) Fillable() []string {
	return append([]string(nil), e.fillable...)
}

// HasColumn reports whether T maps the column
func (e *Entity[T]) HasColumn(column string) bool {
	return e.columns[column]
}

// Query starts a builder over the entity's table
func (e *Entity[T]) Query() *QueryBuilder {
	return NewQueryBuilder(e.table)
}

// Attributes returns the column values of rec
func (e *Entity[T]) Attributes(rec *T) Attributes {
	return encodeRecord(rec)
}

// Key returns the primary key of rec, zero when not persisted
func (e *Entity[T]) Key(rec *T) int64 {
	if rec == nil {
		return 0
	}
	return toInt64(encodeRecord(rec)[columnID])
}

// IsPersisted reports whether rec has been assigned an id
func (e *Entity[T]) IsPersisted(rec *T) bool {
	return e.Key(rec) != 0
}

// checkFillable rejects keys outside the fillable list and the timestamps
func (e *Entity[T]) checkFillable(attrs Attributes) error {
	allowed := map[string]bool{columnCreatedAt: true, columnUpdatedAt: true}
	for _, f := range e.fillable {
		allowed[f] = true
	}
	for _, key := range sortedKeys(attrs) {
		if !allowed[key] {
			return utils.InvalidFieldError(key, fmt.Sprintf("attribute is not fillable on %s", e.table))
		}
	}
	return nil
}

// New constructs an unsaved record from attributes
func (e *Entity[T]) New(attrs Attributes) (*T, error) {
	if err := e.checkFillable(attrs); err != nil {
		return nil, err
	}
	return e.decode(attrs)
}

// Create inserts a row built from attrs and returns the stored record.
// Timestamp keys present in attrs are overwritten with the current time.
func (e *Entity[T]) Create(ctx context.Context, attrs Attributes) (*T, error) {
	if err := e.checkFillable(attrs); err != nil {
		return nil, err
	}

	data := make(Attributes, len(attrs))
	for k, v := range attrs {
		data[k] = v
	}
	now := time.Now().UTC()
	for _, ts := range []string{columnCreatedAt, columnUpdatedAt} {
		if _, ok := data[ts]; ok {
			data[ts] = now
		}
	}

	query, params, err := InsertSQL(e.table, data, e.conn.Dialect())
	if err != nil {
		return nil, err
	}

	id, err := e.insert(ctx, query, params)
	if err != nil {
		return nil, e.wrap("create", err)
	}

	e.logger.Debug().Int64("id", id).Msg("Record created")

	rec, err := e.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		data[columnID] = id
		return e.decode(data)
	}
	return rec, nil
}

// insert runs an INSERT and reports the assigned id. Postgres has no
// driver level last insert id, so the id is returned by the statement.
func (e *Entity[T]) insert(ctx context.Context, query string, params map[string]interface{}) (int64, error) {
	if ins, ok := e.conn.(Inserter); ok {
		return ins.Insert(ctx, query, params)
	}

	if e.conn.Dialect() == DialectPostgres {
		rows, err := e.conn.Query(ctx, query+" RETURNING id", params)
		if err != nil {
			return 0, err
		}
		if len(rows) == 0 {
			return 0, errors.New("insert returned no id")
		}
		return toInt64(rows[0][columnID]), nil
	}

	if _, err := e.conn.Execute(ctx, query, params); err != nil {
		return 0, err
	}
	return e.conn.LastInsertID(ctx)
}

// Find returns the record with the given id, or nil when absent
func (e *Entity[T]) Find(ctx context.Context, id int64) (*T, error) {
	return e.FirstWhere(ctx, e.Query().Where(columnID, "=", id).Limit(1))
}

// Update rewrites exactly the given columns of the row with the given id.
// It reports true when the statement executed, even if no row matched.
func (e *Entity[T]) Update(ctx context.Context, id int64, attrs Attributes) (bool, error) {
	if _, ok := attrs[columnID]; ok {
		return false, utils.InvalidFieldError(columnID, "primary key cannot be updated")
	}
	if _, err := e.UpdateWhere(ctx, Attributes{columnID: id}, attrs); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateWhere sets attrs on every row matching the equality conditions and
// returns the number of affected rows.
func (e *Entity[T]) UpdateWhere(ctx context.Context, conditions, attrs Attributes) (int64, error) {
	query, params, err := e.Query().WhereAll(conditions).UpdateSQL(attrs)
	if err != nil {
		return 0, err
	}
	affected, err := e.conn.Execute(ctx, query, params)
	if err != nil {
		return 0, e.wrap("update", err)
	}
	return affected, nil
}

// Delete removes the row with the given id. Deleting a missing id succeeds.
func (e *Entity[T]) Delete(ctx context.Context, id int64) (bool, error) {
	if _, err := e.DeleteWhere(ctx, Attributes{columnID: id}); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteWhere removes every row matching the equality conditions
func (e *Entity[T]) DeleteWhere(ctx context.Context, conditions Attributes) (int64, error) {
	if len(conditions) == 0 {
		return 0, utils.InvalidFieldError("conditions", "refusing to delete without conditions")
	}
	query, params, err := e.Query().WhereAll(conditions).DeleteSQL()
	if err != nil {
		return 0, err
	}
	affected, err := e.conn.Execute(ctx, query, params)
	if err != nil {
		return 0, e.wrap("delete", err)
	}
	return affected, nil
}

// Save persists rec. A persisted record is updated with its fillable
// columns; otherwise it is created and rec is repopulated with the stored
// row, including its new id.
func (e *Entity[T]) Save(ctx context.Context, rec *T) (bool, error) {
	if rec == nil {
		return false, utils.RequiredFieldError("record")
	}
	if v, ok := any(rec).(Validator); ok {
		if err := v.Validate(); err != nil {
			return false, utils.InvalidFieldError(e.table, err.Error())
		}
	}

	current := e.Attributes(rec)
	data := make(Attributes, len(e.fillable)+2)
	for _, f := range e.fillable {
		if v, ok := current[f]; ok {
			data[f] = v
		}
	}

	if id := toInt64(current[columnID]); id != 0 {
		if e.columns[columnUpdatedAt] {
			data[columnUpdatedAt] = time.Now().UTC()
		}
		if len(data) == 0 {
			return true, nil
		}
		if _, err := e.Update(ctx, id, data); err != nil {
			return false, err
		}
		for k, v := range data {
			current[k] = v
		}
		updated, err := e.decode(current)
		if err != nil {
			return false, err
		}
		*rec = *updated
		return true, nil
	}

	for _, ts := range []string{columnCreatedAt, columnUpdatedAt} {
		if e.columns[ts] {
			data[ts] = nil
		}
	}
	created, err := e.Create(ctx, data)
	if err != nil {
		return false, err
	}
	*rec = *created
	return true, nil
}

// Get runs the builder and hydrates the matching records
func (e *Entity[T]) Get(ctx context.Context, qb *QueryBuilder) ([]*T, error) {
	query, params, err := qb.ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := e.conn.Query(ctx, query, params)
	if err != nil {
		return nil, e.wrap("select", err)
	}
	return e.hydrate(rows)
}

// FirstWhere returns the first record matched by the builder, or nil
func (e *Entity[T]) FirstWhere(ctx context.Context, qb *QueryBuilder) (*T, error) {
	recs, err := e.Get(ctx, qb.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func (e *Entity[T]) hydrate(rows []Row) ([]*T, error) {
	recs := make([]*T, 0, len(rows))
	for _, row := range rows {
		rec, err := e.decode(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (e *Entity[T]) decode(data map[string]interface{}) (*T, error) {
	rec, err := decodeRecord[T](data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", e.table, err)
	}
	return rec, nil
}

func (e *Entity[T]) wrap(operation string, err error) error {
	return wrapStore(operation+" "+e.table, err)
}

// wrapStore classifies store errors the connection did not already wrap
func wrapStore(operation string, err error) error {
	var dbErr *utils.DatabaseError
	if errors.As(err, &dbErr) || utils.IsValidationError(err) {
		return err
	}
	return utils.WrapDatabaseError(operation, err)
}
