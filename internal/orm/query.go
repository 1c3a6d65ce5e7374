package orm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ksred/ironforge/internal/utils"
)

var allowedOperators = map[string]bool{
	"=":        true,
	"!=":       true,
	"<>":       true,
	"<":        true,
	"<=":       true,
	">":        true,
	">=":       true,
	"LIKE":     true,
	"NOT LIKE": true,
}

// QueryBuilder accumulates a filter and its bound parameters for a single
// table and renders SQL on demand. Methods chain; the first invalid
// identifier or operator is kept and reported by the render methods.
type QueryBuilder struct {
	table   string
	columns []string
	joins   []string
	wheres  []string
	params  map[string]interface{}
	orders  []string
	limit   int
	offset  int
	err     error
}

// NewQueryBuilder creates a builder for the given table
func NewQueryBuilder(table string) *QueryBuilder {
	qb := &QueryBuilder{
		table:  table,
		params: make(map[string]interface{}),
		limit:  -1,
		offset: -1,
	}
	qb.check(ValidateIdentifier(table))
	return qb
}

// Table returns the table the builder targets
func (q *QueryBuilder) Table() string {
	return q.table
}

// Err returns the first error recorded while building
func (q *QueryBuilder) Err() error {
	return q.err
}

// Params returns a copy of the bound parameters
func (q *QueryBuilder) Params() map[string]interface{} {
	out := make(map[string]interface{}, len(q.params))
	for k, v := range q.params {
		out[k] = v
	}
	return out
}

func (q *QueryBuilder) check(err error) {
	if err != nil && q.err == nil {
		q.err = err
	}
}

// bind stores value under a parameter name derived from column and returns
// the name. Reused columns get a numeric suffix.
func (q *QueryBuilder) bind(column string, value interface{}) string {
	return bindParam(q.params, strings.ReplaceAll(column, ".", "_"), value)
}

// bindParam stores value in params under base, or base_N when base is taken
func bindParam(params map[string]interface{}, base string, value interface{}) string {
	name := base
	for i := 2; ; i++ {
		if _, taken := params[name]; !taken {
			break
		}
		name = base + "_" + strconv.Itoa(i)
	}
	params[name] = value
	return name
}

// Select restricts the projected columns
func (q *QueryBuilder) Select(columns ...string) *QueryBuilder {
	for _, c := range columns {
		q.check(ValidateIdentifier(c))
	}
	q.columns = append(q.columns, columns...)
	return q
}

// Join adds an INNER JOIN on left = right
func (q *QueryBuilder) Join(table, left, right string) *QueryBuilder {
	q.check(ValidateIdentifier(table))
	q.check(ValidateIdentifier(left))
	q.check(ValidateIdentifier(right))
	q.joins = append(q.joins, fmt.Sprintf("INNER JOIN %s ON %s = %s", table, left, right))
	return q
}

// Where adds a predicate; predicates are joined with AND
func (q *QueryBuilder) Where(column, operator string, value interface{}) *QueryBuilder {
	op := strings.ToUpper(strings.TrimSpace(operator))
	if !allowedOperators[op] {
		q.check(utils.InvalidFieldError("operator", fmt.Sprintf("unsupported operator '%s'", operator)))
		return q
	}
	if err := ValidateIdentifier(column); err != nil {
		q.check(err)
		return q
	}
	name := q.bind(column, value)
	q.wheres = append(q.wheres, fmt.Sprintf("%s %s @%s", column, op, name))
	return q
}

// WhereAll adds an equality predicate per condition, in column order
func (q *QueryBuilder) WhereAll(conditions map[string]interface{}) *QueryBuilder {
	for _, column := range sortedKeys(conditions) {
		q.Where(column, "=", conditions[column])
	}
	return q
}

// WhereNull adds an IS NULL predicate
func (q *QueryBuilder) WhereNull(column string) *QueryBuilder {
	q.check(ValidateIdentifier(column))
	q.wheres = append(q.wheres, column+" IS NULL")
	return q
}

// WhereNotNull adds an IS NOT NULL predicate
func (q *QueryBuilder) WhereNotNull(column string) *QueryBuilder {
	q.check(ValidateIdentifier(column))
	q.wheres = append(q.wheres, column+" IS NOT NULL")
	return q
}

// OrderBy appends an ordering; direction is ASC or DESC
func (q *QueryBuilder) OrderBy(column, direction string) *QueryBuilder {
	q.check(ValidateIdentifier(column))
	dir := strings.ToUpper(strings.TrimSpace(direction))
	if dir == "" {
		dir = "ASC"
	}
	if dir != "ASC" && dir != "DESC" {
		q.check(utils.InvalidFieldError("direction", fmt.Sprintf("unsupported sort direction '%s'", direction)))
		return q
	}
	q.orders = append(q.orders, column+" "+dir)
	return q
}

// Limit caps the number of returned rows
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	if n < 0 {
		q.check(utils.InvalidFieldError("limit", "must not be negative"))
		return q
	}
	q.limit = n
	return q
}

// Offset skips the first n rows
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	if n < 0 {
		q.check(utils.InvalidFieldError("offset", "must not be negative"))
		return q
	}
	q.offset = n
	return q
}

func (q *QueryBuilder) whereClause() string {
	if len(q.wheres) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.wheres, " AND ")
}

func (q *QueryBuilder) fromClause() string {
	sql := " FROM " + q.table
	if len(q.joins) > 0 {
		sql += " " + strings.Join(q.joins, " ")
	}
	return sql + q.whereClause()
}

// ToSQL renders the SELECT statement
func (q *QueryBuilder) ToSQL() (string, map[string]interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	cols := "*"
	if len(q.columns) > 0 {
		cols = strings.Join(q.columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + cols + q.fromClause())
	if len(q.orders) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(q.orders, ", "))
	}

	params := q.Params()
	if q.limit >= 0 {
		sb.WriteString(" LIMIT @" + bindParam(params, "limit_rows", q.limit))
	}
	if q.offset >= 0 {
		if q.limit < 0 {
			// OFFSET without LIMIT is not portable
			sb.WriteString(" LIMIT @" + bindParam(params, "limit_rows", int64(1<<62)))
		}
		sb.WriteString(" OFFSET @" + bindParam(params, "offset_rows", q.offset))
	}
	return sb.String(), params, nil
}

// CountSQL renders SELECT COUNT(*) over the filter
func (q *QueryBuilder) CountSQL() (string, map[string]interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	return "SELECT COUNT(*) AS aggregate" + q.fromClause(), q.Params(), nil
}

// ExistsSQL renders a statement returning one row when the filter matches
func (q *QueryBuilder) ExistsSQL() (string, map[string]interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	return "SELECT 1 AS present" + q.fromClause() + " LIMIT 1", q.Params(), nil
}

// UpdateSQL renders an UPDATE setting exactly the given attributes
func (q *QueryBuilder) UpdateSQL(attrs Attributes) (string, map[string]interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if len(attrs) == 0 {
		return "", nil, utils.InvalidFieldError("attributes", "nothing to update")
	}

	params := q.Params()
	sets := make([]string, 0, len(attrs))
	for _, column := range sortedKeys(attrs) {
		if err := ValidateIdentifier(column); err != nil {
			return "", nil, err
		}
		name := bindParam(params, "set_"+column, attrs[column])
		sets = append(sets, fmt.Sprintf("%s = @%s", column, name))
	}
	return "UPDATE " + q.table + " SET " + strings.Join(sets, ", ") + q.whereClause(), params, nil
}

// IncrementSQL renders an in-place arithmetic update of column by amount
func (q *QueryBuilder) IncrementSQL(column string, amount int64) (string, map[string]interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if err := ValidateIdentifier(column); err != nil {
		return "", nil, err
	}
	params := q.Params()
	name := bindParam(params, "amount", amount)
	return fmt.Sprintf("UPDATE %s SET %s = %s + @%s%s", q.table, column, column, name, q.whereClause()), params, nil
}

// DeleteSQL renders a DELETE over the filter
func (q *QueryBuilder) DeleteSQL() (string, map[string]interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	return "DELETE FROM " + q.table + q.whereClause(), q.Params(), nil
}

// InsertSQL renders an INSERT of attrs into table
func InsertSQL(table string, attrs Attributes, dialect string) (string, map[string]interface{}, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", nil, err
	}
	if len(attrs) == 0 {
		if dialect == DialectMySQL {
			return "INSERT INTO " + table + " () VALUES ()", nil, nil
		}
		return "INSERT INTO " + table + " DEFAULT VALUES", nil, nil
	}

	columns := sortedKeys(attrs)
	placeholders := make([]string, len(columns))
	params := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		if err := ValidateIdentifier(column); err != nil {
			return "", nil, err
		}
		placeholders[i] = "@" + column
		params[column] = attrs[column]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return sql, params, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
