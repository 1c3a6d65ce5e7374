package orm

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"

	"github.com/ksred/ironforge/internal/utils"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.([A-Za-z_][A-Za-z0-9_]*|\*))?$`)

// ValidateIdentifier checks that name is safe to splice into SQL as a table
// or column reference: a bare name, table.column or table.*.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return utils.InvalidFieldError("identifier", "invalid SQL identifier '"+name+"'")
	}
	return nil
}

// TableNamer lets a record override its derived table name
type TableNamer interface {
	TableName() string
}

// DeriveTableName returns the snake_case plural of a type name: User becomes
// users, BlogPost becomes blog_posts.
func DeriveTableName(typeName string) string {
	snake := strcase.ToSnake(typeName)
	idx := strings.LastIndex(snake, "_")
	if idx < 0 {
		return inflection.Plural(snake)
	}
	return snake[:idx+1] + inflection.Plural(snake[idx+1:])
}

// tableNameOf resolves the table for a record value
func tableNameOf(rec interface{}) string {
	if namer, ok := rec.(TableNamer); ok {
		if name := namer.TableName(); name != "" {
			return name
		}
	}
	t := reflect.TypeOf(rec)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return DeriveTableName(t.Name())
}
