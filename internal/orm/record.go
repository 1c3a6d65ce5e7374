package orm

import (
	"reflect"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

const (
	// TagName is the struct tag mapping fields to columns
	TagName = "db"

	columnID        = "id"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
	columnDeletedAt = "deleted_at"
)

// Attributes maps column names to values
type Attributes map[string]interface{}

// Record is implemented by every entity struct. Fillable lists the columns
// that may be set from externally supplied data.
type Record interface {
	Fillable() []string
}

// Validator is implemented by records that check themselves before Save
type Validator interface {
	Validate() error
}

// timeLayouts are tried in order when a store hands back timestamps as text
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// stringToTimeHook converts textual timestamps into time.Time
func stringToTimeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// decodeRecord populates a record from a row or attribute map
func decodeRecord[T any](data map[string]interface{}) (*T, error) {
	rec := new(T)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		DecodeHook:       stringToTimeHook,
		Result:           rec,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, err
	}
	return rec, nil
}

// encodeRecord converts a record into attributes, dereferencing pointer
// fields so nil pointers become SQL NULL.
func encodeRecord(rec interface{}) Attributes {
	s := structs.New(rec)
	s.TagName = TagName

	attrs := make(Attributes)
	for key, value := range s.Map() {
		attrs[key] = derefValue(value)
	}
	return attrs
}

func derefValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// columnsOf lists the tagged columns of a record type in field order
func columnsOf(rec interface{}) []string {
	var columns []string
	for _, field := range structs.New(rec).Fields() {
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag(TagName), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
	}
	return columns
}

// toInt64 coerces a driver value into an identifier
func toInt64(value interface{}) int64 {
	return cast.ToInt64(derefValue(value))
}
