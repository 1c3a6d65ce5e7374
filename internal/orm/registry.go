package orm

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/ksred/ironforge/internal/utils"
)

// Factory produces attributes for fake records. seq starts at 1 and grows
// with every record made in one call.
type Factory interface {
	Definition(seq int) (Attributes, error)
}

// FactoryFunc adapts a function to the Factory interface
type FactoryFunc func(seq int) (Attributes, error)

// Definition implements Factory
func (f FactoryFunc) Definition(seq int) (Attributes, error) {
	return f(seq)
}

// Registry maps record types to their factories. It is populated
// explicitly at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[reflect.Type]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[reflect.Type]Factory)}
}

func recordType[T Record]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterFactory binds f to the record type T
func RegisterFactory[T Record](reg *Registry, f Factory) error {
	if f == nil {
		return utils.RequiredFieldError("factory")
	}
	t := recordType[T]()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.factories[t]; exists {
		return utils.WrapConflictError("factory", "type", t.String())
	}
	reg.factories[t] = f
	return nil
}

// FactoryFor returns the factory registered for T
func FactoryFor[T Record](reg *Registry) (Factory, error) {
	t := recordType[T]()

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	f, ok := reg.factories[t]
	if !ok {
		return nil, utils.WrapNotFoundError("factory", t.String())
	}
	return f, nil
}

// Make builds count unsaved records from T's factory
func Make[T Record](reg *Registry, entity *Entity[T], count int) ([]*T, error) {
	if count < 0 {
		return nil, utils.InvalidFieldError("count", "must not be negative")
	}
	f, err := FactoryFor[T](reg)
	if err != nil {
		return nil, err
	}
	recs := make([]*T, 0, count)
	for seq := 1; seq <= count; seq++ {
		attrs, err := f.Definition(seq)
		if err != nil {
			return nil, fmt.Errorf("factory definition %d for %s: %w", seq, entity.Table(), err)
		}
		rec, err := entity.New(attrs)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Seed creates count rows from T's factory and returns them
func Seed[T Record](ctx context.Context, reg *Registry, entity *Entity[T], count int) ([]*T, error) {
	if count < 0 {
		return nil, utils.InvalidFieldError("count", "must not be negative")
	}
	f, err := FactoryFor[T](reg)
	if err != nil {
		return nil, err
	}
	recs := make([]*T, 0, count)
	for seq := 1; seq <= count; seq++ {
		attrs, err := f.Definition(seq)
		if err != nil {
			return recs, fmt.Errorf("factory definition %d for %s: %w", seq, entity.Table(), err)
		}
		rec, err := entity.Create(ctx, attrs)
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
