package orm

import (
	"context"
	"fmt"

	"github.com/ksred/ironforge/internal/utils"
)

// Relationship resolves and edits the records related to one owning record.
// Relationships are transient descriptors; every call to Related issues a
// fresh query.
type Relationship[R Record] interface {
	// Associate links related to the owner
	Associate(ctx context.Context, related *R) error
	// Dissociate unlinks related from the owner; nil unlinks whatever is
	// currently related
	Dissociate(ctx context.Context, related *R) error
	// Related loads the related records
	Related(ctx context.Context) ([]*R, error)
}

// requireKey returns the id of a persisted record
func requireKey[T Record](entity *Entity[T], rec *T, role string) (int64, error) {
	if rec == nil {
		return 0, utils.RequiredFieldError(role)
	}
	id := entity.Key(rec)
	if id == 0 {
		return 0, utils.InvalidFieldError(role, fmt.Sprintf("%s record is not persisted", entity.Table()))
	}
	return id, nil
}

// setColumn writes value into the column of an in-memory record
func setColumn[T Record](entity *Entity[T], rec *T, column string, value interface{}) error {
	attrs := entity.Attributes(rec)
	attrs[column] = value
	updated, err := entity.decode(attrs)
	if err != nil {
		return err
	}
	*rec = *updated
	return nil
}

// BelongsTo links an owner to one related record through a foreign key
// column on the owner's table.
type BelongsTo[O Record, R Record] struct {
	owner      *Entity[O]
	instance   *O
	related    *Entity[R]
	foreignKey string
}

// NewBelongsTo describes instance.foreignKey -> related.id
func NewBelongsTo[O Record, R Record](owner *Entity[O], instance *O, related *Entity[R], foreignKey string) *BelongsTo[O, R] {
	return &BelongsTo[O, R]{owner: owner, instance: instance, related: related, foreignKey: foreignKey}
}

func (b *BelongsTo[O, R]) foreignValue() int64 {
	return toInt64(b.owner.Attributes(b.instance)[b.foreignKey])
}

// Related returns the referenced record, if any
func (b *BelongsTo[O, R]) Related(ctx context.Context) ([]*R, error) {
	rec, err := b.Get(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	return []*R{rec}, nil
}

// Get returns the referenced record or nil
func (b *BelongsTo[O, R]) Get(ctx context.Context) (*R, error) {
	fk := b.foreignValue()
	if fk == 0 {
		return nil, nil
	}
	return b.related.Find(ctx, fk)
}

// Associate points the owner's foreign key at related
func (b *BelongsTo[O, R]) Associate(ctx context.Context, related *R) error {
	ownerID, err := requireKey(b.owner, b.instance, "owner")
	if err != nil {
		return err
	}
	relatedID, err := requireKey(b.related, related, "related")
	if err != nil {
		return err
	}
	if _, err := b.owner.Update(ctx, ownerID, Attributes{b.foreignKey: relatedID}); err != nil {
		return err
	}
	return setColumn(b.owner, b.instance, b.foreignKey, relatedID)
}

// Dissociate clears the owner's foreign key. A non-nil related that is not
// the referenced record leaves the owner untouched.
func (b *BelongsTo[O, R]) Dissociate(ctx context.Context, related *R) error {
	ownerID, err := requireKey(b.owner, b.instance, "owner")
	if err != nil {
		return err
	}
	if related != nil && b.related.Key(related) != b.foreignValue() {
		return nil
	}
	if _, err := b.owner.Update(ctx, ownerID, Attributes{b.foreignKey: nil}); err != nil {
		return err
	}
	return setColumn(b.owner, b.instance, b.foreignKey, nil)
}

// hasRelation holds the shared state of HasOne and HasMany: the foreign
// key lives on the related table and points at the owner's id.
type hasRelation[O Record, R Record] struct {
	owner      *Entity[O]
	instance   *O
	related    *Entity[R]
	foreignKey string
}

func (h *hasRelation[O, R]) query() (*QueryBuilder, bool) {
	ownerID := h.owner.Key(h.instance)
	if ownerID == 0 {
		return nil, false
	}
	return h.related.Query().Where(h.foreignKey, "=", ownerID).OrderBy(columnID, "ASC"), true
}

func (h *hasRelation[O, R]) Related(ctx context.Context) ([]*R, error) {
	qb, ok := h.query()
	if !ok {
		return nil, nil
	}
	return h.related.Get(ctx, qb)
}

func (h *hasRelation[O, R]) Associate(ctx context.Context, related *R) error {
	ownerID, err := requireKey(h.owner, h.instance, "owner")
	if err != nil {
		return err
	}
	relatedID, err := requireKey(h.related, related, "related")
	if err != nil {
		return err
	}
	if _, err := h.related.Update(ctx, relatedID, Attributes{h.foreignKey: ownerID}); err != nil {
		return err
	}
	return setColumn(h.related, related, h.foreignKey, ownerID)
}

func (h *hasRelation[O, R]) Dissociate(ctx context.Context, related *R) error {
	ownerID, err := requireKey(h.owner, h.instance, "owner")
	if err != nil {
		return err
	}

	conditions := Attributes{h.foreignKey: ownerID}
	if related != nil {
		relatedID, err := requireKey(h.related, related, "related")
		if err != nil {
			return err
		}
		conditions[columnID] = relatedID
	}

	affected, err := h.related.UpdateWhere(ctx, conditions, Attributes{h.foreignKey: nil})
	if err != nil {
		return err
	}
	if related != nil && affected > 0 {
		return setColumn(h.related, related, h.foreignKey, nil)
	}
	return nil
}

// HasOne links an owner to a single record whose foreign key holds the
// owner's id.
type HasOne[O Record, R Record] struct {
	hasRelation[O, R]
}

// NewHasOne describes related.foreignKey -> instance.id with one result
func NewHasOne[O Record, R Record](owner *Entity[O], instance *O, related *Entity[R], foreignKey string) *HasOne[O, R] {
	return &HasOne[O, R]{hasRelation[O, R]{owner: owner, instance: instance, related: related, foreignKey: foreignKey}}
}

// Get returns the related record or nil
func (h *HasOne[O, R]) Get(ctx context.Context) (*R, error) {
	qb, ok := h.query()
	if !ok {
		return nil, nil
	}
	return h.related.FirstWhere(ctx, qb)
}

// Related returns at most one record
func (h *HasOne[O, R]) Related(ctx context.Context) ([]*R, error) {
	rec, err := h.Get(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	return []*R{rec}, nil
}

// HasMany links an owner to every record whose foreign key holds the
// owner's id.
type HasMany[O Record, R Record] struct {
	hasRelation[O, R]
}

// NewHasMany describes related.foreignKey -> instance.id with many results
func NewHasMany[O Record, R Record](owner *Entity[O], instance *O, related *Entity[R], foreignKey string) *HasMany[O, R] {
	return &HasMany[O, R]{hasRelation[O, R]{owner: owner, instance: instance, related: related, foreignKey: foreignKey}}
}

// ManyToMany links records through a pivot table holding both keys
type ManyToMany[O Record, R Record] struct {
	owner      *Entity[O]
	instance   *O
	related    *Entity[R]
	pivot      string
	foreignKey string
	relatedKey string
}

// NewBelongsToMany describes pivot.foreignKey -> instance.id and
// pivot.relatedKey -> related.id.
func NewBelongsToMany[O Record, R Record](owner *Entity[O], instance *O, related *Entity[R], pivot, foreignKey, relatedKey string) *ManyToMany[O, R] {
	return &ManyToMany[O, R]{
		owner:      owner,
		instance:   instance,
		related:    related,
		pivot:      pivot,
		foreignKey: foreignKey,
		relatedKey: relatedKey,
	}
}

// Related joins the pivot table to the related table in one query
func (m *ManyToMany[O, R]) Related(ctx context.Context) ([]*R, error) {
	ownerID := m.owner.Key(m.instance)
	if ownerID == 0 {
		return nil, nil
	}
	table := m.related.Table()
	qb := m.related.Query().
		Select(table+".*").
		Join(m.pivot, m.pivot+"."+m.relatedKey, table+"."+columnID).
		Where(m.pivot+"."+m.foreignKey, "=", ownerID).
		OrderBy(table+"."+columnID, "ASC")
	return m.related.Get(ctx, qb)
}

// Associate inserts a pivot row linking the owner and related
func (m *ManyToMany[O, R]) Associate(ctx context.Context, related *R) error {
	ownerID, err := requireKey(m.owner, m.instance, "owner")
	if err != nil {
		return err
	}
	relatedID, err := requireKey(m.related, related, "related")
	if err != nil {
		return err
	}

	query, params, err := InsertSQL(m.pivot, Attributes{m.foreignKey: ownerID, m.relatedKey: relatedID}, m.owner.Connection().Dialect())
	if err != nil {
		return err
	}
	if _, err := m.owner.Connection().Execute(ctx, query, params); err != nil {
		return wrapStore("associate "+m.pivot, err)
	}
	return nil
}

// Dissociate deletes the pivot row for related, or every pivot row of the
// owner when related is nil.
func (m *ManyToMany[O, R]) Dissociate(ctx context.Context, related *R) error {
	ownerID, err := requireKey(m.owner, m.instance, "owner")
	if err != nil {
		return err
	}

	qb := NewQueryBuilder(m.pivot).Where(m.foreignKey, "=", ownerID)
	if related != nil {
		relatedID, err := requireKey(m.related, related, "related")
		if err != nil {
			return err
		}
		qb.Where(m.relatedKey, "=", relatedID)
	}

	query, params, err := qb.DeleteSQL()
	if err != nil {
		return err
	}
	if _, err := m.owner.Connection().Execute(ctx, query, params); err != nil {
		return wrapStore("dissociate "+m.pivot, err)
	}
	return nil
}
