package models

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ksred/ironforge/internal/orm"
)

// RegisterFactories binds the seed factories of every model to reg
func RegisterFactories(reg *orm.Registry) error {
	if err := orm.RegisterFactory[User](reg, orm.FactoryFunc(userDefinition)); err != nil {
		return err
	}
	if err := orm.RegisterFactory[Post](reg, orm.FactoryFunc(postDefinition)); err != nil {
		return err
	}
	if err := orm.RegisterFactory[Role](reg, orm.FactoryFunc(roleDefinition)); err != nil {
		return err
	}
	return nil
}

func userDefinition(seq int) (orm.Attributes, error) {
	// uuid suffix keeps emails unique across repeated seeding
	token := uuid.NewString()[:8]
	return orm.Attributes{
		"name":  fmt.Sprintf("User %d", seq),
		"email": fmt.Sprintf("user%d-%s@example.com", seq, token),
	}, nil
}

func postDefinition(seq int) (orm.Attributes, error) {
	return orm.Attributes{
		"title": fmt.Sprintf("Post %d", seq),
		"body":  fmt.Sprintf("Body of post %d", seq),
		"views": 0,
	}, nil
}

var roleNames = []string{"admin", "editor", "viewer"}

func roleDefinition(seq int) (orm.Attributes, error) {
	name := roleNames[(seq-1)%len(roleNames)]
	if seq > len(roleNames) {
		name = fmt.Sprintf("%s-%d", name, seq)
	}
	return orm.Attributes{"name": name}, nil
}
