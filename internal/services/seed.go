package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/models"
	"github.com/ksred/ironforge/internal/orm"
	"github.com/ksred/ironforge/internal/utils"
)

// SeedService fills the example tables with factory generated rows and
// links them through the model relationships
type SeedService struct {
	registry *orm.Registry
	users    *orm.Entity[models.User]
	posts    *orm.Entity[models.Post]
	roles    *orm.Entity[models.Role]
	logger   zerolog.Logger
}

// NewSeedService creates a seed service. A nil registry is replaced by one
// holding the model factories.
func NewSeedService(conn orm.Connection, registry *orm.Registry, logger zerolog.Logger) (*SeedService, error) {
	if registry == nil {
		registry = orm.NewRegistry()
		if err := models.RegisterFactories(registry); err != nil {
			return nil, err
		}
	}
	logger = utils.WithComponent(logger, "seed_service")
	return &SeedService{
		registry: registry,
		users:    orm.NewEntity[models.User](conn, logger),
		posts:    orm.NewEntity[models.Post](conn, logger),
		roles:    orm.NewEntity[models.Role](conn, logger),
		logger:   logger,
	}, nil
}

// Seed creates req.Users users with req.PostsPerUser posts each and gives
// every user one of req.Roles roles, round robin. Roles that already exist
// by name are reused.
func (s *SeedService) Seed(ctx context.Context, req SeedRequest) (*SeedResult, error) {
	if req.Users < 0 || req.PostsPerUser < 0 || req.Roles < 0 {
		return nil, utils.InvalidFieldError("seed", "counts must not be negative")
	}

	result := &SeedResult{}

	roles, err := s.ensureRoles(ctx, req.Roles)
	if err != nil {
		return result, err
	}
	result.Roles = len(roles)

	users, err := orm.Seed(ctx, s.registry, s.users, req.Users)
	result.Users = len(users)
	if err != nil {
		return result, fmt.Errorf("failed to seed users: %w", err)
	}

	for i, user := range users {
		posts, err := orm.Seed(ctx, s.registry, s.posts, req.PostsPerUser)
		if err != nil {
			return result, fmt.Errorf("failed to seed posts: %w", err)
		}

		authored := orm.NewHasMany(s.users, user, s.posts, "user_id")
		for _, post := range posts {
			if err := authored.Associate(ctx, post); err != nil {
				return result, err
			}
			result.Posts++
		}

		if len(roles) == 0 {
			continue
		}
		membership := orm.NewBelongsToMany(s.users, user, s.roles, models.RoleUserTable, "user_id", "role_id")
		if err := membership.Associate(ctx, roles[i%len(roles)]); err != nil {
			return result, err
		}
		result.RoleLinks++
	}

	s.logger.Info().
		Int("users", result.Users).
		Int("posts", result.Posts).
		Int("roles", result.Roles).
		Msg("Seeding completed")

	return result, nil
}

// ensureRoles returns n roles built by the role factory, creating the ones
// that do not exist yet
func (s *SeedService) ensureRoles(ctx context.Context, n int) ([]*models.Role, error) {
	made, err := orm.Make(s.registry, s.roles, n)
	if err != nil {
		return nil, err
	}

	roles := make([]*models.Role, 0, len(made))
	for _, role := range made {
		existing, err := s.roles.FirstWhere(ctx, s.roles.Query().Where("name", "=", role.Name))
		if err != nil {
			return nil, err
		}
		if existing != nil {
			roles = append(roles, existing)
			continue
		}
		if _, err := s.roles.Save(ctx, role); err != nil {
			return nil, fmt.Errorf("failed to create role %s: %w", role.Name, err)
		}
		roles = append(roles, role)
	}
	return roles, nil
}
