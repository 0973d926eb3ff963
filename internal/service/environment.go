package service

import (
	"context"

	"flaggate/internal/dto/resp"
	"flaggate/internal/model"
	"flaggate/internal/repository"
	"flaggate/pkg/constraints"
)

type EnvironmentService struct {
	envRepo repository.EnvironmentInterface
}

func NewEnvironmentService(envRepo repository.EnvironmentInterface) *EnvironmentService {
	return &EnvironmentService{envRepo: envRepo}
}

// CreateEnvironment is admin-only; environments carry the Protected bit that
// the guard consults, so only admins may mint them.
func (s *EnvironmentService) CreateEnvironment(ctx context.Context, env model.Environment) error {
	p := GetPrincipal(ctx)
	if p == nil || p.Role != constraints.RoleAdmin {
		return ErrForbidden
	}
	return s.envRepo.Create(ctx, &env)
}

func (s *EnvironmentService) GetEnvironment(ctx context.Context, key string) (*resp.EnvironmentItem, error) {
	env, err := s.envRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, ErrEnvNotFound
	}
	return toEnvItem(env), nil
}

func (s *EnvironmentService) ListEnvironments(ctx context.Context) ([]resp.EnvironmentItem, error) {
	envs, err := s.envRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]resp.EnvironmentItem, 0, len(envs))
	for _, e := range envs {
		items = append(items, *toEnvItem(e))
	}
	return items, nil
}

func toEnvItem(e *model.Environment) *resp.EnvironmentItem {
	return &resp.EnvironmentItem{
		Key:       e.Key,
		Name:      e.Name,
		Protected: e.Protected,
		CreatedAt: e.CreatedAt,
	}
}
