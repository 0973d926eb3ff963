package repository

import (
	"context"
	"errors"
	"flaggate/internal/model"

	"gorm.io/gorm"
)

var ErrEnvExists = errors.New("environment already exists")

type EnvironmentInterface interface {
	GetByKey(ctx context.Context, key string) (*model.Environment, error)
	List(ctx context.Context) ([]*model.Environment, error)
	Create(ctx context.Context, env *model.Environment) error
}

type EnvironmentRepository struct {
	db *gorm.DB
}

func NewEnvironmentRepository(db *gorm.DB) *EnvironmentRepository {
	return &EnvironmentRepository{db: db}
}

// GetByKey returns (nil, nil) when the environment does not exist.
func (r *EnvironmentRepository) GetByKey(ctx context.Context, key string) (*model.Environment, error) {
	var env model.Environment
	if err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&env).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &env, nil
}

func (r *EnvironmentRepository) List(ctx context.Context) ([]*model.Environment, error) {
	var envs []*model.Environment
	err := r.db.WithContext(ctx).Order("`key` ASC").Find(&envs).Error
	return envs, err
}

func (r *EnvironmentRepository) Create(ctx context.Context, env *model.Environment) error {
	err := r.db.WithContext(ctx).Create(env).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEnvExists
	}
	return err
}
