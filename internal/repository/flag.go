package repository

import (
	"context"
	"errors"
	"flaggate/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrVersionConflict means a concurrent writer won the race; the caller
	// must re-read and retry or surface the conflict. Never overwritten silently.
	ErrVersionConflict = errors.New("flag version conflict")
	ErrFlagExists      = errors.New("flag already exists")
)

// FlagInterface is the config store contract consumed by the core: versioned
// read plus compare-and-swap write.
type FlagInterface interface {
	GetByKey(ctx context.Context, env, key string) (*model.FlagConfig, error)
	List(ctx context.Context, env, search string) ([]*model.FlagConfig, error)
	Create(ctx context.Context, cfg *model.FlagConfig) error
	CompareAndSwap(ctx context.Context, cfg *model.FlagConfig, expectedVersion int) (int, error)
	DeleteVersioned(ctx context.Context, env, key string, expectedVersion int) error
	PingContext(ctx context.Context) error
	WithTx(tx *gorm.DB) FlagInterface
}

// FlagRepository implements FlagInterface on MySQL.
type FlagRepository struct {
	db *gorm.DB
}

func NewFlagRepository(db *gorm.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// GetByKey returns (nil, nil) when the flag does not exist in the environment.
func (r *FlagRepository) GetByKey(ctx context.Context, env, key string) (*model.FlagConfig, error) {
	var cfg model.FlagConfig
	if err := r.db.WithContext(ctx).Where("env_key = ? AND `key` = ?", env, key).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *FlagRepository) List(ctx context.Context, env, search string) ([]*model.FlagConfig, error) {
	var flags []*model.FlagConfig
	query := r.db.WithContext(ctx)

	if env != "" {
		query = query.Where("env_key = ?", env)
	}
	if search != "" {
		query = query.Where("`key` LIKE ?", "%"+search+"%")
	}

	err := query.Order("updated_at DESC").Find(&flags).Error
	return flags, err
}

// Create inserts a new flag at version 1. The composite unique index on
// (key, env_key) rejects duplicates that slip past the caller's existence check.
func (r *FlagRepository) Create(ctx context.Context, cfg *model.FlagConfig) error {
	cfg.Version = 1
	err := r.db.WithContext(ctx).Create(cfg).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrFlagExists
	}
	return err
}

// CompareAndSwap updates the row only if the stored version still matches
// expectedVersion. Zero rows affected means a concurrent writer got there
// first and the caller receives ErrVersionConflict with no partial write.
func (r *FlagRepository) CompareAndSwap(ctx context.Context, cfg *model.FlagConfig, expectedVersion int) (int, error) {
	res := r.db.WithContext(ctx).Model(&model.FlagConfig{}).
		Where("env_key = ? AND `key` = ? AND version = ?", cfg.EnvKey, cfg.Key, expectedVersion).
		Updates(map[string]any{
			"enabled":            cfg.Enabled,
			"type":               cfg.Type,
			"rollout_percentage": cfg.RolloutPercentage,
			"version":            expectedVersion + 1,
			"updated_by":         cfg.UpdatedBy,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrVersionConflict
	}
	return expectedVersion + 1, nil
}

// DeleteVersioned removes the row under the same version guard as updates,
// so a delete racing an update loses cleanly instead of dropping the newer write.
func (r *FlagRepository) DeleteVersioned(ctx context.Context, env, key string, expectedVersion int) error {
	res := r.db.WithContext(ctx).
		Where("env_key = ? AND `key` = ? AND version = ?", env, key, expectedVersion).
		Delete(&model.FlagConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *FlagRepository) PingContext(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *FlagRepository) WithTx(tx *gorm.DB) FlagInterface {
	return &FlagRepository{db: tx}
}
