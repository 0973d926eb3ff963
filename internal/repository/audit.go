package repository

import (
	"context"
	"flaggate/internal/model"

	"gorm.io/gorm"
)

// AuditInterface defines the append-only audit trail. Create is only ever
// called through WithTx inside the mutation transaction; the read accessors
// expose no mutation capability.
type AuditInterface interface {
	Create(ctx context.Context, audit *model.FlagAudit) error
	Recent(ctx context.Context, limit int) ([]model.FlagAudit, error)
	ListByKey(ctx context.Context, env, flagKey string) ([]model.FlagAudit, error)
	WithTx(tx *gorm.DB) AuditInterface
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, audit *model.FlagAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]model.FlagAudit, error) {
	var audits []model.FlagAudit
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&audits).Error
	return audits, err
}

func (r *AuditRepository) ListByKey(ctx context.Context, env, flagKey string) ([]model.FlagAudit, error) {
	var audits []model.FlagAudit
	query := r.db.WithContext(ctx).Where("flag_key = ?", flagKey)
	if env != "" {
		query = query.Where("env_key = ?", env)
	}
	err := query.Order("created_at DESC").Find(&audits).Error
	return audits, err
}

func (r *AuditRepository) WithTx(tx *gorm.DB) AuditInterface {
	return &AuditRepository{db: tx}
}
