package service

import (
	"context"
	"encoding/json"
	"fmt"

	"flaggate/internal/dto/resp"
	"flaggate/internal/metrics"
	"flaggate/internal/model"
	"flaggate/internal/repository"
	"flaggate/pkg/constraints"
	"flaggate/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FlagService owns the mutation path: authorization check, compare-and-swap
// write and audit append in one transaction, then cache invalidation before
// the caller sees the ack. Reads go straight to the repositories.
type FlagService struct {
	tx        TxRunner
	flagRepo  repository.FlagInterface
	auditRepo repository.AuditInterface
	envRepo   repository.EnvironmentInterface
	cache     *FlagCache
	observer  metrics.Observer
}

func NewFlagService(tx TxRunner, flagRepo repository.FlagInterface, auditRepo repository.AuditInterface, envRepo repository.EnvironmentInterface, cache *FlagCache, observer metrics.Observer) *FlagService {
	if observer == nil {
		observer = metrics.NopObserver{}
	}
	return &FlagService{
		tx:        tx,
		flagRepo:  flagRepo,
		auditRepo: auditRepo,
		envRepo:   envRepo,
		cache:     cache,
		observer:  observer,
	}
}

// authorize resolves the environment and checks the principal against the
// role table. A denial happens before any store mutation and leaves no trace
// in the audit log.
func (s *FlagService) authorize(ctx context.Context, envKey, action string) (*Principal, *model.Environment, error) {
	p := GetPrincipal(ctx)
	if p == nil {
		return nil, nil, ErrForbidden
	}
	env, err := s.envRepo.GetByKey(ctx, envKey)
	if err != nil {
		return nil, nil, err
	}
	if env == nil {
		return nil, nil, ErrEnvNotFound
	}
	if !CheckPermission(p.Role, action, env) {
		return nil, nil, ErrForbidden
	}
	return p, env, nil
}

func validateConfig(cfg *model.FlagConfig) error {
	if !constraints.ValidFlagType(cfg.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidConfig, cfg.Type)
	}
	if cfg.Type == constraints.TypePercentage && (cfg.RolloutPercentage < 0 || cfg.RolloutPercentage > 100) {
		return fmt.Errorf("%w: rollout_percentage must be in [0,100]", ErrInvalidConfig)
	}
	return nil
}

func snapshot(cfg *model.FlagConfig) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return string(b)
}

// CreateFlag inserts a new flag at version 1 and appends the create audit
// record in the same transaction.
func (s *FlagService) CreateFlag(ctx context.Context, cfg model.FlagConfig) (int, error) {
	p, _, err := s.authorize(ctx, cfg.EnvKey, constraints.ActionModify)
	if err != nil {
		return 0, err
	}
	if err := validateConfig(&cfg); err != nil {
		return 0, err
	}
	cfg.UpdatedBy = p.Name

	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		txFlag := s.flagRepo.WithTx(tx)
		txAudit := s.auditRepo.WithTx(tx)

		existing, err := txFlag.GetByKey(ctx, cfg.EnvKey, cfg.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			return repository.ErrFlagExists
		}

		if err := txFlag.Create(ctx, &cfg); err != nil {
			return err
		}

		return txAudit.Create(ctx, &model.FlagAudit{
			FlagKey: cfg.Key,
			EnvKey:  cfg.EnvKey,
			Action:  constraints.AuditCreate,
			ActorID: p.ID,
			After:   snapshot(&cfg),
			TraceID: TraceIDFrom(ctx),
		})
	})
	if err != nil {
		return 0, err
	}

	s.observer.RecordMutation(constraints.AuditCreate)
	s.invalidate(ctx, cfg.EnvKey, cfg.Key)
	return cfg.Version, nil
}

// UpdateFlag performs the compare-and-swap write. A stale expectedVersion
// surfaces ErrVersionConflict to the caller; nothing is written and no audit
// record appears.
func (s *FlagService) UpdateFlag(ctx context.Context, cfg model.FlagConfig, expectedVersion int) (int, error) {
	p, _, err := s.authorize(ctx, cfg.EnvKey, constraints.ActionModify)
	if err != nil {
		return 0, err
	}
	if err := validateConfig(&cfg); err != nil {
		return 0, err
	}
	cfg.UpdatedBy = p.Name

	var newVersion int
	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		txFlag := s.flagRepo.WithTx(tx)
		txAudit := s.auditRepo.WithTx(tx)

		current, err := txFlag.GetByKey(ctx, cfg.EnvKey, cfg.Key)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrFlagNotFound
		}

		newVersion, err = txFlag.CompareAndSwap(ctx, &cfg, expectedVersion)
		if err != nil {
			return err
		}

		after := cfg
		after.ID = current.ID
		after.Version = newVersion
		return txAudit.Create(ctx, &model.FlagAudit{
			FlagKey: cfg.Key,
			EnvKey:  cfg.EnvKey,
			Action:  constraints.AuditUpdate,
			ActorID: p.ID,
			Before:  snapshot(current),
			After:   snapshot(&after),
			TraceID: TraceIDFrom(ctx),
		})
	})
	if err != nil {
		return 0, err
	}

	s.observer.RecordMutation(constraints.AuditUpdate)
	s.invalidate(ctx, cfg.EnvKey, cfg.Key)
	return newVersion, nil
}

// DeleteFlag removes the flag under the current version guard, so a delete
// racing a concurrent update loses with a conflict instead of dropping the
// newer write.
func (s *FlagService) DeleteFlag(ctx context.Context, envKey, flagKey string) error {
	p, _, err := s.authorize(ctx, envKey, constraints.ActionDelete)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		txFlag := s.flagRepo.WithTx(tx)
		txAudit := s.auditRepo.WithTx(tx)

		current, err := txFlag.GetByKey(ctx, envKey, flagKey)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrFlagNotFound
		}

		if err := txFlag.DeleteVersioned(ctx, envKey, flagKey, current.Version); err != nil {
			return err
		}

		return txAudit.Create(ctx, &model.FlagAudit{
			FlagKey: flagKey,
			EnvKey:  envKey,
			Action:  constraints.AuditDelete,
			ActorID: p.ID,
			Before:  snapshot(current),
			TraceID: TraceIDFrom(ctx),
		})
	})
	if err != nil {
		return err
	}

	s.observer.RecordMutation(constraints.AuditDelete)
	s.invalidate(ctx, envKey, flagKey)
	return nil
}

// invalidate runs synchronously between commit and ack. When it fails the
// backend is down, and readers bypass the cache on that same failure, so the
// TTL bounds any residual staleness.
func (s *FlagService) invalidate(ctx context.Context, envKey, flagKey string) {
	if err := s.cache.Invalidate(ctx, envKey, flagKey); err != nil {
		logger.Warn("cache invalidation failed", zap.String("flag", flagKey), zap.String("env", envKey), zap.Error(err))
	}
}

func (s *FlagService) GetFlag(ctx context.Context, envKey, flagKey string) (*resp.FlagItem, error) {
	env, err := s.envRepo.GetByKey(ctx, envKey)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, ErrEnvNotFound
	}

	m, err := s.flagRepo.GetByKey(ctx, envKey, flagKey)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrFlagNotFound
	}
	return toFlagItem(m), nil
}

func (s *FlagService) ListFlags(ctx context.Context, envKey, search string) ([]resp.FlagItem, error) {
	flags, err := s.flagRepo.List(ctx, envKey, search)
	if err != nil {
		return nil, err
	}
	items := make([]resp.FlagItem, 0, len(flags))
	for _, m := range flags {
		items = append(items, *toFlagItem(m))
	}
	return items, nil
}

func (s *FlagService) AuditHistory(ctx context.Context, envKey, flagKey string) ([]resp.AuditLogItem, error) {
	audits, err := s.auditRepo.ListByKey(ctx, envKey, flagKey)
	if err != nil {
		return nil, err
	}
	return toAuditItems(audits), nil
}

func (s *FlagService) RecentAudits(ctx context.Context, limit int) ([]resp.AuditLogItem, error) {
	audits, err := s.auditRepo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toAuditItems(audits), nil
}

func (s *FlagService) Health(ctx context.Context) error {
	if s.flagRepo.PingContext(ctx) != nil {
		return ErrMysqlUnhealthy
	}
	if s.cache.Health(ctx) != nil {
		return ErrRedisUnhealthy
	}
	return nil
}

func toFlagItem(m *model.FlagConfig) *resp.FlagItem {
	return &resp.FlagItem{
		ID:                m.ID,
		Key:               m.Key,
		Env:               m.EnvKey,
		Enabled:           m.Enabled,
		Type:              m.Type,
		RolloutPercentage: m.RolloutPercentage,
		Version:           m.Version,
		UpdatedAt:         m.UpdatedAt,
		UpdatedBy:         m.UpdatedBy,
	}
}

func toAuditItems(audits []model.FlagAudit) []resp.AuditLogItem {
	items := make([]resp.AuditLogItem, 0, len(audits))
	for _, a := range audits {
		items = append(items, resp.AuditLogItem{
			ID:        a.ID,
			FlagKey:   a.FlagKey,
			Env:       a.EnvKey,
			Action:    a.Action,
			ActorID:   a.ActorID,
			Before:    a.Before,
			After:     a.After,
			CreatedAt: a.CreatedAt,
		})
	}
	return items
}
