package service

import (
	"context"
	"hash/fnv"

	"flaggate/internal/dto/resp"
	"flaggate/internal/metrics"
	"flaggate/internal/model"
	"flaggate/internal/repository"
	"flaggate/pkg/constraints"
	"flaggate/pkg/logger"

	"go.uber.org/zap"
)

// EvaluationService resolves a flag decision for one user: cache-aside read
// through FlagCache with the config store as fallback, then the bucketing
// rule. The read path is fully parallel and holds no locks across calls.
type EvaluationService struct {
	flagRepo repository.FlagInterface
	cache    *FlagCache
	observer metrics.Observer
}

func NewEvaluationService(flagRepo repository.FlagInterface, cache *FlagCache, observer metrics.Observer) *EvaluationService {
	if observer == nil {
		observer = metrics.NopObserver{}
	}
	return &EvaluationService{
		flagRepo: flagRepo,
		cache:    cache,
		observer: observer,
	}
}

// Bucket maps (flagKey, userID) to [0,100) with 64-bit FNV-1a over the UTF-8
// bytes of "flagKey:userID". The function is fixed for the system's lifetime;
// changing it reshuffles every user's bucket and is a breaking change.
func Bucket(flagKey, userID string) int {
	h := fnv.New64a()
	h.Write([]byte(flagKey + ":" + userID))
	return int(h.Sum64() % 100)
}

// Evaluate decides whether flagKey is enabled for userID in env. Missing
// configuration fails closed: the absence of a flag means disabled, never an
// error to the caller.
func (s *EvaluationService) Evaluate(ctx context.Context, flagKey, env, userID string) (resp.EvalResult, error) {
	cfg, err := s.cache.GetOrLoad(ctx, env, flagKey, func(ctx context.Context) (*model.FlagConfig, error) {
		return s.flagRepo.GetByKey(ctx, env, flagKey)
	})
	if err != nil {
		// store unreachable: the evaluation itself fails, no stale fallback
		logger.Error("flag load failed", zap.String("flag", flagKey), zap.String("env", env), zap.Error(err))
		return resp.EvalResult{FlagKey: flagKey}, err
	}

	result := s.decide(cfg, flagKey, userID)
	s.observer.RecordEvaluation(result.Reason)
	return result, nil
}

func (s *EvaluationService) decide(cfg *model.FlagConfig, flagKey, userID string) resp.EvalResult {
	if cfg == nil {
		return resp.EvalResult{FlagKey: flagKey, Enabled: false, Reason: constraints.ReasonNotFound}
	}
	if !cfg.Enabled {
		return resp.EvalResult{FlagKey: flagKey, Enabled: false, Reason: constraints.ReasonDisabled}
	}

	switch cfg.Type {
	case constraints.TypeBoolean:
		return resp.EvalResult{FlagKey: flagKey, Enabled: true, Reason: constraints.ReasonBooleanOn}
	case constraints.TypePercentage:
		if userID == "" {
			return resp.EvalResult{FlagKey: flagKey, Enabled: false, Reason: constraints.ReasonMissingUser}
		}
		bucket := Bucket(flagKey, userID)
		return resp.EvalResult{
			FlagKey: flagKey,
			Enabled: bucket < cfg.RolloutPercentage,
			Reason:  constraints.ReasonBucketed,
			Bucket:  &bucket,
		}
	}

	// unknown type in store, fail closed
	return resp.EvalResult{FlagKey: flagKey, Enabled: false, Reason: constraints.ReasonDisabled}
}
