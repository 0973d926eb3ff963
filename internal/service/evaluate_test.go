package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"flaggate/internal/model"
	"flaggate/internal/repository"
	"flaggate/pkg/constraints"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubFlagRepo serves a fixed set of flags and counts store reads.
type stubFlagRepo struct {
	flags map[string]*model.FlagConfig // key: env/flag
	err   error
	reads int32
}

func repoKey(env, key string) string { return env + "/" + key }

func (s *stubFlagRepo) GetByKey(ctx context.Context, env, key string) (*model.FlagConfig, error) {
	atomic.AddInt32(&s.reads, 1)
	if s.err != nil {
		return nil, s.err
	}
	return s.flags[repoKey(env, key)], nil
}

func (s *stubFlagRepo) List(ctx context.Context, env, search string) ([]*model.FlagConfig, error) {
	return nil, nil
}
func (s *stubFlagRepo) Create(ctx context.Context, cfg *model.FlagConfig) error { return nil }
func (s *stubFlagRepo) CompareAndSwap(ctx context.Context, cfg *model.FlagConfig, expectedVersion int) (int, error) {
	return 0, nil
}
func (s *stubFlagRepo) DeleteVersioned(ctx context.Context, env, key string, expectedVersion int) error {
	return nil
}
func (s *stubFlagRepo) PingContext(ctx context.Context) error { return nil }

func (s *stubFlagRepo) WithTx(tx *gorm.DB) repository.FlagInterface { return s }

func newEvalService(flags ...*model.FlagConfig) (*EvaluationService, *stubFlagRepo) {
	repo := &stubFlagRepo{flags: make(map[string]*model.FlagConfig)}
	for _, f := range flags {
		repo.flags[repoKey(f.EnvKey, f.Key)] = f
	}
	cache := NewFlagCache(newMemBackend(), time.Minute, nil)
	return NewEvaluationService(repo, cache, nil), repo
}

func percentageFlag(key, env string, pct int) *model.FlagConfig {
	return &model.FlagConfig{
		Key:               key,
		EnvKey:            env,
		Enabled:           true,
		Type:              constraints.TypePercentage,
		RolloutPercentage: pct,
		Version:           1,
	}
}

func TestBucket_KnownValues(t *testing.T) {
	// pinned FNV-1a 64 buckets; changing the hash reshuffles every user
	// and must fail this test
	tests := []struct {
		flag, user string
		want       int
	}{
		{"checkout-v2", "alice", 38},
		{"checkout-v2", "grace", 2},
		{"checkout-v2", "user-34", 3},
		{"checkout-v2", "user-1", 99},
		{"dark-mode", "alice", 41},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bucket(tt.flag, tt.user), "%s:%s", tt.flag, tt.user)
	}
}

func TestBucket_Deterministic(t *testing.T) {
	for i := 0; i < 1000; i++ {
		user := fmt.Sprintf("user-%d", i)
		first := Bucket("checkout-v2", user)
		assert.Equal(t, first, Bucket("checkout-v2", user))
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 100)
	}
}

func TestBucket_DistributionUniformity(t *testing.T) {
	const n = 10000
	for _, pct := range []int{10, 50} {
		enabled := 0
		for i := 0; i < n; i++ {
			if Bucket("checkout-v2", fmt.Sprintf("user-%d", i)) < pct {
				enabled++
			}
		}
		fraction := float64(enabled) / float64(n)
		assert.InDelta(t, float64(pct)/100, fraction, 0.03, "rollout %d%%", pct)
	}
}

func TestEvaluate_NotFoundFailsClosed(t *testing.T) {
	svc, _ := newEvalService()

	result, err := svc.Evaluate(context.Background(), "ghost", "production", "alice")
	require.NoError(t, err)
	assert.False(t, result.Enabled)
	assert.Equal(t, constraints.ReasonNotFound, result.Reason)
}

func TestEvaluate_Disabled(t *testing.T) {
	flag := percentageFlag("checkout-v2", "production", 100)
	flag.Enabled = false
	svc, _ := newEvalService(flag)

	result, err := svc.Evaluate(context.Background(), "checkout-v2", "production", "alice")
	require.NoError(t, err)
	assert.False(t, result.Enabled)
	assert.Equal(t, constraints.ReasonDisabled, result.Reason)
}

func TestEvaluate_BooleanOn(t *testing.T) {
	svc, _ := newEvalService(&model.FlagConfig{
		Key: "dark-mode", EnvKey: "production", Enabled: true, Type: constraints.TypeBoolean, Version: 1,
	})

	result, err := svc.Evaluate(context.Background(), "dark-mode", "production", "")
	require.NoError(t, err)
	assert.True(t, result.Enabled)
	assert.Equal(t, constraints.ReasonBooleanOn, result.Reason)
}

func TestEvaluate_PercentageRollout(t *testing.T) {
	// user-34 lands in bucket 3
	tests := []struct {
		pct         int
		wantEnabled bool
	}{
		{50, true},
		{4, true},
		{3, false},
		{2, false},
	}
	for _, tt := range tests {
		svc, _ := newEvalService(percentageFlag("checkout-v2", "production", tt.pct))
		result, err := svc.Evaluate(context.Background(), "checkout-v2", "production", "user-34")
		require.NoError(t, err)
		assert.Equal(t, tt.wantEnabled, result.Enabled, "rollout %d%%", tt.pct)
		assert.Equal(t, constraints.ReasonBucketed, result.Reason)
		require.NotNil(t, result.Bucket)
		assert.Equal(t, 3, *result.Bucket)
	}
}

func TestEvaluate_PercentageWithoutUserFailsClosed(t *testing.T) {
	svc, _ := newEvalService(percentageFlag("checkout-v2", "production", 100))

	result, err := svc.Evaluate(context.Background(), "checkout-v2", "production", "")
	require.NoError(t, err)
	assert.False(t, result.Enabled)
	assert.Equal(t, constraints.ReasonMissingUser, result.Reason)
}

func TestEvaluate_RepeatedCallsIdentical(t *testing.T) {
	svc, _ := newEvalService(percentageFlag("checkout-v2", "production", 50))

	first, err := svc.Evaluate(context.Background(), "checkout-v2", "production", "alice")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		result, err := svc.Evaluate(context.Background(), "checkout-v2", "production", "alice")
		require.NoError(t, err)
		assert.Equal(t, first, result)
	}
}

func TestEvaluate_SecondCallServedFromCache(t *testing.T) {
	svc, repo := newEvalService(percentageFlag("checkout-v2", "production", 50))

	_, err := svc.Evaluate(context.Background(), "checkout-v2", "production", "alice")
	require.NoError(t, err)
	_, err = svc.Evaluate(context.Background(), "checkout-v2", "production", "bob")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.reads))
}

func TestEvaluate_StoreDownFailsEvaluation(t *testing.T) {
	svc, repo := newEvalService()
	repo.err = errors.New("store down")

	_, err := svc.Evaluate(context.Background(), "checkout-v2", "production", "alice")
	assert.Error(t, err)
}
