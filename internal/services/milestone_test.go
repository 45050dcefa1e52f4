package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Maheshwickramage/S3learnUID/internal/datastore/memstore"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/limiter"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/testkit"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBadgeStore fails the next `failures` badge inserts.
type failingBadgeStore struct {
	*memstore.Store
	failures int
}

func (store *failingBadgeStore) InsertBadge(ctx context.Context, badge *models.CreatorBadge) (bool, error) {
	if store.failures > 0 {
		store.failures--
		return false, errors.New("connection reset")
	}
	return store.Store.InsertBadge(ctx, badge)
}

func badgeKinds(t *testing.T, env *testkit.Env, creatorID int64) []models.BadgeKind {
	t.Helper()

	badges, err := env.Store.ListBadges(context.Background(), creatorID)
	require.NoError(t, err)
	kinds := []models.BadgeKind{}
	for _, badge := range badges {
		kinds = append(kinds, badge.Kind)
	}
	return kinds
}

func thresholds(milestones []models.Milestone) []int {
	result := []int{}
	for _, milestone := range milestones {
		result = append(result, milestone.Threshold)
	}
	return result
}

func TestNewCrossings(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		rewarded []int
		want     []int
	}{
		{"below first threshold", 99, nil, []int{}},
		{"exactly first threshold", 100, nil, []int{100}},
		{"already rewarded", 100, []int{100}, []int{}},
		{"jump over several", 1200, nil, []int{100, 500, 1000}},
		{"missed earlier threshold", 600, []int{500}, []int{100}},
		{"everything", 10000, []int{100}, []int{500, 1000, 5000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, thresholds(services.NewCrossings(tt.total, tt.rewarded)))
		})
	}
}

func TestLevel(t *testing.T) {
	assert.EqualValues(t, 1, services.Level(0))
	assert.EqualValues(t, 1, services.Level(99))
	assert.EqualValues(t, 2, services.Level(100))
	assert.EqualValues(t, 11, services.Level(1000))
	assert.EqualValues(t, 1, services.Level(-5))
}

func TestEvaluateCreatesEachRewardOnce(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	serviceMilestone := testkit.MustInvoke[*services.ServiceMilestone](t, env)
	ctx := context.Background()

	crossings, err := serviceMilestone.Evaluate(ctx, 1, 550)
	require.NoError(t, err)
	require.Len(t, crossings, 2)
	assert.Equal(t, 100, crossings[0].Milestone.Threshold)
	assert.Equal(t, 500, crossings[1].Milestone.Threshold)

	crossings, err = serviceMilestone.Evaluate(ctx, 1, 550)
	require.NoError(t, err)
	assert.Empty(t, crossings)

	assert.ElementsMatch(t, []models.BadgeKind{"milestone_100", "milestone_500"}, badgeKinds(t, env, 1))
}

func TestEvaluateGrantsBadgeAfterFailedInsert(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	env.UseStore(&failingBadgeStore{Store: env.Store, failures: 1})
	serviceMilestone := testkit.MustInvoke[*services.ServiceMilestone](t, env)
	ctx := context.Background()

	_, err := serviceMilestone.Evaluate(ctx, 1, 100)
	require.ErrorIs(t, err, services.ErrPersistenceUnavailable)
	assert.Empty(t, badgeKinds(t, env, 1))

	crossings, err := serviceMilestone.Evaluate(ctx, 1, 100)
	require.NoError(t, err)
	assert.Empty(t, crossings)
	assert.Equal(t, []models.BadgeKind{"milestone_100"}, badgeKinds(t, env, 1))

	rewards, err := env.Store.ListRewardsByCreator(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rewards, 1)
}

func TestCheckMilestonesUnknownCreator(t *testing.T) {
	env := testkit.NewEnv(t)
	serviceMilestone := testkit.MustInvoke[*services.ServiceMilestone](t, env)

	_, err := serviceMilestone.CheckMilestones(context.Background(), 42)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestAllowCheckMilestones(t *testing.T) {
	env := testkit.NewEnv(t)
	serviceMilestone := testkit.MustInvoke[*services.ServiceMilestone](t, env)

	assert.NoError(t, serviceMilestone.AllowCheckMilestones(context.Background(), 1))
}

func TestAllowCheckMilestonesRateLimited(t *testing.T) {
	env := testkit.NewEnv(t)
	env.Store.SetConfig(services.CONFIG_CHECK_MILESTONES_RATE_LIMIT_PER_MINUTE, "2")
	rateLimiter, err := limiter.NewLimiter(env.Client)
	require.NoError(t, err)
	env.UseLimiter(rateLimiter)
	serviceMilestone := testkit.MustInvoke[*services.ServiceMilestone](t, env)
	ctx := context.Background()

	require.NoError(t, serviceMilestone.AllowCheckMilestones(ctx, 1))
	require.NoError(t, serviceMilestone.AllowCheckMilestones(ctx, 1))

	err = serviceMilestone.AllowCheckMilestones(ctx, 1)
	require.ErrorIs(t, err, limiter.ErrRateLimited)
	var xerr *errorx.Error
	require.ErrorAs(t, err, &xerr)
	assert.True(t, xerr.Of(errorx.RateLimiting))

	assert.NoError(t, serviceMilestone.AllowCheckMilestones(ctx, 2))
}
