package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Maheshwickramage/S3learnUID/internal/datastore/memstore"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/testkit"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fingerprint(value string) models.DownloaderIdentity {
	return models.DownloaderIdentity{Fingerprint: value, IPAddress: "127.0.0.1", UserAgent: "go-test"}
}

func TestRecordDownloadRepeatsCreditOnce(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	componentID := env.SeedComponent(t, 1)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := serviceDownload.RecordDownload(ctx, componentID, fingerprint("device-a"))
		require.NoError(t, err)
		assert.Equal(t, i == 0, result.Credited)
		assert.EqualValues(t, 1, result.NewTotal)
		assert.EqualValues(t, 1, result.ComponentDownloads)
	}

	creator, err := env.Store.FindCreatorByID(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, creator.TotalDownloads)
	assert.EqualValues(t, 1, creator.Points)
}

func TestRecordDownloadUserReferenceWins(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	componentID := env.SeedComponent(t, 1)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	userID := int64(7)
	first, err := serviceDownload.RecordDownload(ctx, componentID, models.DownloaderIdentity{UserID: &userID, Fingerprint: "laptop"})
	require.NoError(t, err)
	assert.True(t, first.Credited)

	second, err := serviceDownload.RecordDownload(ctx, componentID, models.DownloaderIdentity{UserID: &userID, Fingerprint: "phone"})
	require.NoError(t, err)
	assert.False(t, second.Credited)

	// the bare fingerprint is a separate identity
	third, err := serviceDownload.RecordDownload(ctx, componentID, fingerprint("laptop"))
	require.NoError(t, err)
	assert.True(t, third.Credited)
	assert.EqualValues(t, 2, third.NewTotal)
}

func TestRecordDownloadValidation(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	componentID := env.SeedComponent(t, 1)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	zero := int64(0)
	tests := []struct {
		name     string
		identity models.DownloaderIdentity
	}{
		{"no identity", models.DownloaderIdentity{}},
		{"blank fingerprint", fingerprint("   ")},
		{"fingerprint too long", fingerprint(strings.Repeat("x", models.MAX_FINGERPRINT_LENGTH+1))},
		{"non-positive user", models.DownloaderIdentity{UserID: &zero}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serviceDownload.RecordDownload(ctx, componentID, tt.identity)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}

	creator, err := env.Store.FindCreatorByID(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, creator.TotalDownloads)
}

func TestRecordDownloadUnknownComponent(t *testing.T) {
	env := testkit.NewEnv(t)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)

	_, err := serviceDownload.RecordDownload(context.Background(), uuid.New(), fingerprint("device-a"))
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRecordDownloadStoreUnavailable(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	componentID := env.SeedComponent(t, 1)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)

	env.Store.FailWith = errors.New("connection refused")
	_, err := serviceDownload.RecordDownload(context.Background(), componentID, fingerprint("device-a"))
	assert.ErrorIs(t, err, services.ErrPersistenceUnavailable)
}

func TestHundredDistinctDownloadsCrossFirstMilestone(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	componentID := env.SeedComponent(t, 1)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	var rewarded []*models.Reward
	for i := 1; i <= 100; i++ {
		result, err := serviceDownload.RecordDownload(ctx, componentID, fingerprint(fmt.Sprintf("device-%d", i)))
		require.NoError(t, err)
		require.True(t, result.Credited)
		if i < 100 {
			assert.Empty(t, result.NewRewards)
		}
		rewarded = append(rewarded, result.NewRewards...)
	}

	require.Len(t, rewarded, 1)
	assert.Equal(t, 100, rewarded[0].Milestone)
	assert.Equal(t, models.REWARD_KIND_BADGE, rewarded[0].Kind)
	assert.Equal(t, models.REWARD_STATUS_DELIVERED, rewarded[0].Status)

	creator, err := env.Store.FindCreatorByID(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 100, creator.TotalDownloads)
	assert.EqualValues(t, 100, creator.Points)
	assert.EqualValues(t, 2, services.Level(creator.Points))

	rewards, err := env.Store.ListRewardsByCreator(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rewards, 1)
}

func TestConcurrentSameIdentityCreditsOnce(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	componentID := env.SeedComponent(t, 1)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	credited := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := serviceDownload.RecordDownload(ctx, componentID, fingerprint("device-a"))
			if !assert.NoError(t, err) {
				return
			}
			if result.Credited {
				mu.Lock()
				credited++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, credited)
	creator, err := env.Store.FindCreatorByID(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, creator.TotalDownloads)
}

func TestConcurrentCrossingCreatesOneReward(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	componentID := env.SeedComponent(t, 1)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	_, err := env.Store.RaiseCreatorDownloads(ctx, 1, 98)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var rewarded []*models.Reward
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := serviceDownload.RecordDownload(ctx, componentID, fingerprint(fmt.Sprintf("device-%d", i)))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			rewarded = append(rewarded, result.NewRewards...)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	require.Len(t, rewarded, 1)
	assert.Equal(t, 100, rewarded[0].Milestone)

	creator, err := env.Store.FindCreatorByID(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 108, creator.TotalDownloads)

	milestones, err := env.Store.RewardedMilestones(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, milestones)
}

func TestDownloadOfUnownedComponent(t *testing.T) {
	env := testkit.NewEnv(t)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	componentID := uuid.New()
	_, err := env.Store.RegisterUpload(ctx, &models.Component{ID: componentID, Name: "Orphan", Category: "Other"}, 0)
	require.NoError(t, err)

	result, err := serviceDownload.RecordDownload(ctx, componentID, fingerprint("device-a"))
	require.NoError(t, err)
	assert.True(t, result.Credited)
	assert.EqualValues(t, 1, result.ComponentDownloads)
	assert.EqualValues(t, 0, result.NewTotal)
	assert.Empty(t, result.NewRewards)
}

func TestDownloadOfComponentWithMissingOwner(t *testing.T) {
	env := testkit.NewEnv(t)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	ghost := int64(404)
	componentID := uuid.New()
	env.Store.PutComponent(models.Component{ID: componentID, CreatorID: &ghost, Name: "Ghost", Category: "Other"})

	result, err := serviceDownload.RecordDownload(ctx, componentID, fingerprint("device-a"))
	require.NoError(t, err)
	assert.True(t, result.Credited)
	assert.EqualValues(t, 1, result.ComponentDownloads)
	assert.EqualValues(t, 0, result.NewTotal)
	assert.Empty(t, result.NewRewards)

	result, err = serviceDownload.RecordDownload(ctx, componentID, fingerprint("device-a"))
	require.NoError(t, err)
	assert.False(t, result.Credited)
	assert.EqualValues(t, 1, result.ComponentDownloads)
}

// failingLookupStore fails creator lookups while failLookups is set.
type failingLookupStore struct {
	*memstore.Store
	failLookups bool
}

func (store *failingLookupStore) FindCreatorByID(ctx context.Context, creatorID int64) (*models.Creator, error) {
	if store.failLookups {
		return nil, errors.New("connection reset")
	}
	return store.Store.FindCreatorByID(ctx, creatorID)
}

func TestRepeatDownloadReportsOwnerLookupFailure(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	componentID := env.SeedComponent(t, 1)
	store := &failingLookupStore{Store: env.Store}
	env.UseStore(store)
	serviceDownload := testkit.MustInvoke[*services.ServiceDownload](t, env)
	ctx := context.Background()

	_, err := serviceDownload.RecordDownload(ctx, componentID, fingerprint("device-a"))
	require.NoError(t, err)

	store.failLookups = true
	_, err = serviceDownload.RecordDownload(ctx, componentID, fingerprint("device-a"))
	assert.ErrorIs(t, err, services.ErrPersistenceUnavailable)
}
