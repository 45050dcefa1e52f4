package memstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store *Store, creatorID int64) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, store.InsertCreator(ctx, &models.Creator{ID: creatorID, Username: "alice"}))

	componentID := uuid.New()
	owner, err := store.RegisterUpload(ctx, &models.Component{ID: componentID, CreatorID: &creatorID, Name: "Card"}, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, owner.TotalUploads)
	require.EqualValues(t, 10, owner.Points)
	return componentID
}

func TestCreditDownloadIsIdempotent(t *testing.T) {
	store := New()
	ctx := context.Background()
	componentID := seed(t, store, 1)

	event := &models.DownloadEvent{ID: uuid.New(), ComponentID: componentID, IdentityKey: "fp:a"}
	result, err := store.CreditDownload(ctx, event)
	require.NoError(t, err)
	assert.True(t, result.Credited)
	assert.EqualValues(t, 1, result.Component.Downloads)
	require.NotNil(t, result.Owner)
	assert.EqualValues(t, 1, result.Owner.TotalDownloads)
	assert.EqualValues(t, 11, result.Owner.Points)

	result, err = store.CreditDownload(ctx, &models.DownloadEvent{ID: uuid.New(), ComponentID: componentID, IdentityKey: "fp:a"})
	require.NoError(t, err)
	assert.False(t, result.Credited)
	assert.Nil(t, result.Owner)
	assert.EqualValues(t, 1, result.Component.Downloads)

	count, err := store.CountCreditedDownloadsByOwner(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = store.CreditDownload(ctx, &models.DownloadEvent{ID: uuid.New(), ComponentID: uuid.New(), IdentityKey: "fp:a"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRewardUniquenessAndCAS(t *testing.T) {
	store := New()
	ctx := context.Background()

	reward := &models.Reward{ID: uuid.New(), CreatorID: 1, Milestone: 5000, Status: models.REWARD_STATUS_PENDING}
	inserted, err := store.InsertReward(ctx, reward)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.InsertReward(ctx, &models.Reward{ID: uuid.New(), CreatorID: 1, Milestone: 5000})
	require.NoError(t, err)
	assert.False(t, inserted)

	milestones, err := store.RewardedMilestones(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{5000}, milestones)

	updated := *reward
	updated.Status = models.REWARD_STATUS_ADDRESS_SUBMITTED
	updated.ShippingInfo = &models.ShippingInfo{City: "Springfield"}
	ok, err := store.UpdateRewardState(ctx, &updated, models.REWARD_STATUS_PENDING)
	require.NoError(t, err)
	assert.True(t, ok)

	// stale expectation loses
	ok, err = store.UpdateRewardState(ctx, &updated, models.REWARD_STATUS_PENDING)
	require.NoError(t, err)
	assert.False(t, ok)

	// returned copies do not alias the stored row
	found, err := store.FindRewardByID(ctx, reward.ID)
	require.NoError(t, err)
	found.ShippingInfo.City = "Shelbyville"
	again, err := store.FindRewardByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", again.ShippingInfo.City)
}

func TestBadgesAreASet(t *testing.T) {
	store := New()
	ctx := context.Background()

	granted, err := store.InsertBadge(ctx, &models.CreatorBadge{CreatorID: 1, Kind: models.BADGE_ROOKIE})
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = store.InsertBadge(ctx, &models.CreatorBadge{CreatorID: 1, Kind: models.BADGE_ROOKIE})
	require.NoError(t, err)
	assert.False(t, granted)

	badges, err := store.ListBadges(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, badges, 1)
}

func TestRaiseCreatorDownloadsNeverLowers(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.InsertCreator(ctx, &models.Creator{ID: 1}))

	creator, err := store.RaiseCreatorDownloads(ctx, 1, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 30, creator.TotalDownloads)

	creator, err = store.RaiseCreatorDownloads(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 30, creator.TotalDownloads)

	_, err = store.RaiseCreatorDownloads(ctx, 2, 10)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListDownloadCountsFromTime(t *testing.T) {
	store := New()
	ctx := context.Background()
	componentID := seed(t, store, 1)

	old := time.Now().Add(-14 * 24 * time.Hour)
	_, err := store.CreditDownload(ctx, &models.DownloadEvent{ComponentID: componentID, IdentityKey: "fp:old", DownloadedAt: old})
	require.NoError(t, err)
	_, err = store.CreditDownload(ctx, &models.DownloadEvent{ComponentID: componentID, IdentityKey: "fp:new"})
	require.NoError(t, err)

	counts, err := store.ListDownloadCountsFromTime(ctx, time.Now().Add(-time.Hour), 10, 0)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.EqualValues(t, 1, counts[0].Downloads)

	counts, err = store.ListDownloadCountsFromTime(ctx, time.Now().Add(-time.Hour), 10, 1)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestConfig(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.GetConfigByKey(ctx, "LEADERBOARD_LIMIT")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	store.SetConfig("LEADERBOARD_LIMIT", "5")
	config, err := store.GetConfigByKey(ctx, "LEADERBOARD_LIMIT")
	require.NoError(t, err)
	assert.Equal(t, "5", config.Value)
}

func TestCreditDownloadWithMissingOwner(t *testing.T) {
	store := New()
	ctx := context.Background()

	ghost := int64(404)
	componentID := uuid.New()
	store.PutComponent(models.Component{ID: componentID, CreatorID: &ghost, Name: "Card"})

	result, err := store.CreditDownload(ctx, &models.DownloadEvent{ID: uuid.New(), ComponentID: componentID, IdentityKey: "fp:a"})
	require.NoError(t, err)
	assert.True(t, result.Credited)
	assert.Nil(t, result.Owner)
	assert.EqualValues(t, 1, result.Component.Downloads)
}
