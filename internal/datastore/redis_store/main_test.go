package redis_store

import (
	"context"
	"testing"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) redis.UniversalClient {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestLeaderboard(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	_, err := SetLeaderboard(ctx, client, "creators", &models.LeaderboardItem{CreatorID: 1, Score: 10})
	require.NoError(t, err)
	require.NoError(t, SetLeaderboardIfGreater(ctx, client, "creators", &models.LeaderboardItem{CreatorID: 2, Score: 20}))

	// a stale lower total does not move creator 2 down
	require.NoError(t, SetLeaderboardIfGreater(ctx, client, "creators", &models.LeaderboardItem{CreatorID: 2, Score: 5}))

	items, err := GetLeaderboard(ctx, client, "creators", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.EqualValues(t, 2, items[0].CreatorID)
	assert.EqualValues(t, 20, items[0].Score)
	assert.Equal(t, 1, items[0].Rank)
	assert.EqualValues(t, 1, items[1].CreatorID)

	score, err := IncrLeaderboard(ctx, client, "creators", 1, 15)
	require.NoError(t, err)
	assert.EqualValues(t, 25, score)

	rank, err := GetRank(ctx, client, "creators", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rank)

	items, err = GetLeaderboard(ctx, client, "creators", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, ClearLeaderboard(ctx, client, "creators"))
	items, err = GetLeaderboard(ctx, client, "creators", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRewardInbox(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < REWARD_INBOX_MAX_LENGTH+5; i++ {
		require.NoError(t, PushRewardNotification(ctx, client, 1, &models.RewardNotification{
			Milestone: i,
			Kind:      models.REWARD_KIND_BADGE,
			CreatedAt: now,
		}))
	}
	require.NoError(t, PushRewardNotification(ctx, client, 2, &models.RewardNotification{Milestone: 100}))

	entries, err := DrainRewardNotifications(ctx, client, 1)
	require.NoError(t, err)
	require.Len(t, entries, REWARD_INBOX_MAX_LENGTH)
	assert.Equal(t, 5, entries[0].Milestone)
	assert.Equal(t, models.REWARD_KIND_BADGE, entries[0].Kind)
	assert.True(t, now.Equal(entries[0].CreatedAt))

	entries, err = DrainRewardNotifications(ctx, client, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = DrainRewardNotifications(ctx, client, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
