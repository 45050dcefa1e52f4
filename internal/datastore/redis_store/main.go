package redis_store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const REWARD_INBOX_MAX_LENGTH = 50

func dbKeyLeaderboard(name string) string {
	return fmt.Sprintf("leaderboard:%s", strings.ToLower(name))
}

func dbKeyRewardInbox(creatorID int64) string {
	return fmt.Sprintf("creator:%d:reward_inbox", creatorID)
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, v *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	err := cmd.ZAdd(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  v.Score,
		Member: v.CreatorID,
	}).Err()

	if err != nil {
		return nil, err
	}

	return v, nil
}

// SetLeaderboardIfGreater never moves a creator down; concurrent credits may
// arrive out of order.
func SetLeaderboardIfGreater(ctx context.Context, cmd redis.Cmdable, name string, v *models.LeaderboardItem) error {
	return cmd.ZAddGT(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  v.Score,
		Member: v.CreatorID,
	}).Err()
}

func IncrLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, creatorID int64, delta float64) (float64, error) {
	return cmd.ZIncrBy(ctx, dbKeyLeaderboard(name), delta, strconv.FormatInt(creatorID, 10)).Result()
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	err := cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
	if err != nil {
		return err
	}

	return nil
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, num int) ([]*models.LeaderboardItem, error) {
	// num always greater than 0
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(name), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		id, _ := strconv.ParseInt(item.Member.(string), 10, 64)
		results = append(results, &models.LeaderboardItem{
			CreatorID: id,
			Score:     item.Score,
			Rank:      i + 1,
		})
	}

	return results, nil
}

func GetRank(ctx context.Context, cmd redis.Cmdable, name string, creatorID int64) (int64, error) {
	rank, err := cmd.ZRevRank(ctx, dbKeyLeaderboard(name), strconv.FormatInt(creatorID, 10)).Result()
	if err != nil {
		return 0, err
	}

	return rank, nil
}

func PushRewardNotification(ctx context.Context, cmd redis.Cmdable, creatorID int64, v *models.RewardNotification) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	key := dbKeyRewardInbox(creatorID)
	_, err = cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, b)
		pipe.LTrim(ctx, key, -REWARD_INBOX_MAX_LENGTH, -1)
		return nil
	})
	return err
}

// DrainRewardNotifications returns and removes every queued entry atomically.
func DrainRewardNotifications(ctx context.Context, cmd redis.Cmdable, creatorID int64) ([]*models.RewardNotification, error) {
	key := dbKeyRewardInbox(creatorID)

	var entries *redis.StringSliceCmd
	_, err := cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		entries = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]*models.RewardNotification, 0, len(entries.Val()))
	for _, entry := range entries.Val() {
		var v *models.RewardNotification
		if err := msgpack.Unmarshal([]byte(entry), &v); err != nil {
			return nil, err
		}
		results = append(results, v)
	}

	return results, nil
}
