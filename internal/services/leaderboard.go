package services

import (
	"context"
	"fmt"

	"github.com/Maheshwickramage/S3learnUID/internal/datastore/redis_store"
	"github.com/Maheshwickramage/S3learnUID/internal/interfaces"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/caching"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

const leaderboardRebuildPageSize = 100

type ServiceLeaderboard struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	redisDBCache  redis.UniversalClient
	store         interfaces.Store
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache

	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	dbRedisCache, err := do.InvokeNamed[redis.UniversalClient](container, "redis-cache")
	if err != nil {
		return nil, err
	}

	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, db, dbRedisCache, store, cache, readonlyCache, serviceConfig}, nil
}

func (service *ServiceLeaderboard) GetCreatorsLeaderboard(ctx context.Context) (*models.LeaderboardResponse, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)
	return service.getLeaderboard(ctx, LEADERBOARD_CREATORS, limit)
}

func (service *ServiceLeaderboard) GetWeeklyCreatorsLeaderboard(ctx context.Context) (*models.LeaderboardResponse, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)
	return service.getLeaderboard(ctx, LEADERBOARD_CREATORS_WEEKLY, limit)
}

// RecordCredit projects one credited download onto both boards. The overall
// score is the authoritative total and only ever moves up.
func (service *ServiceLeaderboard) RecordCredit(ctx context.Context, creator *models.Creator) error {
	err := redis_store.SetLeaderboardIfGreater(ctx, service.redisDB, LEADERBOARD_CREATORS, &models.LeaderboardItem{
		CreatorID: creator.ID,
		Score:     float64(creator.TotalDownloads),
	})
	if err != nil {
		return err
	}

	_, err = redis_store.IncrLeaderboard(ctx, service.redisDB, LEADERBOARD_CREATORS_WEEKLY, creator.ID, 1)
	return err
}

func (service *ServiceLeaderboard) UpdateCreatorTotal(ctx context.Context, creator *models.Creator) error {
	return redis_store.SetLeaderboardIfGreater(ctx, service.redisDB, LEADERBOARD_CREATORS, &models.LeaderboardItem{
		CreatorID: creator.ID,
		Score:     float64(creator.TotalDownloads),
	})
}

func (service *ServiceLeaderboard) ClearLeaderboardCache(ctx context.Context, name string) error {
	return caching.DeleteKeys(ctx, service.redisDBCache, fmt.Sprintf("leaderboard_page:%s:*", name))
}

func (service *ServiceLeaderboard) ResetWeekly(ctx context.Context) error {
	if err := redis_store.ClearLeaderboard(ctx, service.redisDB, LEADERBOARD_CREATORS_WEEKLY); err != nil {
		return err
	}

	return service.ClearLeaderboardCache(ctx, LEADERBOARD_CREATORS_WEEKLY)
}

// Rebuild reloads both boards from postgres.
func (service *ServiceLeaderboard) Rebuild(ctx context.Context) error {
	for offset := 0; ; offset += leaderboardRebuildPageSize {
		ids, err := service.store.ListCreatorIDs(ctx, leaderboardRebuildPageSize, offset)
		if err != nil {
			return persistenceError(err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			creator, err := service.store.FindCreatorByID(ctx, id)
			if err != nil {
				return storeError(err, "creator")
			}

			_, err = redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_CREATORS, &models.LeaderboardItem{
				CreatorID: creator.ID,
				Score:     float64(creator.TotalDownloads),
			})
			if err != nil {
				return err
			}
		}
	}

	if err := redis_store.ClearLeaderboard(ctx, service.redisDB, LEADERBOARD_CREATORS_WEEKLY); err != nil {
		return err
	}

	weekStart := pkg.GetFirstTimeOfCurrentWeek()
	for offset := 0; ; offset += leaderboardRebuildPageSize {
		counts, err := service.store.ListDownloadCountsFromTime(ctx, weekStart, leaderboardRebuildPageSize, offset)
		if err != nil {
			return persistenceError(err)
		}
		if len(counts) == 0 {
			break
		}

		for _, count := range counts {
			_, err = redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_CREATORS_WEEKLY, &models.LeaderboardItem{
				CreatorID: count.CreatorID,
				Score:     float64(count.Downloads),
			})
			if err != nil {
				return err
			}
		}
	}

	logger.WithFields(logrus.Fields{"week_start": weekStart}).Info("creator leaderboards rebuilt")

	//nolint:errcheck
	service.ClearLeaderboardCache(ctx, LEADERBOARD_CREATORS)
	//nolint:errcheck
	service.ClearLeaderboardCache(ctx, LEADERBOARD_CREATORS_WEEKLY)

	return nil
}

func (service *ServiceLeaderboard) getLeaderboard(ctx context.Context, name string, limit int) (*models.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = LEADERBOARD_DEFAULT_LIMIT
	}

	callback := func() (*models.LeaderboardResponse, error) {
		leaderboard, err := redis_store.GetLeaderboard(ctx, service.redisDB, name, limit)
		if err != nil {
			return nil, err
		}

		for _, item := range leaderboard {
			creator, _ := service.store.FindCreatorByID(ctx, item.CreatorID)
			if creator == nil {
				continue
			}
			item.Username = creator.Username
			if item.Username == "" {
				item.Username = creator.DisplayName
			}
		}

		if leaderboard == nil {
			leaderboard = []*models.LeaderboardItem{}
		}

		return &models.LeaderboardResponse{Leaderboard: leaderboard}, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboard(name, limit), CACHE_TTL_1_MIN, callback)
}
