package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/Maheshwickramage/S3learnUID/internal/interfaces"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/caching"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

type configKind int

const (
	configPositiveInt configKind = iota
	configSchedule
)

var editableConfigs = map[string]configKind{
	CONFIG_CHECK_MILESTONES_RATE_LIMIT_PER_MINUTE: configPositiveInt,
	CONFIG_LEADERBOARD_LIMIT:                      configPositiveInt,
	CONFIG_CRONJOB_TIME_MILESTONE_SWEEP:           configSchedule,
	CONFIG_CRONJOB_TIME_WEEKLY_RESET:              configSchedule,
}

type ServiceConfig struct {
	container     *do.Injector
	store         interfaces.Store
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readOnlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, store, cache, readOnlyCache}, nil
}

func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := service.store.GetConfigByKey(ctx, key)
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	callback := func() (int, error) {
		config, err := service.store.GetConfigByKey(ctx, key)
		if err != nil {
			return defaultValue, err
		}

		intValue, err := strconv.Atoi(config.Value)
		if err != nil {
			return defaultValue, err
		}

		return intValue, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

// EditConfig stores a new value for one of the known keys and drops the
// cached copy. Schedules only take effect when the cron process restarts.
func (service *ServiceConfig) EditConfig(ctx context.Context, operator *models.OperatorContext, key string, value string) (*models.Config, error) {
	if !operator.IsAdmin() {
		return nil, ErrForbidden
	}

	value = strings.TrimSpace(value)
	kind, ok := editableConfigs[key]
	if !ok {
		return nil, validationError("unknown config key %q", key)
	}

	switch kind {
	case configPositiveInt:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, validationError("%s must be a positive integer", key)
		}
	case configSchedule:
		if _, err := cron.ParseStandard(value); err != nil {
			return nil, validationError("%s: %s", key, err)
		}
	}

	config := &models.Config{Key: key, Value: value}
	if err := service.store.EditConfig(ctx, config); err != nil {
		return nil, persistenceError(err)
	}

	if err := service.cache.Delete(ctx, DBKeyConfig(key)); err != nil {
		logger.WithFields(logrus.Fields{"key": key}).Warn("config cache delete failed: ", err)
	}

	logger.WithFields(logrus.Fields{"key": key, "value": value, "operator_id": operator.OperatorID}).Info("config edited")

	return config, nil
}
