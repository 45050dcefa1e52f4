package services

import (
	"github.com/samber/do"
)

// Provide registers every service on the injector. Infrastructure (store,
// redis clients, caches, limiter, redsync) must be provided by the caller.
func Provide(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ServiceConfig, error) {
		return NewServiceConfig(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceReward, error) {
		return NewServiceReward(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceGamification, error) {
		return NewServiceGamification(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceMilestone, error) {
		return NewServiceMilestone(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceLeaderboard, error) {
		return NewServiceLeaderboard(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceDownload, error) {
		return NewServiceDownload(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceCreator, error) {
		return NewServiceCreator(i)
	})
}
