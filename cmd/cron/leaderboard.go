package main

import (
	"context"

	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

// LeaderboardJob clears the weekly board on schedule and reloads both
// boards from postgres once at startup.
type LeaderboardJob struct {
	serviceConfig      *services.ServiceConfig
	serviceLeaderboard *services.ServiceLeaderboard
}

func NewLeaderboardJob(injector *do.Injector) (*LeaderboardJob, error) {
	serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
	if err != nil {
		return nil, err
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](injector)
	if err != nil {
		return nil, err
	}

	return &LeaderboardJob{
		serviceConfig:      serviceConfig,
		serviceLeaderboard: serviceLeaderboard,
	}, nil
}

func (j *LeaderboardJob) Start(cronRunner *cron.Cron) error {
	ctx := context.Background()
	timeline, err := j.serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_WEEKLY_RESET, "0 0 * * 1")
	if err != nil {
		return err
	}

	if _, err := cronRunner.AddFunc(timeline, j.runScheduledTask); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"cron": timeline}).Info("Leaderboard cronjob scheduled")

	if err := j.serviceLeaderboard.Rebuild(ctx); err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Error("Failed to rebuild leaderboards")
	}
	return nil
}

func (j *LeaderboardJob) runScheduledTask() {
	logger.Info("Start cleaning weekly leaderboard ...")
	if err := j.serviceLeaderboard.ResetWeekly(context.Background()); err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Error("Failed to reset weekly leaderboard")
		return
	}
	logger.Info("Weekly leaderboard cleaned")
}
