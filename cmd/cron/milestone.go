package main

import (
	"context"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

// MilestoneJob re-evaluates every creator so crossings missed by a failed
// request still produce their reward.
type MilestoneJob struct {
	serviceConfig  *services.ServiceConfig
	serviceCreator *services.ServiceCreator
}

func NewMilestoneJob(injector *do.Injector) (*MilestoneJob, error) {
	serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
	if err != nil {
		return nil, err
	}

	serviceCreator, err := do.Invoke[*services.ServiceCreator](injector)
	if err != nil {
		return nil, err
	}

	return &MilestoneJob{
		serviceConfig:  serviceConfig,
		serviceCreator: serviceCreator,
	}, nil
}

func (j *MilestoneJob) Start(cronRunner *cron.Cron) error {
	timeline, err := j.serviceConfig.GetStringConfig(context.Background(), services.CONFIG_CRONJOB_TIME_MILESTONE_SWEEP, "@every 1h")
	if err != nil {
		return err
	}

	if _, err := cronRunner.AddFunc(timeline, j.runScheduledTask); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"cron": timeline}).Info("Milestone sweep cronjob scheduled")
	return nil
}

func (j *MilestoneJob) runScheduledTask() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	created, err := j.serviceCreator.SweepMilestones(ctx)
	if err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Error("Milestone sweep failed")
		return
	}
	logger.WithFields(logrus.Fields{"created": created, "took": time.Since(start).String()}).Info("Milestone sweep done")
}
