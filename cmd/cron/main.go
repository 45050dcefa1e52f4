package main

import (
	"log"
	"os"

	"github.com/Maheshwickramage/S3learnUID/internal/container"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

type CronJob interface {
	Start(cronRunner *cron.Cron) error
}

func main() {
	app := &cli.App{
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			vs, err := env.EnvsRequired("JWT_SECRET", "DB_DSN")
			if err != nil {
				return err
			}
			if err := logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Getenv("LOG_OUTPUT")); err != nil {
				return err
			}

			injector := container.New(vs)
			defer injector.Shutdown() //nolint:errcheck

			jobs, err := newJobs(injector)
			if err != nil {
				return err
			}

			cronRunner := cron.New()
			for _, job := range jobs {
				if err := job.Start(cronRunner); err != nil {
					return err
				}
			}

			logger.Info("Start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}

func newJobs(injector *do.Injector) ([]CronJob, error) {
	leaderboardJob, err := NewLeaderboardJob(injector)
	if err != nil {
		return nil, err
	}

	milestoneJob, err := NewMilestoneJob(injector)
	if err != nil {
		return nil, err
	}

	return []CronJob{leaderboardJob, milestoneJob}, nil
}
