package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/Maheshwickramage/S3learnUID/internal/container"
	"github.com/Maheshwickramage/S3learnUID/internal/datastore"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
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

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func getDb() (*bun.DB, error) {
	vs, err := env.EnvsRequired("DB_DSN")
	if err != nil {
		return nil, err
	}

	return container.OpenDB(vs["DB_DSN"], os.Getenv("DB_PASSWORD")), nil
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Description: "Create tables and indexes",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			steps := []func(context.Context, *bun.DB) error{
				datastore.CreateTableConfig,
				datastore.CreateTableCreator,
				datastore.CreateTableComponent,
				datastore.CreateTableDownloadEvent,
				datastore.CreateTableCreatorBadge,
				datastore.CreateTableReward,
			}
			for _, step := range steps {
				if err := step(ctx, db); err != nil {
					return err
				}
			}

			log.Println("Migration done")
			return nil
		},
	}
}

func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			configs := []models.Config{
				{Key: services.CONFIG_CHECK_MILESTONES_RATE_LIMIT_PER_MINUTE, Value: strconv.Itoa(services.CHECK_MILESTONES_DEFAULT_RATE_LIMIT_PER_MINUTE)},
				{Key: services.CONFIG_LEADERBOARD_LIMIT, Value: strconv.Itoa(services.LEADERBOARD_DEFAULT_LIMIT)},
				{Key: services.CONFIG_CRONJOB_TIME_MILESTONE_SWEEP, Value: "@every 1h"},
				{Key: services.CONFIG_CRONJOB_TIME_WEEKLY_RESET, Value: "0 0 * * 1"},
			}

			for i := range configs {
				if err := datastore.UpsertConfig(ctx, db, &configs[i]); err != nil {
					return err
				}
			}

			log.Println("Config migration done")
			return nil
		},
	}
}
