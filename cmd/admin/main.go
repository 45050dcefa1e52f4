package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/Maheshwickramage/S3learnUID/internal/container"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
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

func main() {
	app := &cli.App{
		Name:  "admin",
		Usage: "operator tools for rewards and download counters",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "operator",
				Value: 0,
				Usage: "operator creator id recorded with admin actions",
			},
		},
		Commands: []*cli.Command{
			commandAdjustDownloads(),
			commandCheckMilestones(),
			commandSetStatus(),
			commandListRewards(),
			commandRebuildLeaderboard(),
			commandIssueToken(),
			commandSetConfig(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newInjector() (*do.Injector, error) {
	vs, err := env.EnvsRequired("JWT_SECRET", "DB_DSN")
	if err != nil {
		return nil, err
	}
	return container.New(vs), nil
}

func operator(c *cli.Context) *models.OperatorContext {
	return &models.OperatorContext{
		OperatorID: c.Int64("operator"),
		Role:       models.ROLE_ADMIN,
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func commandAdjustDownloads() *cli.Command {
	return &cli.Command{
		Name:  "adjust-downloads",
		Usage: "raise a creator's download total and evaluate milestones",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "creator", Required: true},
			&cli.Int64Flag{Name: "total", Required: true},
		},
		Action: func(c *cli.Context) error {
			injector, err := newInjector()
			if err != nil {
				return err
			}

			serviceCreator, err := do.Invoke[*services.ServiceCreator](injector)
			if err != nil {
				return err
			}

			check, err := serviceCreator.AdjustDownloads(c.Context, operator(c), c.Int64("creator"), c.Int64("total"))
			if err != nil {
				return err
			}
			return printJSON(check)
		},
	}
}

func commandCheckMilestones() *cli.Command {
	return &cli.Command{
		Name:  "check-milestones",
		Usage: "reconcile one creator, or every creator when --creator is omitted",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "creator"},
		},
		Action: func(c *cli.Context) error {
			injector, err := newInjector()
			if err != nil {
				return err
			}

			serviceCreator, err := do.Invoke[*services.ServiceCreator](injector)
			if err != nil {
				return err
			}

			if !c.IsSet("creator") {
				created, err := serviceCreator.SweepMilestones(c.Context)
				if err != nil {
					return err
				}
				return printJSON(map[string]int64{"created": created})
			}

			check, err := serviceCreator.Reconcile(c.Context, c.Int64("creator"))
			if err != nil {
				return err
			}
			return printJSON(check)
		},
	}
}

func commandSetStatus() *cli.Command {
	return &cli.Command{
		Name:  "set-status",
		Usage: "move a reward through fulfillment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reward", Required: true},
			&cli.StringFlag{Name: "status", Required: true},
			&cli.StringFlag{Name: "tracking"},
			&cli.StringFlag{Name: "notes"},
		},
		Action: func(c *cli.Context) error {
			rewardID, err := uuid.Parse(c.String("reward"))
			if err != nil {
				return err
			}

			injector, err := newInjector()
			if err != nil {
				return err
			}

			serviceReward, err := do.Invoke[*services.ServiceReward](injector)
			if err != nil {
				return err
			}

			update := models.FulfillmentUpdate{Status: models.RewardStatus(c.String("status"))}
			if c.IsSet("tracking") {
				tracking := c.String("tracking")
				update.TrackingNumber = &tracking
			}
			if c.IsSet("notes") {
				notes := c.String("notes")
				update.Notes = &notes
			}

			reward, err := serviceReward.UpdateFulfillment(c.Context, rewardID, operator(c), update)
			if err != nil {
				return err
			}
			return printJSON(reward)
		},
	}
}

func commandListRewards() *cli.Command {
	return &cli.Command{
		Name:  "list-rewards",
		Usage: "list rewards awaiting fulfillment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status"},
			&cli.IntFlag{Name: "limit", Value: services.ADMIN_REWARDS_DEFAULT_LIMIT},
			&cli.IntFlag{Name: "offset"},
		},
		Action: func(c *cli.Context) error {
			injector, err := newInjector()
			if err != nil {
				return err
			}

			serviceReward, err := do.Invoke[*services.ServiceReward](injector)
			if err != nil {
				return err
			}

			rewards, err := serviceReward.ListForFulfillment(c.Context, operator(c), models.RewardStatus(c.String("status")), c.Int("limit"), c.Int("offset"))
			if err != nil {
				return err
			}
			return printJSON(rewards)
		},
	}
}

func commandRebuildLeaderboard() *cli.Command {
	return &cli.Command{
		Name:  "rebuild-leaderboard",
		Usage: "reload both creator leaderboards from postgres",
		Action: func(c *cli.Context) error {
			injector, err := newInjector()
			if err != nil {
				return err
			}

			serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](injector)
			if err != nil {
				return err
			}

			return serviceLeaderboard.Rebuild(c.Context)
		},
	}
}

func commandIssueToken() *cli.Command {
	return &cli.Command{
		Name:  "issue-token",
		Usage: "sign a bearer token for local testing",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Required: true},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "role", Value: models.ROLE_CREATOR},
		},
		Action: func(c *cli.Context) error {
			vs, err := env.EnvsRequired("JWT_SECRET")
			if err != nil {
				return err
			}

			authentication, err := services.NewAuthentication(vs["JWT_SECRET"])
			if err != nil {
				return err
			}

			token, err := authentication.CreateToken(&models.CreatorFromAuth{
				ID:       c.Int64("id"),
				Username: c.String("username"),
				Role:     c.String("role"),
			})
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"token": token})
		},
	}
}

func commandSetConfig() *cli.Command {
	return &cli.Command{
		Name:  "set-config",
		Usage: "change a runtime setting such as a rate limit or cron schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Required: true},
			&cli.StringFlag{Name: "value", Required: true},
		},
		Action: func(c *cli.Context) error {
			injector, err := newInjector()
			if err != nil {
				return err
			}

			serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
			if err != nil {
				return err
			}

			config, err := serviceConfig.EditConfig(c.Context, operator(c), c.String("key"), c.String("value"))
			if err != nil {
				return err
			}
			return printJSON(config)
		},
	}
}
