package handler

import (
	"net/http"

	"github.com/Maheshwickramage/S3learnUID/internal/api"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, api.HeaderFingerprint},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.

		co := groupComponent{cfg.Container}
		routesAPIv1.GET("/components/:id", co.Show)
		routesAPIv1.POST("/components/:id/download", co.Download)

		routesAPIv1Me := routesAPIv1.Group("/creator/me")
		{
			m := groupCreator{cfg.Container}
			routesAPIv1Me.GET("", m.Me)
			routesAPIv1Me.GET("/stats", m.Stats)
			routesAPIv1Me.POST("/components", m.Upload)
			routesAPIv1Me.GET("/rewards", m.Rewards)
			routesAPIv1Me.GET("/rewards/new", m.NewRewards)
			routesAPIv1Me.GET("/check-milestones", m.CheckMilestones)
		}

		p := groupCreator{cfg.Container}
		routesAPIv1.GET("/creators/:username", p.Profile)

		rw := groupReward{cfg.Container}
		routesAPIv1.POST("/rewards/:id/shipping", rw.SubmitShipping)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/creators", l.GetCreatorsLeaderboard)
		routesAPIv1.GET("/leaderboard/creators/weekly", l.GetWeeklyCreatorsLeaderboard)

		routesAPIv1Admin := routesAPIv1.Group("/admin")
		routesAPIv1Admin.Use(RequireAdmin())
		{
			a := groupAdmin{cfg.Container}
			routesAPIv1Admin.GET("/rewards", a.ListRewards)
			routesAPIv1Admin.PUT("/rewards/:id/fulfillment", a.UpdateFulfillment)
			routesAPIv1Admin.POST("/creators/:id/downloads", a.AdjustDownloads)
		}
	}

	return r, nil
}
