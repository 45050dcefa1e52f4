package handler

import (
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupCreator struct {
	container *do.Injector
}

func (gr *groupCreator) Me(c echo.Context) error {
	creator, err := ResolveValidCreator(c.Request().Context(), gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, creator, nil)
}

func (gr *groupCreator) Profile(c echo.Context) error {
	serviceCreator, err := do.Invoke[*services.ServiceCreator](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	profile, err := serviceCreator.GetPublicProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, profile, nil)
}

func (gr *groupCreator) Stats(c echo.Context) error {
	serviceCreator, err := do.Invoke[*services.ServiceCreator](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	creator, err := ResolveValidCreator(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	stats, err := serviceCreator.GetStats(ctx, creator.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, stats, nil)
}

func (gr *groupCreator) Upload(c echo.Context) error {
	serviceCreator, err := do.Invoke[*services.ServiceCreator](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	creator, err := ResolveValidCreator(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload models.ComponentUpload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	result, err := serviceCreator.RecordUpload(ctx, creator.ID, payload)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupCreator) Rewards(c echo.Context) error {
	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	creator, err := ResolveValidCreator(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	rewards, err := serviceReward.ListByCreator(ctx, creator.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, rewards, nil)
}

// NewRewards drains the popup feed; each entry is returned once.
func (gr *groupCreator) NewRewards(c echo.Context) error {
	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	creator, err := ResolveValidCreator(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	notifications, err := serviceReward.DrainInbox(ctx, creator.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, notifications, nil)
}

func (gr *groupCreator) CheckMilestones(c echo.Context) error {
	serviceMilestone, err := do.Invoke[*services.ServiceMilestone](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	creator, err := ResolveValidCreator(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if err := serviceMilestone.AllowCheckMilestones(ctx, creator.ID); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	check, err := serviceMilestone.CheckMilestones(ctx, creator.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, check, nil)
}
