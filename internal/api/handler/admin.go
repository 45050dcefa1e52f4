package handler

import (
	"strconv"

	"github.com/Maheshwickramage/S3learnUID/internal/api"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAdmin struct {
	container *do.Injector
}

// pageParams turns page/limit query values into limit and offset. Missing or
// unusable values fall back to page 0 and defaultLimit; limit is capped at 100.
func pageParams(pageStr, limitStr string, defaultLimit int) (int, int) {
	limit := defaultLimit
	//if page or limit is empty, set default value
	if limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)

		if limit <= 0 {
			limit = defaultLimit
		}
		if limit > 100 {
			limit = 100
		}
	}

	page, _ := strconv.Atoi(pageStr)
	if page < 0 {
		page = 0
	}

	return limit, page * limit
}

func (gr *groupAdmin) ListRewards(c echo.Context) error {
	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	operator, err := ResolveOperator(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit, offset := pageParams(c.QueryParam("page"), c.QueryParam("limit"), services.ADMIN_REWARDS_DEFAULT_LIMIT)

	status := models.RewardStatus(c.QueryParam("status"))
	rewards, err := serviceReward.ListForFulfillment(ctx, operator, status, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, rewards, nil)
}

func (gr *groupAdmin) UpdateFulfillment(c echo.Context) error {
	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	operator, err := ResolveOperator(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	rewardID, err := parseUUIDParam(c, "id")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.FulfillmentRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	reward, err := serviceReward.UpdateFulfillment(ctx, rewardID, operator, payload.Update())
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, reward, nil)
}

func (gr *groupAdmin) AdjustDownloads(c echo.Context) error {
	serviceCreator, err := do.Invoke[*services.ServiceCreator](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	operator, err := ResolveOperator(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	creatorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	var payload api.AdjustDownloadsRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	check, err := serviceCreator.AdjustDownloads(ctx, operator, creatorID, payload.TotalDownloads)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, check, nil)
}
