package handler

import (
	"github.com/Maheshwickramage/S3learnUID/internal/api"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupReward struct {
	container *do.Injector
}

func (gr *groupReward) SubmitShipping(c echo.Context) error {
	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	creator, err := ResolveValidCreator(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	rewardID, err := parseUUIDParam(c, "id")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.ShippingRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	reward, err := serviceReward.SubmitShipping(ctx, rewardID, creator.ID, payload.ShippingInfo)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, reward, nil)
}
