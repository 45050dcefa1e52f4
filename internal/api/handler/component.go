package handler

import (
	"errors"

	"github.com/Maheshwickramage/S3learnUID/internal/api"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupComponent struct {
	container *do.Injector
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errorx.Wrap(errors.New("invalid "+name), errorx.Invalid)
	}
	return id, nil
}

func (gr *groupComponent) Show(c echo.Context) error {
	serviceCreator, err := do.Invoke[*services.ServiceCreator](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	componentID, err := parseUUIDParam(c, "id")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	component, err := serviceCreator.GetComponent(c.Request().Context(), componentID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, component, nil)
}

// Download accepts a bearer token, a fingerprint, or both.
func (gr *groupComponent) Download(c echo.Context) error {
	serviceDownload, err := do.Invoke[*services.ServiceDownload](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	componentID, err := parseUUIDParam(c, "id")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	ctx := c.Request().Context()
	identity := models.DownloaderIdentity{
		Fingerprint: c.Request().Header.Get(api.HeaderFingerprint),
		IPAddress:   c.RealIP(),
		UserAgent:   c.Request().UserAgent(),
	}
	if identity.Fingerprint == "" {
		identity.Fingerprint = c.QueryParam("fingerprint")
	}
	if creatorAuth, ok := authCreator(ctx); ok {
		identity.UserID = &creatorAuth.ID
	}

	result, err := serviceDownload.RecordDownload(ctx, componentID, identity)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, result, nil)
}
