package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthCreator ctxKey = "AUTH_CREATOR"

// Authn will NOT terminate a request without a token; an invalid token is rejected.
func Authn(verifier interface {
	Validate(token string) (*models.CreatorFromAuth, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, "Bearer")
			if len(parts) != 2 {
				return next(c)
			}

			token := strings.TrimSpace(parts[1])
			if len(token) == 0 {
				return next(c)
			}

			creator, err := verifier.Validate(token)
			if err != nil {
				// although it's a client error, we don't want to detailed information
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthCreator, creator)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAdmin terminates any request whose verified role is not admin.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			operator, err := ResolveOperator(c.Request().Context())
			if err != nil {
				return httpx.RestAbort(c, nil, err)
			}

			if !operator.IsAdmin() {
				return httpx.RestAbort(c, nil, serviceError(services.ErrForbidden))
			}

			return next(c)
		}
	}
}

func authCreator(ctx context.Context) (*models.CreatorFromAuth, bool) {
	creatorAuth, ok := ctx.Value(ctxKeyAuthCreator).(*models.CreatorFromAuth)
	return creatorAuth, ok
}

func ResolveValidCreator(ctx context.Context, container *do.Injector) (*models.Creator, error) {
	creatorAuth, ok := authCreator(ctx)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	serviceCreator, err := do.Invoke[*services.ServiceCreator](container)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	creator, err := serviceCreator.FindOrCreateCreator(ctx, creatorAuth)
	if err != nil {
		return nil, serviceError(err)
	}

	return creator, nil
}

func ResolveOperator(ctx context.Context) (*models.OperatorContext, error) {
	creatorAuth, ok := authCreator(ctx)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	return &models.OperatorContext{
		OperatorID: creatorAuth.ID,
		Role:       creatorAuth.Role,
	}, nil
}
