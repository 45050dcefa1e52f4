package handler

import (
	"errors"

	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// serviceError translates service sentinels into toolkit error kinds.
func serviceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrNotFound):
		return errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, services.ErrValidation):
		return errorx.Wrap(err, errorx.Validation)
	case errors.Is(err, services.ErrInvalidState):
		return errorx.Wrap(err, errorx.Invalid)
	case errors.Is(err, services.ErrForbidden):
		return errorx.Wrap(err, errorx.Authn)
	default:
		return errorx.Wrap(err, errorx.Service)
	}
}
