package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/transfer"
	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
)

// handleError 把 domain 错误映射为应用错误码与 HTTP 状态码
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)
	httputil.ErrorResponse(c, toAppError(err))
}

func toAppError(err error) error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	switch {
	// 401
	case errors.Is(err, domain.ErrUnauthenticated):
		return apperrors.ErrUnauthorized
	case errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.ErrInvalidCredentials

	// 403
	case errors.Is(err, domain.ErrUserSuspended):
		return apperrors.ErrUserSuspended
	case errors.Is(err, domain.ErrForbidden):
		return apperrors.ErrForbidden

	// 404
	case errors.Is(err, domain.ErrSongNotFound):
		return apperrors.ErrSongNotFound
	case errors.Is(err, domain.ErrRequestNotFound):
		return apperrors.ErrRequestNotFound
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, domain.ErrFeedbackNotFound):
		return apperrors.ErrFeedbackNotFound
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.ErrNotFound

	// 409
	case errors.Is(err, domain.ErrInvalidState):
		return apperrors.ErrInvalidState
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return apperrors.ErrUserAlreadyExists

	// 400
	case errors.Is(err, domain.ErrIdentityMismatch):
		return apperrors.ErrIdentityMismatch
	case errors.Is(err, domain.ErrInvalidSongID),
		errors.Is(err, domain.ErrInvalidSongTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrInvalidBuilding),
		errors.Is(err, domain.ErrInvalidFeedbackType),
		errors.Is(err, domain.ErrEmptyFeedback),
		errors.Is(err, transfer.ErrUnsupportedFormat):
		return apperrors.ErrValidationFailed.WithMessage(err.Error())

	// 503，不重试
	case errors.Is(err, domain.ErrBackendUnavailable):
		return apperrors.ErrServiceUnavailable.WithError(err)
	}

	return apperrors.ErrInternal.WithError(err)
}
