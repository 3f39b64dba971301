package services

import (
	apperrors "unistats/internal/errors"
)

// Dashboard errors
var (
	ErrUnknownDimension = apperrors.NewNotFoundError("dimension")
	ErrUnknownCategory  = apperrors.NewNotFoundError("category")
	ErrNotInteractive   = apperrors.NewAppValidationError("dimension is not interactive")

	// ErrRenderFailed is returned when the chart renderer rejects a chart.
	ErrRenderFailed = apperrors.ErrRenderFailed

	// ErrServiceUnavailable is returned when no chart renderer is configured.
	ErrServiceUnavailable = apperrors.ErrServiceUnavailable
)
