package api

import (
	"context"

	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/notify"
)

// NoticeFor maps a classified error to the notice a user should see. Context
// cancellation produces no notice.
func NoticeFor(err error) (notify.Notice, bool) {
	if err == nil || inverrors.Is(err, context.Canceled) {
		return notify.Notice{}, false
	}

	var (
		unauthorized *UnauthorizedError
		validation   *ValidationError
		network      *NetworkError
	)
	switch {
	case inverrors.As(err, &unauthorized):
		return notify.Notice{Level: notify.LevelWarning, Category: notify.CategorySession, Message: SessionExpiredMessage}, true
	case inverrors.As(err, &validation):
		return notify.Notice{Level: notify.LevelError, Category: notify.CategoryValidation, Message: validation.Summary()}, true
	case inverrors.As(err, &network):
		return notify.Notice{Level: notify.LevelError, Category: notify.CategoryConnection, Message: ConnectionProblemMessage}, true
	}
	return notify.Notice{Level: notify.LevelError, Category: notify.CategoryGeneral, Message: err.Error()}, true
}
