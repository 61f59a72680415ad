package routes

import (
	"errors"
	"log"

	"github.com/mnq11/airbnb-sub000/services"
	"github.com/mnq11/airbnb-sub000/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// Package-level service handles, constructed once at startup with the store
// injected. Handlers never build their own store clients.
var (
	booking  *services.BookingService
	notifier *services.NotificationService
)

func Initialize(db *gorm.DB) {
	booking = services.NewBookingService(db)
	notifier = services.NewNotificationService(db)
}

// handleServiceError maps engine sentinels onto HTTP statuses. Unrecognized
// errors are store failures: logged and surfaced as 500, never swallowed.
func handleServiceError(err error, ctx iris.Context) {
	switch {
	case errors.Is(err, services.ErrInvalidRange):
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
	case errors.Is(err, services.ErrNotFound):
		utils.CreateNotFound(ctx)
	case errors.Is(err, services.ErrConflict):
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
	case errors.Is(err, services.ErrForbidden):
		utils.CreateForbidden(ctx)
	default:
		log.Printf("store error: %v", err)
		utils.CreateInternalServerError(ctx)
	}
}
