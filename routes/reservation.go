package routes

import (
	"log"
	"strconv"
	"time"

	"github.com/mnq11/airbnb-sub000/models"
	"github.com/mnq11/airbnb-sub000/storage"
	"github.com/mnq11/airbnb-sub000/utils"

	"github.com/kataras/iris/v12"
)

type CreateReservationInput struct {
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

func CreateReservation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	listingIDStr := ctx.Params().Get("id")

	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	listingID, parseErr := strconv.ParseUint(listingIDStr, 10, 64)
	if parseErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid listing ID", ctx)
		return
	}

	reservation, err := booking.CreateReservation(ctx.Request().Context(), uint(listingID), userID, input.StartDate, input.EndDate)
	if err != nil {
		handleServiceError(err, ctx)
		return
	}

	// Echo back with relationships for the client. A failed reload still
	// returns the created row, just without the preloads.
	if err := storage.DB.Preload("Listing").Preload("User").First(reservation, reservation.ID).Error; err != nil {
		log.Printf("reloading reservation %d: %v", reservation.ID, err)
	}

	if reservation.Listing != nil {
		notifier.ReservationCreated(reservation, reservation.Listing)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(reservation)
}

func CancelReservation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	reservationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid reservation ID", ctx)
		return
	}

	var reservation models.Reservation
	storage.DB.First(&reservation, reservationID)

	if cancelErr := booking.CancelReservation(ctx.Request().Context(), reservationID, userID); cancelErr != nil {
		handleServiceError(cancelErr, ctx)
		return
	}

	if reservation.ID != 0 {
		notifier.ReservationCancelled(&reservation)
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// GetUserReservations returns the user's trips, newest first.
func GetUserReservations(ctx iris.Context) {
	userID := ctx.Params().Get("id")

	var reservations []models.Reservation
	res := storage.DB.Preload("Listing").Where("user_id = ?", userID).Order("created_at DESC").Find(&reservations)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(reservations)
}

// GetListingReservations returns all bookings against a listing, for the
// host's reservations page and for greying out booked dates.
func GetListingReservations(ctx iris.Context) {
	listingID := ctx.Params().Get("id")

	var reservations []models.Reservation
	res := storage.DB.Preload("User").Where("listing_id = ?", listingID).Order("start_date ASC").Find(&reservations)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(reservations)
}

type CheckAvailabilityInput struct {
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

// CheckAvailability reports whether a range is free on a listing and which
// reservations block it.
func CheckAvailability(ctx iris.Context) {
	listingIDStr := ctx.Params().Get("id")

	var input CheckAvailabilityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	listingID, parseErr := strconv.ParseUint(listingIDStr, 10, 64)
	if parseErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid listing ID", ctx)
		return
	}

	availability, err := booking.CheckAvailability(ctx.Request().Context(), uint(listingID), input.StartDate, input.EndDate)
	if err != nil {
		handleServiceError(err, ctx)
		return
	}

	ctx.JSON(availability)
}
