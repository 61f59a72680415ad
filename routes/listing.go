package routes

import (
	"log"
	"strings"
	"time"

	"github.com/mnq11/airbnb-sub000/models"
	"github.com/mnq11/airbnb-sub000/storage"
	"github.com/mnq11/airbnb-sub000/utils"

	"github.com/kataras/iris/v12"
)

type CreateListingInput struct {
	Title         string `json:"title" validate:"required,max=256"`
	Description   string `json:"description" validate:"required"`
	ImageSrc      string `json:"imageSrc"`
	Category      string `json:"category" validate:"required"`
	LocationValue string `json:"locationValue" validate:"required"`
	GuestCount    int    `json:"guestCount" validate:"required,gte=1"`
	RoomCount     int    `json:"roomCount" validate:"required,gte=1"`
	BathroomCount int    `json:"bathroomCount" validate:"required,gte=1"`
	Price         int    `json:"price" validate:"required,gt=0"`
}

func CreateListing(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	listing := models.Listing{
		OwnerID:       &userID,
		Title:         input.Title,
		Description:   input.Description,
		ImageSrc:      input.ImageSrc,
		Category:      input.Category,
		LocationValue: input.LocationValue,
		GuestCount:    input.GuestCount,
		RoomCount:     input.RoomCount,
		BathroomCount: input.BathroomCount,
		Price:         input.Price,
	}

	if err := storage.DB.Create(&listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&listing)
}

// GetListing returns one listing with its owner. Each fetch also bumps the
// view counter; that path is telemetry only and must never fail the page.
func GetListing(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var listing models.Listing
	if err := storage.DB.Preload("Owner").First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if err := booking.IncrementView(ctx.Request().Context(), listing.ID); err != nil {
		log.Printf("view counter for listing %d: %v", listing.ID, err)
	} else {
		listing.ViewCounter++
	}

	// MarshalJSON has a pointer receiver; marshaling the value would skip it.
	ctx.JSON(&listing)
}

// GetUserListings returns the authenticated user's own properties.
func GetUserListings(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var listings []models.Listing
	res := storage.DB.Where("owner_id = ?", id).Order("created_at DESC").Find(&listings)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(listings)
}

func DeleteListing(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if listing.OwnerID == nil || *listing.OwnerID != userID {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Delete(&listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// SearchListings filters by category, location, capacity, price and date
// availability. All predicates run in the store; the date filter excludes any
// listing with a reservation overlapping the requested range (closed-interval
// policy, same as the booking engine).
func SearchListings(ctx iris.Context) {
	q := storage.DB.Model(&models.Listing{})

	if category := strings.TrimSpace(ctx.URLParam("category")); category != "" {
		q = q.Where("category = ?", category)
	}
	if location := strings.TrimSpace(ctx.URLParam("locationValue")); location != "" {
		q = q.Where("location_value = ?", location)
	}
	if guestCount, err := ctx.URLParamInt("guestCount"); err == nil && guestCount > 0 {
		q = q.Where("guest_count >= ?", guestCount)
	}
	if roomCount, err := ctx.URLParamInt("roomCount"); err == nil && roomCount > 0 {
		q = q.Where("room_count >= ?", roomCount)
	}
	if bathroomCount, err := ctx.URLParamInt("bathroomCount"); err == nil && bathroomCount > 0 {
		q = q.Where("bathroom_count >= ?", bathroomCount)
	}
	if minPrice, err := ctx.URLParamInt("minPrice"); err == nil && minPrice > 0 {
		q = q.Where("price >= ?", minPrice)
	}
	if maxPrice, err := ctx.URLParamInt("maxPrice"); err == nil && maxPrice > 0 {
		q = q.Where("price <= ?", maxPrice)
	}

	startDate, startOk := parseDateParam(ctx.URLParam("startDate"))
	endDate, endOk := parseDateParam(ctx.URLParam("endDate"))
	if startOk && endOk && startDate.Before(endDate) {
		q = q.Where(
			"NOT EXISTS (SELECT 1 FROM reservations r WHERE r.listing_id = listings.id AND r.deleted_at IS NULL AND r.start_date <= ? AND r.end_date >= ?)",
			endDate, startDate,
		)
	}

	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("perPage", 20)
	if perPage < 1 || perPage > 50 {
		perPage = 20
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var listings []models.Listing
	res := q.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&listings)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, listings, page, perPage, total)
}

// parseDateParam accepts RFC 3339 timestamps or plain dates.
func parseDateParam(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
