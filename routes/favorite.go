package routes

import (
	"github.com/mnq11/airbnb-sub000/models"
	"github.com/mnq11/airbnb-sub000/storage"
	"github.com/mnq11/airbnb-sub000/utils"

	"github.com/kataras/iris/v12"
)

func AddFavorite(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	listingID, err := ctx.Params().GetUint("listingID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid listing ID", ctx)
		return
	}

	user, favErr := booking.AddFavorite(ctx.Request().Context(), userID, listingID)
	if favErr != nil {
		handleServiceError(favErr, ctx)
		return
	}

	ctx.JSON(user)
}

func RemoveFavorite(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	listingID, err := ctx.Params().GetUint("listingID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid listing ID", ctx)
		return
	}

	user, favErr := booking.RemoveFavorite(ctx.Request().Context(), userID, listingID)
	if favErr != nil {
		handleServiceError(favErr, ctx)
		return
	}

	ctx.JSON(user)
}

// GetFavoriteListings resolves the user's favorite ids to full listings,
// preserving insertion order. No favorites is an empty list, not an error.
func GetFavoriteListings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	favorites := user.Favorites()
	if len(favorites) == 0 {
		ctx.JSON([]models.Listing{})
		return
	}

	var listings []models.Listing
	res := storage.DB.Where("id IN ?", []uint(favorites)).Find(&listings)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// The store returns rows in arbitrary order; restore insertion order.
	byID := make(map[uint]models.Listing, len(listings))
	for _, listing := range listings {
		byID[listing.ID] = listing
	}
	ordered := make([]models.Listing, 0, len(listings))
	for _, id := range favorites {
		if listing, ok := byID[id]; ok {
			ordered = append(ordered, listing)
		}
	}

	ctx.JSON(ordered)
}
