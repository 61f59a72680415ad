package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/mnq11/airbnb-sub000/models"
	"github.com/mnq11/airbnb-sub000/storage"
	"github.com/mnq11/airbnb-sub000/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// buildTestApp wires an in-memory store plus the reservation and favorite
// routes behind a real JWT verifier.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Listing{}, &models.Reservation{}, &models.Notification{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	storage.DB = db
	Initialize(db)

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	reservation := app.Party("/api/reservation")
	{
		reservation.Post("/listing/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, CreateReservation)
		reservation.Post("/listing/{id}/check", CheckAvailability)
		reservation.Delete("/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, CancelReservation)
	}
	favorite := app.Party("/api/favorite")
	{
		favorite.Post("/{listingID}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, AddFavorite)
		favorite.Delete("/{listingID}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, RemoveFavorite)
	}
	user := app.Party("/api/user")
	{
		user.Get("/me", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, GetCurrentUser)
	}
	notification := app.Party("/api/notification")
	{
		notification.Get("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, GetUserNotifications)
		notification.Patch("/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, MarkNotificationRead)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}
	return app
}

func signTestToken(t *testing.T, userID uint) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, err := signer.Sign(utils.AccessToken{ID: userID, Email: "guest@example.com"})
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return string(token)
}

func seedBookableListing(t *testing.T) (*models.User, *models.Listing) {
	t.Helper()

	owner := &models.User{Name: "Host", Email: "host@example.com"}
	if err := storage.DB.Create(owner).Error; err != nil {
		t.Fatalf("seeding owner: %v", err)
	}
	guest := &models.User{Name: "Guest", Email: "guest@example.com"}
	if err := storage.DB.Create(guest).Error; err != nil {
		t.Fatalf("seeding guest: %v", err)
	}
	listing := &models.Listing{
		OwnerID:       &owner.ID,
		Title:         "City Loft",
		Description:   "Downtown",
		Category:      "Modern",
		LocationValue: "DE",
		GuestCount:    2,
		RoomCount:     1,
		BathroomCount: 1,
		Price:         1000,
	}
	if err := storage.DB.Create(listing).Error; err != nil {
		t.Fatalf("seeding listing: %v", err)
	}
	return guest, listing
}

func doJSON(app *iris.Application, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestCreateReservationEndpoint(t *testing.T) {
	app := buildTestApp(t)
	guest, listing := seedBookableListing(t)
	token := signTestToken(t, guest.ID)
	path := fmt.Sprintf("/api/reservation/listing/%d", listing.ID)

	// No token -> rejected before the handler runs.
	resp := doJSON(app, http.MethodPost, path, "", `{"startDate":"2024-06-01T00:00:00Z","endDate":"2024-06-04T00:00:00Z"}`)
	if resp.Code == http.StatusCreated {
		t.Fatalf("expected auth failure without token, got %d", resp.Code)
	}

	// 3 nights at 1000.
	resp = doJSON(app, http.MethodPost, path, token, `{"startDate":"2024-06-01T00:00:00Z","endDate":"2024-06-04T00:00:00Z"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created models.Reservation
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.TotalPrice != 3000 {
		t.Fatalf("totalPrice = %d, want 3000", created.TotalPrice)
	}
	// The response carries the reloaded relationships.
	if created.Listing == nil || created.Listing.ID != listing.ID {
		t.Fatalf("expected listing relation in response, got %+v", created.Listing)
	}

	// Overlapping range -> 409.
	resp = doJSON(app, http.MethodPost, path, token, `{"startDate":"2024-06-03T00:00:00Z","endDate":"2024-06-05T00:00:00Z"}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for overlap, got %d", resp.Code)
	}

	// Boundary-touching range -> still 409 under the closed-interval policy.
	resp = doJSON(app, http.MethodPost, path, token, `{"startDate":"2024-06-04T00:00:00Z","endDate":"2024-06-06T00:00:00Z"}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for boundary overlap, got %d", resp.Code)
	}

	// Inverted range -> 400.
	resp = doJSON(app, http.MethodPost, path, token, `{"startDate":"2024-06-10T00:00:00Z","endDate":"2024-06-08T00:00:00Z"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", resp.Code)
	}

	// Missing listing -> 404.
	resp = doJSON(app, http.MethodPost, "/api/reservation/listing/9999", token, `{"startDate":"2024-06-01T00:00:00Z","endDate":"2024-06-04T00:00:00Z"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing listing, got %d", resp.Code)
	}
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	app := buildTestApp(t)
	guest, listing := seedBookableListing(t)
	token := signTestToken(t, guest.ID)

	createPath := fmt.Sprintf("/api/reservation/listing/%d", listing.ID)
	resp := doJSON(app, http.MethodPost, createPath, token, `{"startDate":"2024-06-01T00:00:00Z","endDate":"2024-06-04T00:00:00Z"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("seeding booking: got %d", resp.Code)
	}

	checkPath := fmt.Sprintf("/api/reservation/listing/%d/check", listing.ID)
	resp = doJSON(app, http.MethodPost, checkPath, "", `{"startDate":"2024-06-02T00:00:00Z","endDate":"2024-06-03T00:00:00Z"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var availability struct {
		Available bool `json:"available"`
		Blocking  []struct {
			StartDate string `json:"startDate"`
		} `json:"blockingRanges"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &availability); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if availability.Available {
		t.Fatal("expected booked range to be unavailable")
	}
	if len(availability.Blocking) != 1 {
		t.Fatalf("expected 1 blocking range, got %d", len(availability.Blocking))
	}
}

func TestFavoriteEndpoints(t *testing.T) {
	app := buildTestApp(t)
	guest, listing := seedBookableListing(t)
	token := signTestToken(t, guest.ID)
	path := fmt.Sprintf("/api/favorite/%d", listing.ID)

	// Favoriting twice keeps the id once and the counter at 1.
	for i := 0; i < 2; i++ {
		resp := doJSON(app, http.MethodPost, path, token, "")
		if resp.Code != http.StatusOK {
			t.Fatalf("AddFavorite call %d: got %d: %s", i+1, resp.Code, resp.Body.String())
		}
	}

	var fresh models.Listing
	if err := storage.DB.First(&fresh, listing.ID).Error; err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if fresh.FavoritesCount != 1 {
		t.Fatalf("FavoritesCount = %d, want 1", fresh.FavoritesCount)
	}

	resp := doJSON(app, http.MethodDelete, path, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("RemoveFavorite: got %d", resp.Code)
	}

	var user models.User
	if err := storage.DB.First(&user, guest.ID).Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if user.Favorites().Contains(listing.ID) {
		t.Fatal("listing still favorited after removal")
	}
}

func TestCurrentUserFavoritesSerializeAsArray(t *testing.T) {
	app := buildTestApp(t)
	guest, _ := seedBookableListing(t)
	token := signTestToken(t, guest.ID)

	resp := doJSON(app, http.MethodGet, "/api/user/me", token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// A user with no favorites serializes an empty array, never null.
	body := resp.Body.String()
	if strings.Contains(body, `"favoriteIds":null`) {
		t.Fatalf("favoriteIds serialized as null: %s", body)
	}
	if !strings.Contains(body, `"favoriteIds":[]`) {
		t.Fatalf("expected empty favoriteIds array: %s", body)
	}
}

func TestNotificationFlow(t *testing.T) {
	app := buildTestApp(t)
	guest, listing := seedBookableListing(t)
	guestToken := signTestToken(t, guest.ID)
	ownerToken := signTestToken(t, *listing.OwnerID)

	createPath := fmt.Sprintf("/api/reservation/listing/%d", listing.ID)
	resp := doJSON(app, http.MethodPost, createPath, guestToken, `{"startDate":"2024-06-01T00:00:00Z","endDate":"2024-06-04T00:00:00Z"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("booking: got %d: %s", resp.Code, resp.Body.String())
	}
	var created models.Reservation
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding reservation: %v", err)
	}

	// Booking notifies the listing owner.
	resp = doJSON(app, http.MethodGet, "/api/notification", ownerToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("listing owner notifications: got %d", resp.Code)
	}
	var ownerNotifications []models.Notification
	if err := json.Unmarshal(resp.Body.Bytes(), &ownerNotifications); err != nil {
		t.Fatalf("decoding notifications: %v", err)
	}
	if len(ownerNotifications) != 1 || ownerNotifications[0].Type != "reservation_created" {
		t.Fatalf("owner notifications = %+v, want one reservation_created", ownerNotifications)
	}

	// Cancellation notifies the booking user.
	cancelPath := fmt.Sprintf("/api/reservation/%d", created.ID)
	resp = doJSON(app, http.MethodDelete, cancelPath, guestToken, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("cancel: got %d", resp.Code)
	}

	resp = doJSON(app, http.MethodGet, "/api/notification", guestToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("guest notifications: got %d", resp.Code)
	}
	var guestNotifications []models.Notification
	if err := json.Unmarshal(resp.Body.Bytes(), &guestNotifications); err != nil {
		t.Fatalf("decoding notifications: %v", err)
	}
	if len(guestNotifications) != 1 || guestNotifications[0].Type != "reservation_cancelled" {
		t.Fatalf("guest notifications = %+v, want one reservation_cancelled", guestNotifications)
	}

	// Only the recipient may mark a notification read.
	readPath := fmt.Sprintf("/api/notification/%d", guestNotifications[0].ID)
	resp = doJSON(app, http.MethodPatch, readPath, ownerToken, "")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("foreign mark-read: expected 403, got %d", resp.Code)
	}

	resp = doJSON(app, http.MethodPatch, readPath, guestToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("mark-read: got %d", resp.Code)
	}
	var read models.Notification
	if err := json.Unmarshal(resp.Body.Bytes(), &read); err != nil {
		t.Fatalf("decoding notification: %v", err)
	}
	if !read.IsRead || read.ReadAt == nil {
		t.Fatalf("notification not marked read: %+v", read)
	}
}
