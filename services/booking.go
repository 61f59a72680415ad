package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mnq11/airbnb-sub000/models"

	"gorm.io/gorm"
)

// Engine-level failures. Routes map these onto HTTP statuses with errors.Is;
// anything else is a store failure and surfaces as a 500.
var (
	ErrInvalidRange = errors.New("endDate must be after startDate")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("date range conflicts with an existing reservation")
	ErrForbidden    = errors.New("not allowed to act on this resource")
)

// DateRange is a booked interval as exposed to calendar rendering.
type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Availability reports whether a candidate range is free and which existing
// reservations block it.
type Availability struct {
	Available bool        `json:"available"`
	Blocking  []DateRange `json:"blockingRanges"`
}

// BookingService owns availability checks, reservation writes and the
// per-listing favorite/view counters. The store handle is injected at
// construction; the service holds no other state.
//
// The caller-supplied user IDs are trusted verbatim: authentication is the
// transport layer's responsibility and must happen before any method here is
// invoked.
type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// nightsBetween returns the whole-day difference between two dates. Times of
// day are dropped before subtracting so a late check-in still counts full
// nights.
func nightsBetween(start, end time.Time) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(endDay.Sub(startDay).Hours() / 24)
}

// overlapCondition is the closed-interval conflict policy: a reservation
// blocks a candidate range when existing.start <= candidate.end AND
// existing.end >= candidate.start. A checkout day equal to another booking's
// checkin day therefore counts as a conflict.
const overlapCondition = "listing_id = ? AND start_date <= ? AND end_date >= ?"

// CheckAvailability reports whether [start, end] is free on the listing and
// returns the blocking reservations for calendar greying.
func (s *BookingService) CheckAvailability(ctx context.Context, listingID uint, start, end time.Time) (*Availability, error) {
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	if err := s.listingExists(ctx, listingID); err != nil {
		return nil, err
	}

	var blocking []models.Reservation
	res := s.db.WithContext(ctx).
		Where(overlapCondition, listingID, end, start).
		Order("start_date ASC").
		Find(&blocking)
	if res.Error != nil {
		return nil, fmt.Errorf("querying reservations: %w", res.Error)
	}

	availability := &Availability{
		Available: len(blocking) == 0,
		Blocking:  make([]DateRange, 0, len(blocking)),
	}
	for _, reservation := range blocking {
		availability.Blocking = append(availability.Blocking, DateRange{
			StartDate: reservation.StartDate,
			EndDate:   reservation.EndDate,
		})
	}

	return availability, nil
}

// CreateReservation validates the range, prices the stay and inserts the
// reservation. The conflict check and insert share one transaction, which
// narrows the check-then-act window to the store's transaction isolation; it
// is not a serializable guarantee against concurrent submissions.
func (s *BookingService) CreateReservation(ctx context.Context, listingID, userID uint, start, end time.Time) (*models.Reservation, error) {
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	nights := nightsBetween(start, end)
	if nights < 1 {
		return nil, ErrInvalidRange
	}

	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading listing: %w", err)
	}

	reservation := &models.Reservation{
		ListingID:  listing.ID,
		UserID:     userID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: nights * listing.Price,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conflicts int64
		if err := tx.Model(&models.Reservation{}).
			Where(overlapCondition, listing.ID, end, start).
			Count(&conflicts).Error; err != nil {
			return fmt.Errorf("checking conflicts: %w", err)
		}
		if conflicts > 0 {
			return ErrConflict
		}
		if err := tx.Create(reservation).Error; err != nil {
			return fmt.Errorf("creating reservation: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return reservation, nil
}

// CancelReservation deletes a reservation. Only the booking user or the
// listing's owner may cancel.
func (s *BookingService) CancelReservation(ctx context.Context, reservationID, actingUserID uint) error {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).Preload("Listing").First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("loading reservation: %w", err)
	}

	allowed := reservation.UserID == actingUserID
	if !allowed && reservation.Listing != nil && reservation.Listing.OwnerID != nil {
		allowed = *reservation.Listing.OwnerID == actingUserID
	}
	if !allowed {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&reservation).Error; err != nil {
		return fmt.Errorf("deleting reservation: %w", err)
	}
	return nil
}

// AddFavorite records the listing in the user's favorite set and bumps the
// listing's favorites count. Calling it again for the same pair is a no-op:
// the set refuses duplicates and the counter only moves when the set does.
//
// The membership write and the counter write are two statements; a failed
// counter update after a successful membership write is logged and accepted
// (the toggle itself still succeeds).
func (s *BookingService) AddFavorite(ctx context.Context, userID, listingID uint) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.listingExists(ctx, listingID); err != nil {
		return nil, err
	}

	favorites, changed := user.Favorites().Add(listingID)
	if !changed {
		return user, nil
	}

	if err := s.saveFavorites(ctx, user, favorites); err != nil {
		return nil, err
	}

	counter := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", listingID).
		UpdateColumn("favorites_count", gorm.Expr("favorites_count + 1"))
	if counter.Error != nil {
		log.Printf("favorites counter increment failed for listing %d: %v", listingID, counter.Error)
	}

	return user, nil
}

// RemoveFavorite drops the listing from the user's favorite set. The counter
// decrement is guarded so drifted bookkeeping can never push it below zero.
func (s *BookingService) RemoveFavorite(ctx context.Context, userID, listingID uint) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorites, changed := user.Favorites().Remove(listingID)
	if !changed {
		return user, nil
	}

	if err := s.saveFavorites(ctx, user, favorites); err != nil {
		return nil, err
	}

	counter := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND favorites_count > 0", listingID).
		UpdateColumn("favorites_count", gorm.Expr("favorites_count - 1"))
	if counter.Error != nil {
		log.Printf("favorites counter decrement failed for listing %d: %v", listingID, counter.Error)
	}

	return user, nil
}

// IncrementView bumps the listing's visit counter. Every call counts, repeat
// viewers included. Callers treat failures as non-critical telemetry.
func (s *BookingService) IncrementView(ctx context.Context, listingID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", listingID).
		UpdateColumn("view_counter", gorm.Expr("view_counter + 1"))
	if res.Error != nil {
		return fmt.Errorf("incrementing view counter: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookingService) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &user, nil
}

func (s *BookingService) listingExists(ctx context.Context, listingID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", listingID).Count(&count).Error; err != nil {
		return fmt.Errorf("looking up listing: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookingService) saveFavorites(ctx context.Context, user *models.User, favorites models.FavoriteSet) error {
	if err := user.SetFavorites(favorites); err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("favorite_ids", user.FavoriteIDs).Error; err != nil {
		return fmt.Errorf("saving favorites: %w", err)
	}
	return nil
}
