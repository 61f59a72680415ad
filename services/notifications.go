package services

import (
	"fmt"
	"log"
	"time"

	"github.com/mnq11/airbnb-sub000/models"

	"gorm.io/gorm"
)

// NotificationService writes in-app notification rows for booking events.
// Every method is best-effort: failures are logged, never returned, so a
// notification hiccup cannot fail the booking that triggered it.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) ReservationCreated(reservation *models.Reservation, listing *models.Listing) {
	if listing.OwnerID == nil {
		return
	}

	s.create(models.Notification{
		UserID: *listing.OwnerID,
		Type:   "reservation_created",
		Title:  "New Reservation",
		Message: fmt.Sprintf("%s was booked from %s to %s", listing.Title,
			reservation.StartDate.Format("Jan 2, 2006"), reservation.EndDate.Format("Jan 2, 2006")),
		RefType: "reservation",
		RefID:   reservation.ID,
	})
}

func (s *NotificationService) ReservationCancelled(reservation *models.Reservation) {
	s.create(models.Notification{
		UserID:  reservation.UserID,
		Type:    "reservation_cancelled",
		Title:   "Reservation Cancelled",
		Message: fmt.Sprintf("Your reservation starting %s was cancelled", reservation.StartDate.Format("Jan 2, 2006")),
		RefType: "reservation",
		RefID:   reservation.ID,
	})
}

func (s *NotificationService) create(notification models.Notification) {
	notification.CreatedAt = time.Now()
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("notification write failed (type=%s user=%d): %v", notification.Type, notification.UserID, err)
	}
}
