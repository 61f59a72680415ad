package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation is a booked date range against a listing. Rows are created on
// booking and deleted on cancellation, never updated in place.
type Reservation struct {
	gorm.Model
	ListingID  uint      `json:"listingID" gorm:"index"`
	UserID     uint      `json:"userID" gorm:"index"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	TotalPrice int       `json:"totalPrice"`

	// Relationships
	Listing *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
