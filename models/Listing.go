package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Listing struct {
	gorm.Model
	OwnerID       *uint  `json:"ownerID" gorm:"index"` // nullable: listing survives owner deletion
	Title         string `json:"title"`
	Description   string `json:"description"`
	ImageSrc      string `json:"imageSrc"`
	Category      string `json:"category" gorm:"index"`
	LocationValue string `json:"locationValue" gorm:"index"`
	GuestCount    int    `json:"guestCount"`
	RoomCount     int    `json:"roomCount"`
	BathroomCount int    `json:"bathroomCount"`
	Price         int    `json:"price"` // nightly, whole currency units

	FavoritesCount int `json:"favoritesCount" gorm:"default:0"`
	ViewCounter    int `json:"viewCounter" gorm:"default:0"`

	Reservations []Reservation `json:"reservations,omitempty"`
	Owner        *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:SET NULL"`
}

// Custom JSON marshaling to keep the Owner relation from recursing back
// through its Listings.
func (l *Listing) MarshalJSON() ([]byte, error) {
	type Alias Listing
	aux := &struct {
		Owner *User `json:"owner,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(l),
	}

	if l.Owner != nil && l.Owner.ID > 0 {
		ownerCopy := *l.Owner
		ownerCopy.Listings = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}
