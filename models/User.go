package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name           string         `json:"name"`
	Email          string         `json:"email" gorm:"uniqueIndex"`
	HashedPassword string         `json:"-"` // empty for OAuth-only accounts
	Image          string         `json:"image"`
	SocialLogin    bool           `json:"socialLogin"`
	SocialProvider string         `json:"socialProvider"`
	FavoriteIDs    datatypes.JSON `json:"favoriteIds"`
	Listings       []Listing      `json:"listings" gorm:"foreignKey:OwnerID;references:ID"`
}

// Favorites decodes the stored favorite list into its set form. A missing or
// corrupt column reads as an empty set rather than an error.
func (u *User) Favorites() FavoriteSet {
	return FavoriteSetFromJSON(u.FavoriteIDs)
}

// SetFavorites re-encodes the set onto the JSON column.
func (u *User) SetFavorites(set FavoriteSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}
	u.FavoriteIDs = raw
	return nil
}

// Custom JSON marshaling so the favorite list always serializes as an array
// and the Listings relation never recurses back through Owner.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		FavoriteIDs []uint    `json:"favoriteIds"`
		Listings    []Listing `json:"listings,omitempty"`
		*Alias
	}{
		FavoriteIDs: []uint{},
		Alias:       (*Alias)(u),
	}

	if favorites := u.Favorites(); len(favorites) > 0 {
		aux.FavoriteIDs = favorites
	}

	return json.Marshal(aux)
}
