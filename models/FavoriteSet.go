package models

import (
	"encoding/json"

	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
)

// FavoriteSet is the ordered set of listing ids a user has favorited.
// Iteration order is insertion order; a listing id appears at most once.
type FavoriteSet []uint

// FavoriteSetFromJSON decodes the stored column. Nil or malformed data
// normalizes to an empty set.
func FavoriteSetFromJSON(raw datatypes.JSON) FavoriteSet {
	if raw == nil {
		return FavoriteSet{}
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return FavoriteSet{}
	}
	return FavoriteSet(ids)
}

func (s FavoriteSet) Contains(listingID uint) bool {
	return slices.Contains(s, listingID)
}

// Add appends listingID, keeping insertion order. Returns the resulting set
// and whether the set changed.
func (s FavoriteSet) Add(listingID uint) (FavoriteSet, bool) {
	if s.Contains(listingID) {
		return s, false
	}
	return append(s, listingID), true
}

// Remove drops listingID if present. Returns the resulting set and whether
// the set changed.
func (s FavoriteSet) Remove(listingID uint) (FavoriteSet, bool) {
	out := make(FavoriteSet, 0, len(s))
	removed := false
	for _, id := range s {
		if id == listingID {
			removed = true
			continue
		}
		out = append(out, id)
	}
	return out, removed
}
