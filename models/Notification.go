package models

import "time"

// Notification is an in-app message created on booking events. Writes to this
// table are best-effort: a failed insert never fails the booking itself.
type Notification struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID uint  `json:"userID" gorm:"not null;index"`
	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID"`

	Type    string `json:"type" gorm:"size:32;index"` // reservation_created, reservation_cancelled
	Title   string `json:"title" gorm:"size:100"`
	Message string `json:"message" gorm:"size:500"`

	RefType string `json:"refType" gorm:"size:32"` // reservation, listing
	RefID   uint   `json:"refID"`

	IsRead    bool       `json:"isRead" gorm:"default:false"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`
}
