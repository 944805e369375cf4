package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document holds one user's ledger as an opaque JSON blob, exactly the
// shape the client writes: {"items":[{description,amount,sign,checked}]}.
// No version column; concurrent writers are last-write-wins.
type Document struct {
	UserID    uint           `gorm:"primaryKey"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
