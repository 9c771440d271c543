package owner

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope returns a GORM scope that restricts a query to rows owned by userID.
// Every read and write of user-owned rows goes through it.
func Scope(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
