package repository

import (
	"forum/internal/database"

	"gorm.io/gorm"
)

// readDB prefers the configured read replica for listing queries.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}
