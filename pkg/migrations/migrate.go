package main

import (
	"WinGoApi/cmd/db"
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
)

func main() {
	// dropTables()
	createTables()
	seedCommissionLevels()

	logger.Info("Migrated.")
}

func dropTables() {
	db.DB.Migrator().DropTable(
		&models.User{},
		&models.UserReferral{},
		&models.WingoRound{},
		&models.WingoBet{},
		&models.CommissionLevel{},
		&models.CommissionEntry{},
	)
}

func createTables() {
	err := db.DB.AutoMigrate(
		&models.User{},
		&models.UserReferral{},
		&models.WingoRound{},
		&models.WingoBet{},
		&models.CommissionLevel{},
		&models.CommissionEntry{},
	)
	if err != nil {
		logger.Fatal("%v", err)
	}
}

// Default cascade: 10% direct referrer, 5% and 2% above. Levels are only
// seeded when the table is empty so operator edits survive re-runs.
func seedCommissionLevels() {
	var count int64
	if err := db.DB.Model(&models.CommissionLevel{}).Count(&count).Error; err != nil {
		logger.Fatal("%v", err)
	}
	if count > 0 {
		return
	}

	levels := []models.CommissionLevel{
		{Level: 1, Percentage: 10, Active: true},
		{Level: 2, Percentage: 5, Active: true},
		{Level: 3, Percentage: 2, Active: true},
	}
	if err := db.DB.Create(&levels).Error; err != nil {
		logger.Fatal("%v", err)
	}
}
