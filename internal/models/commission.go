package models

import (
	"WinGoApi/cmd/db"
	"WinGoApi/pkg/logger"
	"time"

	"gorm.io/gorm"
)

// CommissionLevel configures one step of the referral cascade.
// Level 1 is the direct referrer.
type CommissionLevel struct {
	ID         int64   `gorm:"primaryKey,autoIncrement" json:"id"`
	Level      int     `gorm:"uniqueIndex;not null" json:"level"`
	Percentage float64 `gorm:"not null" json:"percentage"`
	Active     bool    `gorm:"not null;default:true" json:"active"`
}

// CommissionEntry is one credited cascade step, kept as its own ledger
// record attributing the source user and level. Never re-derived.
type CommissionEntry struct {
	ID            int64     `gorm:"primaryKey,autoIncrement" json:"id"`
	Reference     string    `gorm:"uniqueIndex;not null" json:"reference"`
	BeneficiaryID int64     `gorm:"not null;index" json:"beneficiary_id"`
	SourceUserID  int64     `gorm:"not null;index" json:"source_user_id"`
	SourceBetID   int64     `gorm:"not null;index" json:"source_bet_id"`
	Level         int       `gorm:"not null" json:"level"`
	Amount        float64   `gorm:"not null" json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// GetActiveCommissionLevels returns configured levels ordered by level.
// Inactive levels are included so the cascade can skip them without
// terminating the walk.
func GetActiveCommissionLevels(tx *gorm.DB) ([]CommissionLevel, error) {
	if tx == nil {
		tx = db.DB
	}

	var levels []CommissionLevel
	err := tx.Order("level asc").Find(&levels).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return levels, nil
}

func GetUserCommissionEntries(tx *gorm.DB, beneficiaryID int64, limit int) ([]CommissionEntry, error) {
	if tx == nil {
		tx = db.DB
	}

	var entries []CommissionEntry
	err := tx.Where("beneficiary_id = ?", beneficiaryID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return entries, nil
}
