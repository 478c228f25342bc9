package models

import (
	"WinGoApi/cmd/db"
	"WinGoApi/pkg/logger"
	"time"

	"gorm.io/gorm"
)

type WingoBetCategory string

const (
	BetColor    WingoBetCategory = "color"
	BetNumber   WingoBetCategory = "number"
	BetBigSmall WingoBetCategory = "bigsmall"
)

type WingoBetStatus string

const (
	BetPending WingoBetStatus = "pending"
	BetWon     WingoBetStatus = "won"
	BetLost    WingoBetStatus = "lost"
	BetVoided  WingoBetStatus = "voided"
)

// WingoBet is an append-only wager record. Only Status and Payout change
// after creation, exactly once, during settlement (or void refund).
type WingoBet struct {
	ID              int64            `gorm:"primaryKey,autoIncrement" json:"id"`
	UserID          int64            `gorm:"not null;index" json:"user_id"`
	RoundID         int64            `gorm:"not null;index" json:"round_id"`
	Category        WingoBetCategory `gorm:"not null" json:"category"`
	Value           string           `gorm:"not null" json:"value"`
	Amount          float64          `gorm:"not null" json:"amount"`
	Fee             float64          `json:"fee"`
	EffectiveAmount float64          `gorm:"not null" json:"effective_amount"`
	PotentialPayout float64          `json:"potential_payout"`
	Status          WingoBetStatus   `gorm:"not null;index" json:"status"`
	Payout          float64          `json:"payout"`
	CommissionPaid  bool             `json:"-"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// GetPendingBetsForRound fetches the bets settlement still has to process.
// Bets already flipped to won/lost by an interrupted earlier attempt are
// excluded, which is what makes settlement resumable.
func GetPendingBetsForRound(tx *gorm.DB, roundID int64) ([]WingoBet, error) {
	if tx == nil {
		tx = db.DB
	}

	var bets []WingoBet
	err := tx.Where("round_id = ? AND status = ?", roundID, BetPending).
		Order("id asc").
		Find(&bets).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return bets, nil
}

// GetBetsForRound fetches every bet of a round regardless of status
func GetBetsForRound(tx *gorm.DB, roundID int64) ([]WingoBet, error) {
	if tx == nil {
		tx = db.DB
	}

	var bets []WingoBet
	err := tx.Where("round_id = ?", roundID).Order("id asc").Find(&bets).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return bets, nil
}

func GetUserRecentBets(tx *gorm.DB, userID int64, limit int) ([]WingoBet, error) {
	if tx == nil {
		tx = db.DB
	}

	var bets []WingoBet
	err := tx.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&bets).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return bets, nil
}
