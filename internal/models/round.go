package models

import (
	"WinGoApi/cmd/db"
	"WinGoApi/pkg/logger"
	"errors"
	"time"

	"gorm.io/gorm"
)

type WingoRoundStatus string

const (
	RoundScheduled WingoRoundStatus = "scheduled"
	RoundActive    WingoRoundStatus = "active"
	RoundClosed    WingoRoundStatus = "closed"
	RoundSettled   WingoRoundStatus = "settled"
	RoundVoid      WingoRoundStatus = "void"
)

// WingoRound is one betting window on one duration track.
// Sequence is strictly increasing per track.
type WingoRound struct {
	ID          int64            `gorm:"primaryKey,autoIncrement" json:"id"`
	Track       int              `gorm:"not null;index:idx_wingo_rounds_track_seq" json:"track"`
	Sequence    int64            `gorm:"not null;index:idx_wingo_rounds_track_seq" json:"sequence"`
	Status      WingoRoundStatus `gorm:"not null;index" json:"status"`
	OpensAt     time.Time        `gorm:"not null" json:"opens_at"`
	ClosesAt    time.Time        `gorm:"not null" json:"closes_at"`
	ResultDigit *int             `json:"result_digit"`
	SettledAt   *time.Time       `json:"settled_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NextRoundSequence returns max(sequence)+1 for a track
func NextRoundSequence(tx *gorm.DB, track int) (int64, error) {
	if tx == nil {
		tx = db.DB
	}

	var last int64
	err := tx.Model(&WingoRound{}).
		Where("track = ?", track).
		Select("coalesce(max(sequence), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, logger.WrapError(err, "")
	}

	return last + 1, nil
}

func GetRoundByID(tx *gorm.DB, roundID int64) (*WingoRound, error) {
	if tx == nil {
		tx = db.DB
	}

	var round WingoRound
	if err := tx.First(&round, roundID).Error; err != nil {
		return nil, err
	}

	return &round, nil
}

// GetActiveRound returns the single active round of a track, or nil
func GetActiveRound(tx *gorm.DB, track int) (*WingoRound, error) {
	if tx == nil {
		tx = db.DB
	}

	var round WingoRound
	err := tx.Where("track = ? AND status = ?", track, RoundActive).
		Order("sequence desc").
		First(&round).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &round, nil
}

// TransitionRoundStatus flips a round from one status to another.
// The conditional WHERE makes concurrent transition attempts race safely:
// exactly one caller observes moved == true.
func TransitionRoundStatus(tx *gorm.DB, roundID int64, from, to WingoRoundStatus) (bool, error) {
	if tx == nil {
		tx = db.DB
	}

	res := tx.Model(&WingoRound{}).
		Where("id = ? AND status = ?", roundID, from).
		Update("status", to)
	if res.Error != nil {
		return false, logger.WrapError(res.Error, "")
	}

	return res.RowsAffected == 1, nil
}

func GetRecentRounds(tx *gorm.DB, track, limit int) ([]WingoRound, error) {
	if tx == nil {
		tx = db.DB
	}

	var rounds []WingoRound
	err := tx.Where("track = ? AND status IN ?", track,
		[]WingoRoundStatus{RoundSettled, RoundVoid}).
		Order("sequence desc").
		Limit(limit).
		Find(&rounds).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return rounds, nil
}
