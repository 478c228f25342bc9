package models

import (
	"WinGoApi/cmd/db"
	"WinGoApi/pkg/logger"
	"errors"

	"gorm.io/gorm"
)

type UserReferral struct {
	ID               int64 `gorm:"primaryKey,autoIncrement"`
	ReferrerID       int64 `gorm:"index"`
	ReferredID       int64 `gorm:"uniqueIndex"`
	ReferredNickname string
	EarnedAmount     float64
}

// GetDirectReferrer returns the referrer of a user, or 0 when the user
// was not referred by anyone. Each user has at most one direct referrer.
func GetDirectReferrer(tx *gorm.DB, userID int64) (int64, error) {
	if tx == nil {
		tx = db.DB
	}

	var ref UserReferral
	err := tx.Where("referred_id = ?", userID).First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, logger.WrapError(err, "")
	}

	return ref.ReferrerID, nil
}

// AddReferralEarnings bumps the EarnedAmount shown on the referrer dashboard
func AddReferralEarnings(tx *gorm.DB, referrerID, referredID int64, amount float64) error {
	if tx == nil {
		tx = db.DB
	}

	err := tx.Model(&UserReferral{}).
		Where("referrer_id = ? AND referred_id = ?", referrerID, referredID).
		Update("earned_amount", gorm.Expr("earned_amount + ?", amount)).Error
	if err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

func GetUserReferrals(tx *gorm.DB, referrerID int64) ([]UserReferral, error) {
	if tx == nil {
		tx = db.DB
	}

	var refs []UserReferral
	err := tx.Where("referrer_id = ?", referrerID).Find(&refs).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return refs, nil
}
