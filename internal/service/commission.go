package service

import (
	"WinGoApi/cmd/db"
	"WinGoApi/internal/middleware"
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxCascadeDepth caps the ancestry walk even if referral data is
// malformed into a cycle
const maxCascadeDepth = 10

type referrerLookup func(userID int64) (int64, error)

// walkReferralChain collects the referral ancestors of a user, nearest
// first, up to maxLevel. The chain is walked through the lookup function
// level by level, never through live object references.
func walkReferralChain(lookup referrerLookup, userID int64, maxLevel int) ([]int64, error) {
	if maxLevel > maxCascadeDepth {
		maxLevel = maxCascadeDepth
	}

	ancestors := make([]int64, 0, maxLevel)
	current := userID
	for level := 1; level <= maxLevel; level++ {
		referrer, err := lookup(current)
		if err != nil {
			return nil, logger.WrapError(err, "")
		}
		if referrer == 0 {
			break
		}
		ancestors = append(ancestors, referrer)
		current = referrer
	}

	return ancestors, nil
}

type cascadeCredit struct {
	AncestorID int64
	Level      int
	Amount     float64
}

// planCascade turns an ancestor chain and the level configuration into
// the credits to book. Inactive or unconfigured levels yield no credit
// but do not cut the chain short.
func planCascade(byLevel map[int]models.CommissionLevel, ancestors []int64, base float64) []cascadeCredit {
	credits := make([]cascadeCredit, 0, len(ancestors))
	for i, ancestorID := range ancestors {
		level := i + 1
		setting, ok := byLevel[level]
		if !ok || !setting.Active {
			continue
		}

		amount := base * setting.Percentage / 100
		if amount <= 0 {
			continue
		}

		credits = append(credits, cascadeCredit{AncestorID: ancestorID, Level: level, Amount: amount})
	}
	return credits
}

// DistributeWingoCommission credits each referral ancestor of the bet's
// owner a configured percentage of the effective stake. Runs exactly once
// per bet: the CommissionPaid flip is the idempotency marker, and gaps in
// the configured levels are skipped without ending the walk.
func DistributeWingoCommission(tx *gorm.DB, bet *models.WingoBet) error {
	if tx == nil {
		tx = db.DB
	}

	res := tx.Model(&models.WingoBet{}).
		Where("id = ? AND commission_paid = ?", bet.ID, false).
		Update("commission_paid", true)
	if res.Error != nil {
		return logger.WrapError(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return nil
	}
	bet.CommissionPaid = true

	levels, err := models.GetActiveCommissionLevels(tx)
	if err != nil {
		return logger.WrapError(err, "")
	}
	if len(levels) == 0 {
		return nil
	}

	byLevel := make(map[int]models.CommissionLevel, len(levels))
	maxLevel := 0
	for _, l := range levels {
		byLevel[l.Level] = l
		if l.Level > maxLevel {
			maxLevel = l.Level
		}
	}

	lookup := func(userID int64) (int64, error) {
		return models.GetDirectReferrer(tx, userID)
	}

	ancestors, err := walkReferralChain(lookup, bet.UserID, maxLevel)
	if err != nil {
		return logger.WrapError(err, "")
	}

	for _, credit := range planCascade(byLevel, ancestors, bet.EffectiveAmount) {
		entry := models.CommissionEntry{
			Reference:     uuid.NewString(),
			BeneficiaryID: credit.AncestorID,
			SourceUserID:  bet.UserID,
			SourceBetID:   bet.ID,
			Level:         credit.Level,
			Amount:        credit.Amount,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if err := models.CreditUserBalance(tx, credit.AncestorID, credit.Amount); err != nil {
			return logger.WrapError(err, "")
		}

		if credit.Level == 1 {
			if err := models.AddReferralEarnings(tx, credit.AncestorID, bet.UserID, credit.Amount); err != nil {
				return logger.WrapError(err, "")
			}
		}
	}

	return nil
}

// GetUserCommissions handles GET requests for the caller's commission ledger
func GetUserCommissions(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	entries, err := models.GetUserCommissionEntries(nil, userID, 50)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if len(entries) == 0 {
		c.String(404, "[]")
		return
	}

	c.JSON(200, entries)
}
