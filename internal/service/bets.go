package service

import (
	"WinGoApi/cmd/db"
	"WinGoApi/internal/middleware"
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRoundClosed         = errors.New("round is not accepting bets")
	ErrInvalidBet          = errors.New("invalid bet selection")
)

// WingoFeeRate is the platform fee taken off every stake
const WingoFeeRate = 0.02

type WingoBetInput struct {
	Track    int     `json:"track" validate:"required"`
	Category string  `json:"category" validate:"required,oneof=color number bigsmall"`
	Value    string  `json:"value" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// One limiter per user: burst of 3, refill one per second
var (
	betLimiters      = make(map[int64]*rate.Limiter)
	betLimitersMutex sync.Mutex
)

func betLimiter(userID int64) *rate.Limiter {
	betLimitersMutex.Lock()
	defer betLimitersMutex.Unlock()

	limiter, ok := betLimiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Second), 3)
		betLimiters[userID] = limiter
	}
	return limiter
}

// computeStakes returns fee, effective stake and display-time potential
// payout for an accepted wager
func computeStakes(category models.WingoBetCategory, value string, amount, feeRate float64) (fee, effective, potential float64) {
	fee = amount * feeRate
	effective = amount - fee
	potential = effective * BestCaseMultiplier(category, value)
	return
}

// PlaceWingoBet handles POST requests to wager on the current round of a track
func PlaceWingoBet(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var input WingoBetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := validate.Struct(input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if !betLimiter(userID).Allow() {
		c.JSON(429, gin.H{"error": "Please wait before placing another bet"})
		return
	}

	limits, ok := wingoTrackLimits[input.Track]
	if !ok {
		c.JSON(400, gin.H{"error": "unknown track"})
		return
	}

	category := models.WingoBetCategory(input.Category)
	if !ValidBetSelection(category, input.Value) {
		c.JSON(400, gin.H{"error": ErrInvalidBet.Error()})
		return
	}

	if input.Amount < limits.MinStake || input.Amount > limits.MaxStake {
		c.JSON(400, gin.H{"error": "stake outside track limits"})
		return
	}

	round := CurrentRound(input.Track)
	if round == nil || time.Now().After(round.ClosesAt) {
		c.JSON(403, gin.H{"error": ErrRoundClosed.Error()})
		return
	}

	var bet models.WingoBet
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Re-check the round inside the transaction; the scheduler may
		// have closed it since the registry lookup
		var dbRound models.WingoRound
		if err := tx.Where("id = ? AND status = ?", round.ID, models.RoundActive).
			First(&dbRound).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoundClosed
			}
			return logger.WrapError(err, "")
		}

		// Row lock serializes concurrent bets from the same account so the
		// balance cannot be spent twice
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if user.BalanceRupee < input.Amount {
			return ErrInsufficientBalance
		}

		fee, effective, potential := computeStakes(category, input.Value, input.Amount, WingoFeeRate)

		bet = models.WingoBet{
			UserID:          userID,
			RoundID:         round.ID,
			Category:        category,
			Value:           input.Value,
			Amount:          input.Amount,
			Fee:             fee,
			EffectiveAmount: effective,
			PotentialPayout: potential,
			Status:          models.BetPending,
		}

		// Debit and bet creation commit or fail as a unit
		if err := tx.Model(&user).Update("balance_rupee",
			gorm.Expr("balance_rupee - ?", input.Amount)).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if err := tx.Create(&bet).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			c.JSON(402, gin.H{"error": err.Error()})
		case errors.Is(err, ErrRoundClosed):
			c.JSON(403, gin.H{"error": err.Error()})
		default:
			logger.Error("%v", err)
			c.Status(500)
		}
		return
	}

	WingoExposure.Record(round.ID, bet.Category, bet.Value, bet.EffectiveAmount)

	c.JSON(200, gin.H{
		"bet_id":           bet.ID,
		"round_id":         bet.RoundID,
		"effective_stake":  bet.EffectiveAmount,
		"potential_payout": bet.PotentialPayout,
	})
}

// GetUserWingoBets handles GET requests for the caller's recent bets
func GetUserWingoBets(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	bets, err := models.GetUserRecentBets(nil, userID, 20)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if len(bets) == 0 {
		c.String(404, "[]")
		return
	}

	c.JSON(200, bets)
}
