package service

import (
	"WinGoApi/cmd/db"
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
	"WinGoApi/pkg/redis"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRoundNotFound   = errors.New("round not found")
	ErrResultConflict  = errors.New("round already settled with a different result")
	ErrRoundStillOpen  = errors.New("round is still accepting bets")
	ErrAlreadySettling = errors.New("settlement already in progress")
	ErrGracePeriod     = errors.New("round is still inside the result grace period")
)

const (
	settleLockTTL = 30 * time.Second

	// A closed round may be voided by the operator once no result arrived
	// for this long. Escape hatch, not a normal path.
	voidGracePeriod = 10 * time.Minute
)

type WingoResultInput struct {
	Digit *int `json:"digit" validate:"required,min=0,max=9"`
}

// DeclareWingoResult handles POST requests declaring the digit of a closed
// round. Authorization is the operator gateway's concern; this only
// enforces the state machine.
func DeclareWingoResult(c *gin.Context, redisService *redis.RedisService) {
	roundID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid round id"})
		return
	}

	var input WingoResultInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	err = settleWingoRound(roundID, *input.Digit, redisService)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoundNotFound):
			c.JSON(404, gin.H{"error": err.Error()})
		case errors.Is(err, ErrResultConflict), errors.Is(err, ErrAlreadySettling):
			c.JSON(409, gin.H{"error": err.Error()})
		case errors.Is(err, ErrRoundStillOpen):
			c.JSON(409, gin.H{"error": err.Error()})
		default:
			logger.Error("%v", err)
			c.Status(500)
		}
		return
	}

	c.JSON(200, gin.H{"settled": true, "round_id": roundID, "digit": *input.Digit})
}

type resultDecision int

const (
	resultProceed resultDecision = iota
	resultAlreadySettled
)

// decideResultDeclaration classifies a digit declaration against the
// round's persisted state. A closed round may already carry a digit
// pinned by an interrupted settlement run; only a declaration matching
// the pinned digit may resume it, anything else is a conflict.
func decideResultDeclaration(status models.WingoRoundStatus, pinned *int, digit int) (resultDecision, error) {
	switch status {
	case models.RoundSettled:
		if pinned != nil && *pinned == digit {
			return resultAlreadySettled, nil
		}
		return resultProceed, ErrResultConflict
	case models.RoundScheduled, models.RoundActive:
		return resultProceed, ErrRoundStillOpen
	case models.RoundVoid:
		return resultProceed, ErrResultConflict
	}

	if pinned != nil && *pinned != digit {
		return resultProceed, ErrResultConflict
	}

	return resultProceed, nil
}

// settleWingoRound applies a declared digit to every bet of a closed round
// exactly once. Re-declaring the same digit on a settled round is an
// idempotent success; a different digit is a conflict. The digit is pinned
// to the round before any bet is touched, so a run interrupted mid-loop
// can only ever be resumed with the digit it started with.
func settleWingoRound(roundID int64, digit int, redisService *redis.RedisService) error {
	round, err := models.GetRoundByID(nil, roundID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRoundNotFound
	}
	if err != nil {
		return logger.WrapError(err, "")
	}

	decision, err := decideResultDeclaration(round.Status, round.ResultDigit, digit)
	if err != nil {
		return err
	}
	if decision == resultAlreadySettled {
		return nil
	}

	// One settler per round. The lock excludes concurrent declarations;
	// the pinned digit and the conditional transitions below back it up
	// if the lock ever expires mid-run.
	ctx, cancel := context.WithTimeout(context.Background(), settleLockTTL)
	defer cancel()

	lockKey := "wingo:settle:" + strconv.FormatInt(roundID, 10)
	lockToken := uuid.NewString()
	locked, err := redisService.AcquireLock(ctx, lockKey, lockToken, settleLockTTL)
	if err != nil {
		return logger.WrapError(err, "")
	}
	if !locked {
		return ErrAlreadySettling
	}
	defer func() {
		if err := redisService.ReleaseLock(context.Background(), lockKey, lockToken); err != nil {
			logger.Warn("Unable to release settlement lock for round %d: %v", roundID, err)
		}
	}()

	// Re-read under the lock; another settler may have advanced the round
	// between the first check and the lock grab
	round, err = models.GetRoundByID(nil, roundID)
	if err != nil {
		return logger.WrapError(err, "")
	}

	decision, err = decideResultDeclaration(round.Status, round.ResultDigit, digit)
	if err != nil {
		return err
	}
	if decision == resultAlreadySettled {
		return nil
	}

	if round.ResultDigit == nil {
		res := db.DB.Model(&models.WingoRound{}).
			Where("id = ? AND status = ? AND result_digit IS NULL", roundID, models.RoundClosed).
			Update("result_digit", digit)
		if res.Error != nil {
			return logger.WrapError(res.Error, "")
		}
		if res.RowsAffected == 0 {
			return ErrResultConflict
		}
	}

	if err := settleRoundBets(roundID, digit); err != nil {
		return logger.WrapError(err, "")
	}

	now := time.Now()
	res := db.DB.Model(&models.WingoRound{}).
		Where("id = ? AND status = ? AND result_digit = ?", roundID, models.RoundClosed, digit).
		Updates(map[string]interface{}{
			"status":     models.RoundSettled,
			"settled_at": now,
		})
	if res.Error != nil {
		return logger.WrapError(res.Error, "")
	}
	if res.RowsAffected == 0 {
		// Someone else finished first; matching result still counts as done
		settled, err := models.GetRoundByID(nil, roundID)
		if err != nil {
			return logger.WrapError(err, "")
		}
		if settled.Status == models.RoundSettled && settled.ResultDigit != nil && *settled.ResultDigit == digit {
			return nil
		}
		return ErrResultConflict
	}

	round.Status = models.RoundSettled
	round.ResultDigit = &digit
	round.SettledAt = &now

	WingoExposure.Archive(roundID)
	WingoWS.BroadcastRoundSettled(round)
	logger.Info("Round %d settled with digit %d", roundID, digit)

	return nil
}

// settleRoundBets walks every still-pending bet of the round. Each bet is
// settled in its own transaction with a conditional status flip, so a
// crash mid-loop resumes cleanly: already-settled bets are skipped and
// never credited twice.
func settleRoundBets(roundID int64, digit int) error {
	bets, err := models.GetPendingBetsForRound(nil, roundID)
	if err != nil {
		return logger.WrapError(err, "")
	}

	for i := range bets {
		if err := settleSingleBet(&bets[i], digit); err != nil {
			return logger.WrapError(err, "")
		}
	}

	return nil
}

// decideBet applies the outcome rules to one bet
func decideBet(bet *models.WingoBet, digit int) (models.WingoBetStatus, float64) {
	won, multiplier := EvaluateOutcome(bet.Category, bet.Value, digit)
	if !won {
		return models.BetLost, 0
	}
	return models.BetWon, bet.EffectiveAmount * multiplier
}

func settleSingleBet(bet *models.WingoBet, digit int) error {
	status, payout := decideBet(bet, digit)
	won := status == models.BetWon

	return db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WingoBet{}).
			Where("id = ? AND status = ?", bet.ID, models.BetPending).
			Updates(map[string]interface{}{"status": status, "payout": payout})
		if res.Error != nil {
			return logger.WrapError(res.Error, "")
		}
		if res.RowsAffected == 0 {
			// Settled by an earlier interrupted run
			return nil
		}

		if won {
			if err := models.CreditUserBalance(tx, bet.UserID, payout); err != nil {
				return logger.WrapError(err, "")
			}
		}

		bet.Status = status
		bet.Payout = payout

		// Commission rewards referral activity, not referral luck: it runs
		// on the stake placed, win or lose, once per bet.
		if err := DistributeWingoCommission(tx, bet); err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})
}

// GetDeclaredWingoResult handles GET requests for a round's declared digit
func GetDeclaredWingoResult(c *gin.Context) {
	roundID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid round id"})
		return
	}

	round, err := models.GetRoundByID(nil, roundID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(404, gin.H{"error": ErrRoundNotFound.Error()})
		return
	}
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if round.ResultDigit == nil {
		c.JSON(404, gin.H{"error": "result not declared"})
		return
	}

	c.JSON(200, gin.H{"round_id": round.ID, "digit": *round.ResultDigit, "status": round.Status})
}

// VoidWingoRound handles POST requests voiding a closed round that never
// received a result. Pending bets are refunded their raw stake.
func VoidWingoRound(c *gin.Context) {
	roundID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid round id"})
		return
	}

	err = voidWingoRound(roundID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoundNotFound):
			c.JSON(404, gin.H{"error": err.Error()})
		case errors.Is(err, ErrRoundStillOpen), errors.Is(err, ErrResultConflict):
			c.JSON(409, gin.H{"error": err.Error()})
		case errors.Is(err, ErrGracePeriod):
			c.JSON(409, gin.H{"error": err.Error()})
		default:
			logger.Error("%v", err)
			c.Status(500)
		}
		return
	}

	c.JSON(200, gin.H{"voided": true, "round_id": roundID})
}

func voidWingoRound(roundID int64) error {
	round, err := models.GetRoundByID(nil, roundID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRoundNotFound
	}
	if err != nil {
		return logger.WrapError(err, "")
	}

	switch round.Status {
	case models.RoundSettled, models.RoundVoid:
		return ErrResultConflict
	case models.RoundScheduled, models.RoundActive:
		return ErrRoundStillOpen
	}

	// A pinned digit means a settlement run already started; the round
	// must be settled with that digit, not voided
	if round.ResultDigit != nil {
		return ErrResultConflict
	}

	if time.Since(round.ClosesAt) < voidGracePeriod {
		return ErrGracePeriod
	}

	// Conditional on no pinned digit so a settlement run racing this call
	// cannot have its round voided under it
	res := db.DB.Model(&models.WingoRound{}).
		Where("id = ? AND status = ? AND result_digit IS NULL", roundID, models.RoundClosed).
		Update("status", models.RoundVoid)
	if res.Error != nil {
		return logger.WrapError(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return ErrResultConflict
	}

	bets, err := models.GetPendingBetsForRound(nil, roundID)
	if err != nil {
		return logger.WrapError(err, "")
	}

	for _, bet := range bets {
		err := db.DB.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.WingoBet{}).
				Where("id = ? AND status = ?", bet.ID, models.BetPending).
				Update("status", models.BetVoided)
			if res.Error != nil {
				return logger.WrapError(res.Error, "")
			}
			if res.RowsAffected == 0 {
				return nil
			}

			return models.CreditUserBalance(tx, bet.UserID, bet.Amount)
		})
		if err != nil {
			return logger.WrapError(err, "")
		}
	}

	WingoExposure.Archive(roundID)
	logger.Info("Round %d voided, %d bets refunded", roundID, len(bets))

	return nil
}
