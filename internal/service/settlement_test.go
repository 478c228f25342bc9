package service

import (
	"testing"

	"WinGoApi/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDecideBet_ColorWinOnDualDigit(t *testing.T) {
	bet := &models.WingoBet{
		Category:        models.BetColor,
		Value:           ColorRed,
		Amount:          100,
		EffectiveAmount: 100,
	}

	status, payout := decideBet(bet, 0)
	assert.Equal(t, models.BetWon, status)
	assert.InDelta(t, 150.0, payout, 0.001)
}

func TestDecideBet_NumberWin(t *testing.T) {
	bet := &models.WingoBet{
		Category:        models.BetNumber,
		Value:           "7",
		Amount:          50,
		EffectiveAmount: 50,
	}

	status, payout := decideBet(bet, 7)
	assert.Equal(t, models.BetWon, status)
	assert.InDelta(t, 450.0, payout, 0.001)
}

func TestDecideBet_SmallLosesOnFive(t *testing.T) {
	bet := &models.WingoBet{
		Category:        models.BetBigSmall,
		Value:           SideSmall,
		Amount:          200,
		EffectiveAmount: 200,
	}

	status, payout := decideBet(bet, 5)
	assert.Equal(t, models.BetLost, status)
	assert.Equal(t, 0.0, payout)
}

func TestDecideBet_PayoutUsesEffectiveStake(t *testing.T) {
	// 100 raw, 2 fee: the payout base is 98, never 100
	bet := &models.WingoBet{
		Category:        models.BetColor,
		Value:           ColorGreen,
		Amount:          100,
		EffectiveAmount: 98,
	}

	status, payout := decideBet(bet, 3)
	assert.Equal(t, models.BetWon, status)
	assert.InDelta(t, 196.0, payout, 0.001)
}

func TestDecideBet_VioletWin(t *testing.T) {
	bet := &models.WingoBet{
		Category:        models.BetColor,
		Value:           ColorViolet,
		Amount:          10,
		EffectiveAmount: 9.8,
	}

	status, payout := decideBet(bet, 5)
	assert.Equal(t, models.BetWon, status)
	assert.InDelta(t, 44.1, payout, 0.001)
}

// --- decideResultDeclaration ---

func intPtr(d int) *int { return &d }

func TestDecideResultDeclaration_ClosedRoundProceeds(t *testing.T) {
	decision, err := decideResultDeclaration(models.RoundClosed, nil, 7)
	assert.NoError(t, err)
	assert.Equal(t, resultProceed, decision)
}

func TestDecideResultDeclaration_ResumesOnlyWithPinnedDigit(t *testing.T) {
	// An interrupted run left digit 3 pinned on the still-closed round
	decision, err := decideResultDeclaration(models.RoundClosed, intPtr(3), 3)
	assert.NoError(t, err)
	assert.Equal(t, resultProceed, decision)
}

func TestDecideResultDeclaration_RejectsDifferentDigitOnPinnedRound(t *testing.T) {
	// Retrying a crashed settlement with a different digit must never
	// settle the remaining bets against it
	_, err := decideResultDeclaration(models.RoundClosed, intPtr(3), 8)
	assert.ErrorIs(t, err, ErrResultConflict)
}

func TestDecideResultDeclaration_SettledSameDigitIsIdempotent(t *testing.T) {
	decision, err := decideResultDeclaration(models.RoundSettled, intPtr(5), 5)
	assert.NoError(t, err)
	assert.Equal(t, resultAlreadySettled, decision)
}

func TestDecideResultDeclaration_SettledDifferentDigitConflicts(t *testing.T) {
	_, err := decideResultDeclaration(models.RoundSettled, intPtr(5), 6)
	assert.ErrorIs(t, err, ErrResultConflict)
}

func TestDecideResultDeclaration_OpenRoundRejected(t *testing.T) {
	_, err := decideResultDeclaration(models.RoundActive, nil, 4)
	assert.ErrorIs(t, err, ErrRoundStillOpen)

	_, err = decideResultDeclaration(models.RoundScheduled, nil, 4)
	assert.ErrorIs(t, err, ErrRoundStillOpen)
}

func TestDecideResultDeclaration_VoidRoundConflicts(t *testing.T) {
	_, err := decideResultDeclaration(models.RoundVoid, nil, 4)
	assert.ErrorIs(t, err, ErrResultConflict)
}
