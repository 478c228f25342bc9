package service

import (
	"testing"

	"WinGoApi/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeStakes_ColorBet(t *testing.T) {
	fee, effective, potential := computeStakes(models.BetColor, ColorRed, 100, WingoFeeRate)

	assert.InDelta(t, 2.0, fee, 0.001)
	assert.InDelta(t, 98.0, effective, 0.001)
	assert.InDelta(t, 196.0, potential, 0.001)
}

func TestComputeStakes_NumberBet(t *testing.T) {
	fee, effective, potential := computeStakes(models.BetNumber, "7", 50, WingoFeeRate)

	assert.InDelta(t, 1.0, fee, 0.001)
	assert.InDelta(t, 49.0, effective, 0.001)
	assert.InDelta(t, 441.0, potential, 0.001)
}

func TestComputeStakes_VioletShowsFullRate(t *testing.T) {
	_, effective, potential := computeStakes(models.BetColor, ColorViolet, 10, WingoFeeRate)

	assert.InDelta(t, 9.8, effective, 0.001)
	assert.InDelta(t, 44.1, potential, 0.001)
}

func TestComputeStakes_FeeNeverExceedsStake(t *testing.T) {
	fee, effective, _ := computeStakes(models.BetBigSmall, SideBig, 0.5, WingoFeeRate)

	assert.Less(t, fee, 0.5)
	assert.Greater(t, effective, 0.0)
	assert.InDelta(t, 0.5, fee+effective, 0.0001)
}

func TestBetLimiter_BurstThenThrottle(t *testing.T) {
	limiter := betLimiter(int64(999001))

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
}

func TestBetLimiter_PerUserIsolation(t *testing.T) {
	first := betLimiter(int64(999002))
	second := betLimiter(int64(999003))

	for i := 0; i < 3; i++ {
		first.Allow()
	}

	assert.False(t, first.Allow())
	assert.True(t, second.Allow())
}

func TestBetLimiter_SameInstancePerUser(t *testing.T) {
	assert.Same(t, betLimiter(int64(999004)), betLimiter(int64(999004)))
}
