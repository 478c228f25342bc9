package service

import (
	"strconv"
	"testing"

	"WinGoApi/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateOutcomeDeterministic(t *testing.T) {
	selections := []struct {
		category models.WingoBetCategory
		value    string
	}{
		{models.BetColor, ColorRed},
		{models.BetColor, ColorGreen},
		{models.BetColor, ColorViolet},
		{models.BetBigSmall, SideBig},
		{models.BetBigSmall, SideSmall},
	}
	for d := 0; d <= 9; d++ {
		selections = append(selections, struct {
			category models.WingoBetCategory
			value    string
		}{models.BetNumber, strconv.Itoa(d)})
	}

	for _, sel := range selections {
		for digit := 0; digit <= 9; digit++ {
			won1, m1 := EvaluateOutcome(sel.category, sel.value, digit)
			won2, m2 := EvaluateOutcome(sel.category, sel.value, digit)
			assert.Equal(t, won1, won2, "%s/%s digit %d", sel.category, sel.value, digit)
			assert.Equal(t, m1, m2, "%s/%s digit %d", sel.category, sel.value, digit)
		}
	}
}

func TestEvaluateOutcome_RedWinsOnEvenDigits(t *testing.T) {
	for _, digit := range []int{2, 4, 6, 8} {
		won, m := EvaluateOutcome(models.BetColor, ColorRed, digit)
		assert.True(t, won, "digit %d", digit)
		assert.Equal(t, ColorMultiplier, m, "digit %d", digit)
	}
	for _, digit := range []int{1, 3, 5, 7, 9} {
		won, _ := EvaluateOutcome(models.BetColor, ColorRed, digit)
		assert.False(t, won, "digit %d", digit)
	}
}

func TestEvaluateOutcome_DualDigitsPayReducedColorRate(t *testing.T) {
	won, m := EvaluateOutcome(models.BetColor, ColorRed, 0)
	assert.True(t, won)
	assert.Equal(t, ColorHalfMultiplier, m)

	won, m = EvaluateOutcome(models.BetColor, ColorGreen, 5)
	assert.True(t, won)
	assert.Equal(t, ColorHalfMultiplier, m)
}

func TestEvaluateOutcome_GreenWinsOnOddDigits(t *testing.T) {
	for _, digit := range []int{1, 3, 7, 9} {
		won, m := EvaluateOutcome(models.BetColor, ColorGreen, digit)
		assert.True(t, won, "digit %d", digit)
		assert.Equal(t, ColorMultiplier, m, "digit %d", digit)
	}
	won, _ := EvaluateOutcome(models.BetColor, ColorGreen, 4)
	assert.False(t, won)
}

func TestEvaluateOutcome_VioletFixedMultiplier(t *testing.T) {
	for _, digit := range []int{0, 5} {
		won, m := EvaluateOutcome(models.BetColor, ColorViolet, digit)
		assert.True(t, won, "digit %d", digit)
		assert.Equal(t, VioletMultiplier, m, "digit %d", digit)
	}
	for _, digit := range []int{1, 2, 3, 4, 6, 7, 8, 9} {
		won, _ := EvaluateOutcome(models.BetColor, ColorViolet, digit)
		assert.False(t, won, "digit %d", digit)
	}
}

func TestEvaluateOutcome_ExactNumber(t *testing.T) {
	won, m := EvaluateOutcome(models.BetNumber, "7", 7)
	assert.True(t, won)
	assert.Equal(t, NumberMultiplier, m)

	won, _ = EvaluateOutcome(models.BetNumber, "7", 3)
	assert.False(t, won)
}

func TestEvaluateOutcome_BigSmallBoundary(t *testing.T) {
	won, m := EvaluateOutcome(models.BetBigSmall, SideBig, 5)
	assert.True(t, won)
	assert.Equal(t, BigSmallMultiplier, m)

	won, _ = EvaluateOutcome(models.BetBigSmall, SideBig, 4)
	assert.False(t, won)

	won, _ = EvaluateOutcome(models.BetBigSmall, SideSmall, 4)
	assert.True(t, won)

	won, _ = EvaluateOutcome(models.BetBigSmall, SideSmall, 5)
	assert.False(t, won)
}

func TestEvaluateOutcome_IllegalInputs(t *testing.T) {
	won, m := EvaluateOutcome(models.BetColor, "blue", 3)
	assert.False(t, won)
	assert.Equal(t, 0.0, m)

	won, m = EvaluateOutcome(models.BetNumber, "7", 10)
	assert.False(t, won)
	assert.Equal(t, 0.0, m)

	won, m = EvaluateOutcome(models.BetNumber, "7", -1)
	assert.False(t, won)
	assert.Equal(t, 0.0, m)
}

func TestValidBetSelection(t *testing.T) {
	assert.True(t, ValidBetSelection(models.BetColor, ColorRed))
	assert.True(t, ValidBetSelection(models.BetColor, ColorViolet))
	assert.True(t, ValidBetSelection(models.BetNumber, "0"))
	assert.True(t, ValidBetSelection(models.BetNumber, "9"))
	assert.True(t, ValidBetSelection(models.BetBigSmall, SideBig))

	assert.False(t, ValidBetSelection(models.BetColor, "blue"))
	assert.False(t, ValidBetSelection(models.BetNumber, "10"))
	assert.False(t, ValidBetSelection(models.BetNumber, "red"))
	assert.False(t, ValidBetSelection(models.BetBigSmall, "medium"))
	assert.False(t, ValidBetSelection(models.WingoBetCategory("parity"), "odd"))
}

func TestBestCaseMultiplier(t *testing.T) {
	assert.Equal(t, ColorMultiplier, BestCaseMultiplier(models.BetColor, ColorRed))
	assert.Equal(t, VioletMultiplier, BestCaseMultiplier(models.BetColor, ColorViolet))
	assert.Equal(t, NumberMultiplier, BestCaseMultiplier(models.BetNumber, "4"))
	assert.Equal(t, BigSmallMultiplier, BestCaseMultiplier(models.BetBigSmall, SideSmall))
}
