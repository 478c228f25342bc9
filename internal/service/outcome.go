package service

import (
	"WinGoApi/internal/models"
)

const (
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorViolet = "violet"
	SideBig     = "big"
	SideSmall   = "small"
)

// Payout multipliers. Digits 0 and 5 belong to a color and violet at the
// same time, so a red/green win on them pays the reduced rate to offset
// the simultaneous violet payout.
const (
	ColorMultiplier     = 2.0
	ColorHalfMultiplier = 1.5
	VioletMultiplier    = 4.5
	NumberMultiplier    = 9.0
	BigSmallMultiplier  = 2.0
)

var digitNames = [10]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// DigitColor reports the color memberships of a declared digit.
func DigitColor(digit int) (red, green, violet bool) {
	red = digit%2 == 0
	green = digit%2 == 1
	violet = digit == 0 || digit == 5
	return
}

// ValidBetSelection reports whether value is legal for its category
func ValidBetSelection(category models.WingoBetCategory, value string) bool {
	switch category {
	case models.BetColor:
		return value == ColorRed || value == ColorGreen || value == ColorViolet
	case models.BetNumber:
		for _, d := range digitNames {
			if value == d {
				return true
			}
		}
		return false
	case models.BetBigSmall:
		return value == SideBig || value == SideSmall
	}
	return false
}

// EvaluateOutcome decides win/lose and the payout multiplier for one bet
// against the declared digit. Pure and deterministic; settlement and the
// placement-time potential payout both go through it.
func EvaluateOutcome(category models.WingoBetCategory, value string, digit int) (bool, float64) {
	if digit < 0 || digit > 9 || !ValidBetSelection(category, value) {
		return false, 0
	}

	red, green, violet := DigitColor(digit)

	switch category {
	case models.BetColor:
		switch value {
		case ColorRed:
			if !red {
				return false, 0
			}
			if violet {
				return true, ColorHalfMultiplier
			}
			return true, ColorMultiplier
		case ColorGreen:
			if !green {
				return false, 0
			}
			if violet {
				return true, ColorHalfMultiplier
			}
			return true, ColorMultiplier
		case ColorViolet:
			if violet {
				return true, VioletMultiplier
			}
			return false, 0
		}
	case models.BetNumber:
		if value == digitNames[digit] {
			return true, NumberMultiplier
		}
		return false, 0
	case models.BetBigSmall:
		if value == SideBig && digit >= 5 {
			return true, BigSmallMultiplier
		}
		if value == SideSmall && digit <= 4 {
			return true, BigSmallMultiplier
		}
		return false, 0
	}

	return false, 0
}

// BestCaseMultiplier is the display-time multiplier used for the potential
// payout shown when a bet is accepted. Not a settlement guarantee: a red
// bet settling on 0 pays the reduced rate.
func BestCaseMultiplier(category models.WingoBetCategory, value string) float64 {
	switch category {
	case models.BetColor:
		if value == ColorViolet {
			return VioletMultiplier
		}
		return ColorMultiplier
	case models.BetNumber:
		return NumberMultiplier
	case models.BetBigSmall:
		return BigSmallMultiplier
	}
	return 0
}
