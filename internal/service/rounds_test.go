package service

import (
	"testing"
	"time"

	"WinGoApi/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCurrentRoundRegistry_SetAndGet(t *testing.T) {
	round := &models.WingoRound{ID: 101, Track: 1, Status: models.RoundActive,
		ClosesAt: time.Now().Add(time.Minute)}

	setCurrentRound(1, round)
	defer clearCurrentRound(1, 101)

	got := CurrentRound(1)
	assert.NotNil(t, got)
	assert.Equal(t, int64(101), got.ID)
}

func TestCurrentRoundRegistry_TracksAreIndependent(t *testing.T) {
	one := &models.WingoRound{ID: 201, Track: 1}
	three := &models.WingoRound{ID: 202, Track: 3}

	setCurrentRound(1, one)
	setCurrentRound(3, three)
	defer clearCurrentRound(1, 201)
	defer clearCurrentRound(3, 202)

	assert.Equal(t, int64(201), CurrentRound(1).ID)
	assert.Equal(t, int64(202), CurrentRound(3).ID)
}

func TestCurrentRoundRegistry_ClearOnlyMatchingRound(t *testing.T) {
	round := &models.WingoRound{ID: 301, Track: 5}
	setCurrentRound(5, round)
	defer clearCurrentRound(5, 301)

	// A stale clear from an older round must not evict the current one
	clearCurrentRound(5, 300)
	assert.NotNil(t, CurrentRound(5))

	clearCurrentRound(5, 301)
	assert.Nil(t, CurrentRound(5))
}

func TestCurrentRoundRegistry_EmptyTrack(t *testing.T) {
	assert.Nil(t, CurrentRound(99))
}

func TestWingoTrackLimits_CoverEveryTrack(t *testing.T) {
	for _, track := range WingoTracks {
		limits, ok := wingoTrackLimits[track]
		assert.True(t, ok, "track %d", track)
		assert.Greater(t, limits.MaxStake, limits.MinStake, "track %d", track)
	}
}
