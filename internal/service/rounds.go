package service

import (
	"WinGoApi/cmd/db"
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WingoTracks are the round durations (minutes) run in parallel.
// Each track is an independent lane with its own supervised loop.
var WingoTracks = []int{1, 3, 5}

type trackLimit struct {
	MinStake float64
	MaxStake float64
}

var wingoTrackLimits = map[int]trackLimit{
	1: {MinStake: 10, MaxStake: 50000},
	3: {MinStake: 10, MaxStake: 100000},
	5: {MinStake: 10, MaxStake: 200000},
}

// currentRounds is the owned per-track registry of the single active
// round. Only the scheduler replaces entries.
var (
	currentRounds      = make(map[int]*models.WingoRound)
	currentRoundsMutex sync.RWMutex
)

func setCurrentRound(track int, round *models.WingoRound) {
	currentRoundsMutex.Lock()
	currentRounds[track] = round
	currentRoundsMutex.Unlock()
}

func clearCurrentRound(track int, roundID int64) {
	currentRoundsMutex.Lock()
	if r, ok := currentRounds[track]; ok && r.ID == roundID {
		delete(currentRounds, track)
	}
	currentRoundsMutex.Unlock()
}

// CurrentRound returns the active round of a track, or nil
func CurrentRound(track int) *models.WingoRound {
	currentRoundsMutex.RLock()
	defer currentRoundsMutex.RUnlock()
	return currentRounds[track]
}

// SuperviseWingoTrack keeps one track's round loop alive across panics
func SuperviseWingoTrack(track int) {
	for {
		logger.Info("Starting wingo round loop for %d minute track", track)

		done := make(chan bool)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Wingo %d minute track loop panicked: %v", track, r)
					done <- true
				}
			}()

			runWingoTrack(track)
		}()

		<-done

		time.Sleep(5 * time.Second)
	}
}

func runWingoTrack(track int) {
	duration := time.Duration(track) * time.Minute

	if err := recoverInterruptedRound(track); err != nil {
		logger.Error("Unable to recover interrupted round on track %d: %v", track, err)
	}

	for {
		round, err := takeNextScheduledRound(track, duration)
		if err != nil {
			logger.Error("Unable to open round on track %d; retrying in 5 seconds: %v", track, err)
			time.Sleep(5 * time.Second)
			continue
		}

		// Wall-clock driven: the round opens at its own open time, with or
		// without any traffic.
		if wait := time.Until(round.OpensAt); wait > 0 {
			time.Sleep(wait)
		}

		moved, err := models.TransitionRoundStatus(nil, round.ID, models.RoundScheduled, models.RoundActive)
		if err != nil || !moved {
			logger.Error("Unable to activate round %d on track %d: %v", round.ID, track, err)
			time.Sleep(time.Second)
			continue
		}
		round.Status = models.RoundActive

		setCurrentRound(track, round)
		WingoExposure.OpenRound(round.ID)
		WingoWS.BroadcastRoundOpened(round)
		logger.Info("Round %d (track %d, seq %d) is open until %s",
			round.ID, track, round.Sequence, round.ClosesAt.Format(time.RFC3339))

		// Players always see a next round while this one runs
		if _, err := scheduleRound(track, round.ClosesAt, duration); err != nil {
			logger.Error("Unable to schedule next round on track %d: %v", track, err)
		}

		time.Sleep(time.Until(round.ClosesAt))

		moved, err = models.TransitionRoundStatus(nil, round.ID, models.RoundActive, models.RoundClosed)
		if err != nil {
			logger.Error("Unable to close round %d: %v", round.ID, err)
		} else if moved {
			logger.Info("Round %d (track %d) closed, awaiting result", round.ID, track)
		}
		clearCurrentRound(track, round.ID)
		round.Status = models.RoundClosed
		WingoWS.BroadcastBettingClosed(round)
	}
}

// takeNextScheduledRound reuses the scheduled round created during the
// previous cycle, or creates a fresh one opening now
func takeNextScheduledRound(track int, duration time.Duration) (*models.WingoRound, error) {
	var round models.WingoRound
	err := db.DB.Where("track = ? AND status = ?", track, models.RoundScheduled).
		Order("sequence asc").
		First(&round).Error
	if err == nil {
		// A scheduled round whose window already fully passed (long
		// downtime) is rescheduled to open now
		if time.Now().After(round.ClosesAt) {
			round.OpensAt = time.Now()
			round.ClosesAt = round.OpensAt.Add(duration)
			if err := db.DB.Model(&round).
				Updates(map[string]interface{}{"opens_at": round.OpensAt, "closes_at": round.ClosesAt}).Error; err != nil {
				return nil, logger.WrapError(err, "")
			}
		}
		return &round, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, logger.WrapError(err, "")
	}

	return scheduleRound(track, time.Now(), duration)
}

// scheduleRound creates the next round of a track in the scheduled state
func scheduleRound(track int, opensAt time.Time, duration time.Duration) (*models.WingoRound, error) {
	var round *models.WingoRound
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		seq, err := models.NextRoundSequence(tx, track)
		if err != nil {
			return logger.WrapError(err, "")
		}

		// The previous cycle may have left the next round behind already
		var existing models.WingoRound
		err = tx.Where("track = ? AND status = ?", track, models.RoundScheduled).
			Order("sequence asc").First(&existing).Error
		if err == nil {
			round = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return logger.WrapError(err, "")
		}

		round = &models.WingoRound{
			Track:    track,
			Sequence: seq,
			Status:   models.RoundScheduled,
			OpensAt:  opensAt,
			ClosesAt: opensAt.Add(duration),
		}
		if err := tx.Create(round).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return round, nil
}

// recoverInterruptedRound closes out a round left active by a crash.
// If its window is still open the loop re-adopts it instead.
func recoverInterruptedRound(track int) error {
	round, err := models.GetActiveRound(nil, track)
	if err != nil {
		return logger.WrapError(err, "")
	}
	if round == nil {
		return nil
	}

	if time.Now().Before(round.ClosesAt) {
		setCurrentRound(track, round)
		if err := WingoExposure.RebuildFromBets(round.ID); err != nil {
			logger.Error("Unable to rebuild exposure for round %d: %v", round.ID, err)
		}
		time.Sleep(time.Until(round.ClosesAt))
	}

	if _, err := models.TransitionRoundStatus(nil, round.ID, models.RoundActive, models.RoundClosed); err != nil {
		return logger.WrapError(err, "")
	}
	clearCurrentRound(track, round.ID)

	return nil
}

func parseTrackQuery(c *gin.Context) (int, bool) {
	track, err := strconv.Atoi(c.DefaultQuery("track", "1"))
	if err != nil {
		return 0, false
	}
	if _, ok := wingoTrackLimits[track]; !ok {
		return 0, false
	}
	return track, true
}

// GetCurrentWingoRound handles GET requests for the active round of one track
func GetCurrentWingoRound(c *gin.Context) {
	track, ok := parseTrackQuery(c)
	if !ok {
		c.JSON(400, gin.H{"error": "unknown track"})
		return
	}

	round := CurrentRound(track)
	if round == nil {
		var err error
		round, err = models.GetActiveRound(nil, track)
		if err != nil {
			logger.Error("%v", err)
			c.Status(500)
			return
		}
	}
	if round == nil {
		c.JSON(404, gin.H{"error": "no active round"})
		return
	}

	limits := wingoTrackLimits[track]
	c.JSON(200, gin.H{
		"round":     round,
		"min_stake": limits.MinStake,
		"max_stake": limits.MaxStake,
		"closes_in": time.Until(round.ClosesAt).Seconds(),
	})
}

// GetWingoRoundHistory handles GET requests for recent finished rounds
func GetWingoRoundHistory(c *gin.Context) {
	track, ok := parseTrackQuery(c)
	if !ok {
		c.JSON(400, gin.H{"error": "unknown track"})
		return
	}

	rounds, err := models.GetRecentRounds(nil, track, 20)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, rounds)
}
