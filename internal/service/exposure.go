package service

import (
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
	"WinGoApi/pkg/redis"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Exposure buckets shown to the operator before a result is declared.
// Every bet lands in exactly one bucket, so the grand total is the plain
// sum over all buckets and nothing is counted twice.
var exposureBuckets = []string{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	ColorRed, ColorGreen, ColorViolet, SideBig, SideSmall,
}

const exposureArchiveTTL = 24 * time.Hour

var WingoExposure *ExposureBook

// ExposureBook keeps per-round stake totals per outcome bucket. The
// in-memory map is the source of truth for snapshots; the Redis hash is a
// mirror that survives restarts and feeds external dashboards.
type ExposureBook struct {
	mu           sync.RWMutex
	rounds       map[int64]map[string]float64
	redisService *redis.RedisService
}

func InitExposureBook(redisService *redis.RedisService) {
	WingoExposure = newExposureBook(redisService)
}

func newExposureBook(redisService *redis.RedisService) *ExposureBook {
	return &ExposureBook{
		rounds:       make(map[int64]map[string]float64),
		redisService: redisService,
	}
}

func exposureKey(roundID int64) string {
	return fmt.Sprintf("wingo:exposure:%d", roundID)
}

// betBucket maps a bet selection onto its exposure bucket. A number bet
// contributes to its digit bucket only; color and big/small bets to their
// own bucket.
func betBucket(category models.WingoBetCategory, value string) string {
	return value
}

// OpenRound initializes all-zero buckets for a freshly activated round
func (e *ExposureBook) OpenRound(roundID int64) {
	e.mu.Lock()
	buckets := make(map[string]float64, len(exposureBuckets))
	for _, b := range exposureBuckets {
		buckets[b] = 0
	}
	e.rounds[roundID] = buckets
	e.mu.Unlock()

	if e.redisService == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.redisService.DeleteKey(ctx, exposureKey(roundID)); err != nil {
		logger.Warn("Unable to reset exposure mirror for round %d: %v", roundID, err)
	}
}

// Record adds an accepted bet's effective stake to its bucket. Increments
// never block bet placement on readers; the Redis mirror is best effort.
func (e *ExposureBook) Record(roundID int64, category models.WingoBetCategory, value string, effectiveStake float64) {
	bucket := betBucket(category, value)

	e.mu.Lock()
	buckets, ok := e.rounds[roundID]
	if !ok {
		buckets = make(map[string]float64, len(exposureBuckets))
		e.rounds[roundID] = buckets
	}
	buckets[bucket] += effectiveStake
	e.mu.Unlock()

	if e.redisService == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.redisService.IncrHashField(ctx, exposureKey(roundID), bucket, effectiveStake); err != nil {
		logger.Warn("Unable to mirror exposure for round %d: %v", roundID, err)
	}
}

// Snapshot returns a point-in-time copy of the round's buckets.
// Safe to call concurrently with ongoing Record calls.
func (e *ExposureBook) Snapshot(roundID int64) (map[string]float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	buckets, ok := e.rounds[roundID]
	if !ok {
		return nil, false
	}

	snapshot := make(map[string]float64, len(buckets))
	for b, total := range buckets {
		snapshot[b] = total
	}

	return snapshot, true
}

// GrandTotal sums every bucket of a snapshot
func GrandTotal(snapshot map[string]float64) float64 {
	var total float64
	for _, v := range snapshot {
		total += v
	}
	return total
}

// Archive drops a settled round from memory and lets the Redis mirror
// expire instead of deleting it, so operators can still audit it briefly.
func (e *ExposureBook) Archive(roundID int64) {
	e.mu.Lock()
	delete(e.rounds, roundID)
	e.mu.Unlock()

	if e.redisService == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.redisService.Client().Expire(ctx, exposureKey(roundID), exposureArchiveTTL).Err(); err != nil {
		logger.Warn("Unable to expire exposure mirror for round %d: %v", roundID, err)
	}
}

// bucketBets folds a round's bets into fresh all-zero buckets. Status is
// irrelevant: exposure is what was staked, and a settled or voided bet
// staked the same as a pending one.
func bucketBets(bets []models.WingoBet) map[string]float64 {
	buckets := make(map[string]float64, len(exposureBuckets))
	for _, b := range exposureBuckets {
		buckets[b] = 0
	}
	for _, bet := range bets {
		buckets[betBucket(bet.Category, bet.Value)] += bet.EffectiveAmount
	}
	return buckets
}

// RebuildFromBets reconstructs a round's buckets from the bet table.
// Used after a restart and as a consistency check; the book has no
// bearing on settlement correctness.
func (e *ExposureBook) RebuildFromBets(roundID int64) error {
	bets, err := models.GetBetsForRound(nil, roundID)
	if err != nil {
		return logger.WrapError(err, "")
	}

	buckets := bucketBets(bets)

	e.mu.Lock()
	e.rounds[roundID] = buckets
	e.mu.Unlock()

	return nil
}

// GetRoundExposure handles GET requests for the operator exposure view
func GetRoundExposure(c *gin.Context) {
	roundID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid round id"})
		return
	}

	snapshot, ok := WingoExposure.Snapshot(roundID)
	if !ok {
		// Round may predate this process; fall back to the bet table
		if err := WingoExposure.RebuildFromBets(roundID); err != nil {
			logger.Error("%v", err)
			c.Status(500)
			return
		}
		snapshot, _ = WingoExposure.Snapshot(roundID)
	}

	c.JSON(200, gin.H{
		"round_id": roundID,
		"buckets":  snapshot,
		"total":    GrandTotal(snapshot),
	})
}
