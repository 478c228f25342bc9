package service

import (
	"sync"
	"testing"

	"WinGoApi/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestExposureBook_OpenRoundStartsAtZero(t *testing.T) {
	book := newExposureBook(nil)
	book.OpenRound(1)

	snapshot, ok := book.Snapshot(1)
	assert.True(t, ok)
	assert.Len(t, snapshot, len(exposureBuckets))
	assert.Equal(t, 0.0, GrandTotal(snapshot))
}

func TestExposureBook_EachBetInExactlyOneBucket(t *testing.T) {
	book := newExposureBook(nil)
	book.OpenRound(1)

	book.Record(1, models.BetColor, ColorRed, 98)
	book.Record(1, models.BetNumber, "7", 49)
	book.Record(1, models.BetBigSmall, SideBig, 196)

	snapshot, ok := book.Snapshot(1)
	assert.True(t, ok)
	assert.InDelta(t, 98.0, snapshot[ColorRed], 0.001)
	assert.InDelta(t, 49.0, snapshot["7"], 0.001)
	assert.InDelta(t, 196.0, snapshot[SideBig], 0.001)
	assert.InDelta(t, 343.0, GrandTotal(snapshot), 0.001)
}

func TestExposureBook_ConcurrentRecords(t *testing.T) {
	book := newExposureBook(nil)
	book.OpenRound(1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			book.Record(1, models.BetColor, ColorGreen, 10)
			book.Record(1, models.BetNumber, "3", 5)
		}()
	}
	wg.Wait()

	snapshot, ok := book.Snapshot(1)
	assert.True(t, ok)
	assert.InDelta(t, 500.0, snapshot[ColorGreen], 0.001)
	assert.InDelta(t, 250.0, snapshot["3"], 0.001)
	assert.InDelta(t, 750.0, GrandTotal(snapshot), 0.001)
}

func TestExposureBook_SnapshotIsACopy(t *testing.T) {
	book := newExposureBook(nil)
	book.OpenRound(1)
	book.Record(1, models.BetColor, ColorRed, 100)

	snapshot, _ := book.Snapshot(1)
	snapshot[ColorRed] = 9999

	fresh, _ := book.Snapshot(1)
	assert.InDelta(t, 100.0, fresh[ColorRed], 0.001)
}

func TestExposureBook_RecordBeforeOpenRound(t *testing.T) {
	book := newExposureBook(nil)

	book.Record(7, models.BetBigSmall, SideSmall, 42)

	snapshot, ok := book.Snapshot(7)
	assert.True(t, ok)
	assert.InDelta(t, 42.0, snapshot[SideSmall], 0.001)
}

func TestExposureBook_ArchiveDropsRound(t *testing.T) {
	book := newExposureBook(nil)
	book.OpenRound(1)
	book.Record(1, models.BetColor, ColorViolet, 25)

	book.Archive(1)

	_, ok := book.Snapshot(1)
	assert.False(t, ok)
}

func TestBucketBets_CountsEveryStatus(t *testing.T) {
	// A settled round read after a restart must still show what was
	// staked, not all-zero buckets
	bets := []models.WingoBet{
		{Category: models.BetColor, Value: ColorRed, EffectiveAmount: 98, Status: models.BetWon},
		{Category: models.BetNumber, Value: "7", EffectiveAmount: 49, Status: models.BetLost},
		{Category: models.BetBigSmall, Value: SideBig, EffectiveAmount: 196, Status: models.BetPending},
		{Category: models.BetColor, Value: ColorRed, EffectiveAmount: 10, Status: models.BetVoided},
	}

	buckets := bucketBets(bets)

	assert.Len(t, buckets, len(exposureBuckets))
	assert.InDelta(t, 108.0, buckets[ColorRed], 0.001)
	assert.InDelta(t, 49.0, buckets["7"], 0.001)
	assert.InDelta(t, 196.0, buckets[SideBig], 0.001)
	assert.InDelta(t, 353.0, GrandTotal(buckets), 0.001)
}

func TestBucketBets_NoBetsYieldsZeroBuckets(t *testing.T) {
	buckets := bucketBets(nil)

	assert.Len(t, buckets, len(exposureBuckets))
	assert.Equal(t, 0.0, GrandTotal(buckets))
}

func TestExposureBook_RoundsAreIsolated(t *testing.T) {
	book := newExposureBook(nil)
	book.OpenRound(1)
	book.OpenRound(2)

	book.Record(1, models.BetColor, ColorRed, 50)
	book.Record(2, models.BetColor, ColorRed, 75)

	first, _ := book.Snapshot(1)
	second, _ := book.Snapshot(2)
	assert.InDelta(t, 50.0, first[ColorRed], 0.001)
	assert.InDelta(t, 75.0, second[ColorRed], 0.001)
}
