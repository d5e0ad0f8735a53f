package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ridelog/internal/store"
)

func TestLeaderboard(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 8, 0, 0, 0, time.UTC) }
	results := []store.SegmentResult{
		{ID: 1, DurationSeconds: 300, Date: day(1)},
		{ID: 2, DurationSeconds: 280, Date: day(3)},
		{ID: 3, DurationSeconds: 280, Date: day(2)},
		{ID: 4, DurationSeconds: 310, Date: day(4)},
	}

	board := Leaderboard(results)
	ids := make([]int64, len(board))
	for i, r := range board {
		ids[i] = r.ID
	}
	assert.Equal(t, []int64{3, 2, 1, 4}, ids)
	assert.Equal(t, int64(1), results[0].ID, "input is not modified")
}

func TestRank(t *testing.T) {
	seg := &store.Segment{ID: 7, Name: "Col climb"}
	board := Leaderboard([]store.SegmentResult{
		{ID: 1, DurationSeconds: 300},
		{ID: 2, DurationSeconds: 280},
		{ID: 3, DurationSeconds: 320},
	})

	got := Rank(board, seg, board[2])
	assert.Equal(t, "Col climb", got.SegmentName)
	assert.Equal(t, 3, got.Rank)
	assert.Equal(t, 40, got.BehindSeconds)

	got = Rank(board, seg, board[0])
	assert.Equal(t, 1, got.Rank)
	assert.Equal(t, 0, got.BehindSeconds)

	// not yet saved
	got = Rank(board, seg, store.SegmentResult{DurationSeconds: 290})
	assert.Equal(t, 2, got.Rank)
	assert.Equal(t, 10, got.BehindSeconds)

	got = Rank(nil, seg, store.SegmentResult{DurationSeconds: 290})
	assert.Equal(t, 1, got.Rank)
	assert.Equal(t, 0, got.BehindSeconds)
}
