package segment

import (
	"sort"

	"github.com/samber/lo"

	"ridelog/internal/store"
)

// Leaderboard orders results fastest first. Ties go to the earlier ride.
// The input is not modified.
func Leaderboard(results []store.SegmentResult) []store.SegmentResult {
	board := make([]store.SegmentResult, len(results))
	copy(board, results)
	sort.SliceStable(board, func(i, j int) bool {
		a, b := board[i], board[j]
		if a.DurationSeconds != b.DurationSeconds {
			return a.DurationSeconds < b.DurationSeconds
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	return board
}

// Rank places r on a leaderboard built by Leaderboard. A result missing
// from the board ranks after every result that is strictly faster.
func Rank(board []store.SegmentResult, seg *store.Segment, r store.SegmentResult) store.ActivitySegmentResult {
	out := store.ActivitySegmentResult{SegmentResult: r, SegmentName: seg.Name, Rank: 1}

	if _, idx, found := lo.FindIndexOf(board, func(b store.SegmentResult) bool {
		return b.ID != 0 && b.ID == r.ID
	}); found {
		out.Rank = idx + 1
	} else {
		out.Rank = lo.CountBy(board, func(b store.SegmentResult) bool {
			return b.DurationSeconds < r.DurationSeconds
		}) + 1
	}

	if len(board) > 0 && board[0].DurationSeconds < r.DurationSeconds {
		out.BehindSeconds = r.DurationSeconds - board[0].DurationSeconds
	}
	return out
}
