package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Story91/Gambly/internal/models"
	"github.com/Story91/Gambly/internal/store"
	"github.com/shopspring/decimal"
)

// StatsSource hydrates ranked addresses with their true counters. The
// sorted-set score carries the tiebreak fraction and is never displayed.
type StatsSource interface {
	GetStats(ctx context.Context, address string) models.UserStats
}

// Index maintains the two rankings as store sorted sets and serves
// paginated reads. Both rankings are updated at write time, O(log n) per
// spin, so reads never rescan the user population.
type Index struct {
	store store.Store
	stats StatsSource
}

func NewIndex(s store.Store, stats StatsSource) *Index {
	return &Index{store: s, stats: stats}
}

// Update upserts the address's position in the total_won ranking, and in
// the win_ratio ranking once it has at least one spin. An existing score
// is replaced, never accumulated.
func (idx *Index) Update(ctx context.Context, address string, stats models.UserStats) error {
	tiebreak := Tiebreak(address)

	totalWon, err := decimal.NewFromString(stats.TotalWon)
	if err != nil {
		return fmt.Errorf("invalid totalWon %q for %s: %w", stats.TotalWon, address, err)
	}
	score := totalWon.InexactFloat64() + tiebreak
	if err := idx.store.ZAdd(ctx, store.LeaderboardKey(models.RankingTotalWon), score, address); err != nil {
		return fmt.Errorf("failed to update total_won ranking: %w", err)
	}

	if stats.Spins > 0 {
		ratio := float64(stats.Wins) / float64(stats.Spins) * 100
		if err := idx.store.ZAdd(ctx, store.LeaderboardKey(models.RankingWinRatio), ratio+tiebreak, address); err != nil {
			return fmt.Errorf("failed to update win_ratio ranking: %w", err)
		}
	}
	return nil
}

// Query returns one page of a ranking, highest score first. Entries are
// hydrated from the stats source and winRatio recomputed, so displayed
// values never include the tiebreak fraction. An offset past the end of a
// populated ranking yields an empty page with hasMore=false, not an
// error. Limit is clamped to 1..50 as a second line of defense behind the
// HTTP boundary; offsets below zero are treated as zero.
func (idx *Index) Query(ctx context.Context, typ models.RankingType, limit, offset int) (models.LeaderboardResult, error) {
	if limit < 1 {
		limit = 1
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	key := store.LeaderboardKey(typ)

	total64, err := idx.store.ZCard(ctx, key)
	if err != nil {
		return models.LeaderboardResult{}, fmt.Errorf("failed to read %s cardinality: %w", typ, err)
	}
	total := int(total64)

	result := models.LeaderboardResult{
		Entries: []models.LeaderboardEntry{},
		Pagination: models.Pagination{
			Total:         total,
			HasMore:       false,
			CurrentOffset: offset,
			Limit:         limit,
		},
	}

	if total > 0 && offset >= total {
		return result, nil
	}

	members, err := idx.store.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1))
	if err != nil {
		return models.LeaderboardResult{}, fmt.Errorf("failed to read %s page: %w", typ, err)
	}

	for i, member := range members {
		stats := idx.stats.GetStats(ctx, member.Member)
		result.Entries = append(result.Entries, models.LeaderboardEntry{
			Rank:     offset + i + 1,
			Address:  member.Member,
			TotalWon: stats.TotalWon,
			Spins:    stats.Spins,
			Wins:     stats.Wins,
			WinRatio: FormatWinRatio(stats.Wins, stats.Spins),
		})
	}

	result.Pagination.HasMore = offset+len(result.Entries) < total
	return result, nil
}

// MaxPageSize bounds a leaderboard page so one request cannot fan out
// into unbounded per-entry hydration reads.
const MaxPageSize = 50

// Tiebreak derives a small deterministic fraction from the first eight
// hex characters of the address so equal raw scores still order stably
// across repeated queries. Malformed addresses fall back to zero and tie
// arbitrarily, the same as the store would.
func Tiebreak(address string) float64 {
	if len(address) < 10 {
		return 0
	}
	prefix, err := strconv.ParseUint(address[2:10], 16, 64)
	if err != nil {
		return 0
	}
	return float64(prefix) / 1e12
}

// FormatWinRatio renders the win percentage with one decimal place,
// "0.0" for addresses that have never spun.
func FormatWinRatio(wins, spins int) string {
	if spins == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(wins)/float64(spins)*100, 'f', 1, 64)
}
