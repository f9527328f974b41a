package leaderboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/Story91/Gambly/internal/models"
	"github.com/Story91/Gambly/internal/stats"
	"github.com/Story91/Gambly/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) (*Index, *stats.Repository) {
	t.Helper()
	mem := storetest.New()
	repo := stats.NewRepository(mem)
	return NewIndex(mem, repo), repo
}

// spinFor records a spin and reindexes, the way the service layer does.
func spinFor(t *testing.T, idx *Index, repo *stats.Repository, address string, isWin bool, tokensWon string) {
	t.Helper()
	ctx := context.Background()
	updated, err := repo.RecordSpin(ctx, address, isWin, tokensWon)
	require.NoError(t, err)
	require.NoError(t, idx.Update(ctx, address, updated))
}

func TestTiebreakDeterministic(t *testing.T) {
	a := Tiebreak("0xaaaaaaaa000000000000000000000000000000ff")
	b := Tiebreak("0xaaaaaaab000000000000000000000000000000ff")

	assert.Equal(t, a, Tiebreak("0xaaaaaaaa000000000000000000000000000000ff"))
	assert.NotEqual(t, a, b)
	assert.Greater(t, b, a)
	assert.Less(t, a, 0.005) // well below one token
	assert.Zero(t, Tiebreak("0xzz"))
}

func TestFormatWinRatio(t *testing.T) {
	assert.Equal(t, "0.0", FormatWinRatio(0, 0))
	assert.Equal(t, "0.0", FormatWinRatio(0, 5))
	assert.Equal(t, "66.7", FormatWinRatio(2, 3))
	assert.Equal(t, "100.0", FormatWinRatio(4, 4))
	assert.Equal(t, "33.3", FormatWinRatio(1, 3))
}

func TestQueryRanksByTotalWon(t *testing.T) {
	ctx := context.Background()
	idx, repo := newTestIndex(t)

	low := "0x1111111100000000000000000000000000000001"
	high := "0x2222222200000000000000000000000000000002"
	spinFor(t, idx, repo, low, true, "50")
	spinFor(t, idx, repo, high, true, "100")

	page, err := idx.Query(ctx, models.RankingTotalWon, 10, 0)
	require.NoError(t, err)

	require.Len(t, page.Entries, 2)
	assert.Equal(t, high, page.Entries[0].Address)
	assert.Equal(t, 1, page.Entries[0].Rank)
	assert.Equal(t, "100", page.Entries[0].TotalWon)
	assert.Equal(t, low, page.Entries[1].Address)
	assert.Equal(t, 2, page.Entries[1].Rank)
	assert.Equal(t, "50", page.Entries[1].TotalWon)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.False(t, page.Pagination.HasMore)
}

func TestQueryTiesBrokenDeterministically(t *testing.T) {
	ctx := context.Background()
	idx, repo := newTestIndex(t)

	// Two users tied at 100, one at 50. The address tiebreak must order
	// the tied pair the same way on every query.
	a := "0x3333333300000000000000000000000000000003"
	b := "0x4444444400000000000000000000000000000004"
	c := "0x5555555500000000000000000000000000000005"
	spinFor(t, idx, repo, a, true, "100")
	spinFor(t, idx, repo, b, true, "50")
	spinFor(t, idx, repo, c, true, "100")

	first, err := idx.Query(ctx, models.RankingTotalWon, 2, 0)
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "100", first.Entries[0].TotalWon)
	assert.Equal(t, "100", first.Entries[1].TotalWon)
	assert.Equal(t, []int{1, 2}, []int{first.Entries[0].Rank, first.Entries[1].Rank})

	// c's address prefix is larger than a's, so c scores higher.
	assert.Equal(t, c, first.Entries[0].Address)
	assert.Equal(t, a, first.Entries[1].Address)

	for i := 0; i < 5; i++ {
		again, err := idx.Query(ctx, models.RankingTotalWon, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, first.Entries, again.Entries)
	}
}

func TestQueryWinRatioExcludesZeroSpins(t *testing.T) {
	ctx := context.Background()
	idx, repo := newTestIndex(t)

	spinner := "0x6666666600000000000000000000000000000006"
	idle := "0x7777777700000000000000000000000000000007"
	spinFor(t, idx, repo, spinner, true, "10")

	// Updating a zero-spin account indexes it under total_won but must
	// keep it out of win_ratio.
	require.NoError(t, repo.EnsureAccount(ctx, idle))
	require.NoError(t, idx.Update(ctx, idle, repo.GetStats(ctx, idle)))

	totalWon, err := idx.Query(ctx, models.RankingTotalWon, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, totalWon.Pagination.Total)

	winRatio, err := idx.Query(ctx, models.RankingWinRatio, 10, 0)
	require.NoError(t, err)
	require.Len(t, winRatio.Entries, 1)
	assert.Equal(t, spinner, winRatio.Entries[0].Address)
	assert.Equal(t, "100.0", winRatio.Entries[0].WinRatio)
}

func TestQueryUpsertReplacesScore(t *testing.T) {
	ctx := context.Background()
	idx, repo := newTestIndex(t)

	address := "0x8888888800000000000000000000000000000008"
	spinFor(t, idx, repo, address, true, "10")
	spinFor(t, idx, repo, address, false, "0")

	page, err := idx.Query(ctx, models.RankingWinRatio, 10, 0)
	require.NoError(t, err)

	// 1 win out of 2 spins: the old 100% score must be gone.
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "50.0", page.Entries[0].WinRatio)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestQueryOffsetPastEndReturnsEmptyPage(t *testing.T) {
	ctx := context.Background()
	idx, repo := newTestIndex(t)

	for i := 0; i < 3; i++ {
		spinFor(t, idx, repo, fmt.Sprintf("0x%08x00000000000000000000000000000000", i+1), true, "10")
	}

	page, err := idx.Query(ctx, models.RankingTotalWon, 10, 1000)
	require.NoError(t, err)

	assert.Empty(t, page.Entries)
	assert.Equal(t, models.Pagination{
		Total:         3,
		HasMore:       false,
		CurrentOffset: 1000,
		Limit:         10,
	}, page.Pagination)
}

func TestQueryEmptyRanking(t *testing.T) {
	idx, _ := newTestIndex(t)

	page, err := idx.Query(context.Background(), models.RankingTotalWon, 10, 0)
	require.NoError(t, err)

	assert.Empty(t, page.Entries)
	assert.Equal(t, 0, page.Pagination.Total)
	assert.False(t, page.Pagination.HasMore)
}

func TestQueryPaginationWalk(t *testing.T) {
	ctx := context.Background()
	idx, repo := newTestIndex(t)

	const users = 7
	for i := 0; i < users; i++ {
		address := fmt.Sprintf("0x%08x00000000000000000000000000000000", i+1)
		spinFor(t, idx, repo, address, i%2 == 0, fmt.Sprintf("%d", (i+1)*10))
	}

	const limit = 3
	seen := make(map[string]bool)
	var ranks []int
	offset := 0
	for {
		page, err := idx.Query(ctx, models.RankingTotalWon, limit, offset)
		require.NoError(t, err)
		assert.Equal(t, users, page.Pagination.Total)

		for _, entry := range page.Entries {
			assert.False(t, seen[entry.Address], "duplicate address %s", entry.Address)
			seen[entry.Address] = true
			ranks = append(ranks, entry.Rank)
		}
		if !page.Pagination.HasMore {
			break
		}
		offset += len(page.Entries)
	}

	assert.Len(t, seen, users)
	for i, rank := range ranks {
		assert.Equal(t, i+1, rank, "ranks must be contiguous 1..total")
	}
}

func TestQueryClampsOutOfRangeInputs(t *testing.T) {
	ctx := context.Background()
	idx, repo := newTestIndex(t)
	spinFor(t, idx, repo, "0x9999999900000000000000000000000000000009", true, "10")

	page, err := idx.Query(ctx, models.RankingTotalWon, 500, -5)
	require.NoError(t, err)

	assert.Equal(t, MaxPageSize, page.Pagination.Limit)
	assert.Equal(t, 0, page.Pagination.CurrentOffset)
	assert.Len(t, page.Entries, 1)
}
