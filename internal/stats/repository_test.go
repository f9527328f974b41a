package stats

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Story91/Gambly/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1"

func TestEnsureAccountIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New())

	require.NoError(t, repo.EnsureAccount(ctx, addr))
	first := repo.GetStats(ctx, addr)

	require.NoError(t, repo.EnsureAccount(ctx, addr))
	second := repo.GetStats(ctx, addr)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, second.Spins)
	assert.Equal(t, 0, second.Wins)
	assert.Equal(t, "0", second.TotalWon)
	assert.NotZero(t, second.FirstSeen)
}

func TestGetStatsUnknownAddressIsZero(t *testing.T) {
	repo := NewRepository(storetest.New())

	stats := repo.GetStats(context.Background(), "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	assert.Equal(t, 0, stats.Spins)
	assert.Equal(t, 0, stats.Wins)
	assert.Equal(t, "0", stats.TotalWon)
	assert.Zero(t, stats.FirstSeen)
	assert.Zero(t, stats.LastSeen)
}

func TestGetStatsDegradesOnStoreFailure(t *testing.T) {
	mem := storetest.New()
	repo := NewRepository(mem)
	mem.FailWith(errors.New("connection refused"))

	stats := repo.GetStats(context.Background(), addr)

	assert.Equal(t, 0, stats.Spins)
	assert.Equal(t, "0", stats.TotalWon)
}

func TestRecordSpinCounters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New())

	// win, lose, win with winnings 10, 0, 5
	_, err := repo.RecordSpin(ctx, addr, true, "10")
	require.NoError(t, err)
	_, err = repo.RecordSpin(ctx, addr, false, "0")
	require.NoError(t, err)
	updated, err := repo.RecordSpin(ctx, addr, true, "5")
	require.NoError(t, err)

	assert.Equal(t, 3, updated.Spins)
	assert.Equal(t, 2, updated.Wins)
	assert.Equal(t, "15", updated.TotalWon)
	assert.NotZero(t, updated.FirstSeen)
	assert.GreaterOrEqual(t, updated.LastSeen, updated.FirstSeen)
}

func TestRecordSpinExactDecimalSum(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New())

	// Classic float trap: 0.1 + 0.2 must come out as exactly 0.3.
	_, err := repo.RecordSpin(ctx, addr, true, "0.1")
	require.NoError(t, err)
	updated, err := repo.RecordSpin(ctx, addr, true, "0.2")
	require.NoError(t, err)

	assert.Equal(t, "0.3", updated.TotalWon)
}

func TestRecordSpinEmptyAmountCountsAsZero(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New())

	updated, err := repo.RecordSpin(ctx, addr, false, "")
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Spins)
	assert.Equal(t, "0", updated.TotalWon)
}

func TestRecordSpinRejectsMalformedAmount(t *testing.T) {
	repo := NewRepository(storetest.New())

	_, err := repo.RecordSpin(context.Background(), addr, true, "ten tokens")

	assert.Error(t, err)
}

func TestRecordSpinSurfacesStoreFailure(t *testing.T) {
	mem := storetest.New()
	repo := NewRepository(mem)
	mem.FailWith(errors.New("connection refused"))

	_, err := repo.RecordSpin(context.Background(), addr, true, "10")

	assert.Error(t, err)
}

func TestRecordSpinFirstSeenImmutable(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New())

	first, err := repo.RecordSpin(ctx, addr, false, "0")
	require.NoError(t, err)
	second, err := repo.RecordSpin(ctx, addr, false, "0")
	require.NoError(t, err)

	assert.Equal(t, first.FirstSeen, second.FirstSeen)
}

func TestRecordSpinConcurrentSameAddress(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New())

	const spins = 50
	var wg sync.WaitGroup
	for i := 0; i < spins; i++ {
		wg.Add(1)
		go func(win bool) {
			defer wg.Done()
			_, err := repo.RecordSpin(ctx, addr, win, "1")
			assert.NoError(t, err)
		}(i%2 == 0)
	}
	wg.Wait()

	stats := repo.GetStats(ctx, addr)
	assert.Equal(t, spins, stats.Spins)
	assert.Equal(t, spins/2, stats.Wins)
	assert.Equal(t, "50", stats.TotalWon)
	assert.LessOrEqual(t, stats.Wins, stats.Spins)
}

func TestIncrementGlobal(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New())

	require.NoError(t, repo.IncrementGlobal(ctx, true))
	require.NoError(t, repo.IncrementGlobal(ctx, false))
	require.NoError(t, repo.IncrementGlobal(ctx, true))

	global := repo.GetGlobal(ctx)
	assert.Equal(t, 3, global.TotalGames)
	assert.Equal(t, 2, global.TotalWins)
}

func TestGetGlobalDegradesOnStoreFailure(t *testing.T) {
	mem := storetest.New()
	repo := NewRepository(mem)
	mem.FailWith(errors.New("connection refused"))

	global := repo.GetGlobal(context.Background())

	assert.Zero(t, global.TotalGames)
	assert.Zero(t, global.TotalWins)
}

func TestAllStats(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New())

	other := "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2"
	_, err := repo.RecordSpin(ctx, addr, true, "10")
	require.NoError(t, err)
	_, err = repo.RecordSpin(ctx, other, false, "0")
	require.NoError(t, err)
	require.NoError(t, repo.EnsureAccount(ctx, addr))

	all, err := repo.AllStats(ctx)
	require.NoError(t, err)

	require.Len(t, all, 2)
	assert.Equal(t, 1, all[addr].Spins)
	assert.Equal(t, "10", all[addr].TotalWon)
	assert.Equal(t, 1, all[other].Spins)
	assert.Equal(t, 0, all[other].Wins)
}

func TestAllStatsSurfacesStoreFailure(t *testing.T) {
	mem := storetest.New()
	repo := NewRepository(mem)
	mem.FailWith(errors.New("connection refused"))

	_, err := repo.AllStats(context.Background())

	assert.Error(t, err)
}
