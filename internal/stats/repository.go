package stats

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Story91/Gambly/internal/models"
	"github.com/Story91/Gambly/internal/store"
	"github.com/shopspring/decimal"
)

// Repository is the single source of truth for per-user and global
// counters. All durable state lives in the store; the only in-process
// state is a per-address mutex serializing the decimal totalWon update.
type Repository struct {
	store store.Store
	locks sync.Map // map[string]*sync.Mutex, keyed by address
}

func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// EnsureAccount creates a profile marker and zeroed stats for the address
// if none exist. Calling it again is a no-op.
func (r *Repository) EnsureAccount(ctx context.Context, address string) error {
	profileKey := store.UserProfileKey(address)

	exists, err := r.store.Exists(ctx, profileKey)
	if err != nil {
		return fmt.Errorf("failed to check profile for %s: %w", address, err)
	}
	if exists {
		return nil
	}

	now := time.Now().UnixMilli()
	if err := r.store.HSet(ctx, profileKey, map[string]interface{}{
		"address":   address,
		"createdAt": now,
	}); err != nil {
		return fmt.Errorf("failed to create profile for %s: %w", address, err)
	}

	statsKey := store.UserStatsKey(address)
	statsExist, err := r.store.Exists(ctx, statsKey)
	if err != nil {
		return fmt.Errorf("failed to check stats for %s: %w", address, err)
	}
	if statsExist {
		return nil
	}

	if err := r.store.HSet(ctx, statsKey, map[string]interface{}{
		"spins":     0,
		"wins":      0,
		"totalWon":  "0",
		"firstSeen": now,
		"lastSeen":  now,
	}); err != nil {
		return fmt.Errorf("failed to create stats for %s: %w", address, err)
	}
	return nil
}

// GetStats returns the address's counters. Unknown addresses yield the
// zero value, not an error. Store failures degrade to the zero value with
// a log line; writes are the paths that must surface failures, reads are
// allowed to serve empty.
func (r *Repository) GetStats(ctx context.Context, address string) models.UserStats {
	stats, err := r.readStats(ctx, address)
	if err != nil {
		slog.Error("Failed to read user stats, serving zero value", "address", address, "error", err)
		return models.ZeroUserStats()
	}
	return stats
}

// RecordSpin applies one completed spin: spins always, wins when isWin,
// tokensWon added to the running decimal total, lastSeen stamped and
// firstSeen set once. Returns the post-update stats. Counter increments
// go through the store's atomic primitives so concurrent spins by the
// same address are never lost; the totalWon read-add-write is serialized
// per address because the store cannot add decimal strings atomically.
func (r *Repository) RecordSpin(ctx context.Context, address string, isWin bool, tokensWon string) (models.UserStats, error) {
	if tokensWon == "" {
		tokensWon = "0"
	}
	amount, err := decimal.NewFromString(tokensWon)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("invalid tokensWon amount %q: %w", tokensWon, err)
	}

	key := store.UserStatsKey(address)
	now := time.Now().UnixMilli()

	if _, err := r.store.HSetNX(ctx, key, "firstSeen", now); err != nil {
		return models.UserStats{}, fmt.Errorf("failed to stamp firstSeen for %s: %w", address, err)
	}

	if _, err := r.store.HIncrBy(ctx, key, "spins", 1); err != nil {
		return models.UserStats{}, fmt.Errorf("failed to increment spins for %s: %w", address, err)
	}
	if isWin {
		if _, err := r.store.HIncrBy(ctx, key, "wins", 1); err != nil {
			return models.UserStats{}, fmt.Errorf("failed to increment wins for %s: %w", address, err)
		}
	}

	if err := r.addTotalWon(ctx, key, address, amount); err != nil {
		return models.UserStats{}, err
	}

	if err := r.store.HSet(ctx, key, map[string]interface{}{"lastSeen": now}); err != nil {
		return models.UserStats{}, fmt.Errorf("failed to stamp lastSeen for %s: %w", address, err)
	}

	stats, err := r.readStats(ctx, address)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to read back stats for %s: %w", address, err)
	}
	return stats, nil
}

// IncrementGlobal bumps the global counters for one spin. It is a
// separately-retryable operation from RecordSpin: a failure in one never
// suppresses the other.
func (r *Repository) IncrementGlobal(ctx context.Context, isWin bool) error {
	if _, err := r.store.HIncrBy(ctx, store.GlobalStatsKey, "totalGames", 1); err != nil {
		return fmt.Errorf("failed to increment totalGames: %w", err)
	}
	if isWin {
		if _, err := r.store.HIncrBy(ctx, store.GlobalStatsKey, "totalWins", 1); err != nil {
			return fmt.Errorf("failed to increment totalWins: %w", err)
		}
	}
	return nil
}

// GetGlobal returns the global counters, degrading to zeros on store
// failure like GetStats.
func (r *Repository) GetGlobal(ctx context.Context) models.GlobalStats {
	fields, err := r.store.HGetAll(ctx, store.GlobalStatsKey)
	if err != nil {
		slog.Error("Failed to read global stats, serving zero value", "error", err)
		return models.GlobalStats{}
	}
	return models.GlobalStats{
		TotalGames: parseInt(fields["totalGames"]),
		TotalWins:  parseInt(fields["totalWins"]),
	}
}

// AllStats exports every known address's counters. Unlike the single
// reads this surfaces store failures, since a partial export is worse
// than a failed one.
func (r *Repository) AllStats(ctx context.Context) (map[string]models.UserStats, error) {
	keys, err := r.store.ScanKeys(ctx, store.UserStatsPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user stats keys: %w", err)
	}

	all := make(map[string]models.UserStats, len(keys))
	for _, key := range keys {
		address, ok := store.AddressFromStatsKey(key)
		if !ok {
			continue
		}
		stats, err := r.readStats(ctx, address)
		if err != nil {
			return nil, err
		}
		all[address] = stats
	}
	return all, nil
}

func (r *Repository) addTotalWon(ctx context.Context, key, address string, amount decimal.Decimal) error {
	unlock := r.lockAddress(address)
	defer unlock()

	current, err := r.store.HGet(ctx, key, "totalWon")
	if err != nil {
		return fmt.Errorf("failed to read totalWon for %s: %w", address, err)
	}
	if current == "" {
		current = "0"
	}
	total, err := decimal.NewFromString(current)
	if err != nil {
		return fmt.Errorf("corrupt totalWon %q for %s: %w", current, address, err)
	}

	total = total.Add(amount)
	if err := r.store.HSet(ctx, key, map[string]interface{}{"totalWon": total.String()}); err != nil {
		return fmt.Errorf("failed to write totalWon for %s: %w", address, err)
	}
	return nil
}

func (r *Repository) lockAddress(address string) func() {
	v, _ := r.locks.LoadOrStore(address, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (r *Repository) readStats(ctx context.Context, address string) (models.UserStats, error) {
	fields, err := r.store.HGetAll(ctx, store.UserStatsKey(address))
	if err != nil {
		return models.UserStats{}, err
	}

	stats := models.UserStats{
		Spins:     parseInt(fields["spins"]),
		Wins:      parseInt(fields["wins"]),
		TotalWon:  fields["totalWon"],
		FirstSeen: parseInt64(fields["firstSeen"]),
		LastSeen:  parseInt64(fields["lastSeen"]),
	}
	if stats.TotalWon == "" {
		stats.TotalWon = "0"
	}
	return stats, nil
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
