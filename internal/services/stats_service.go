package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Story91/Gambly/internal/config"
	"github.com/Story91/Gambly/internal/events"
	"github.com/Story91/Gambly/internal/leaderboard"
	"github.com/Story91/Gambly/internal/models"
	"github.com/Story91/Gambly/internal/names"
	"github.com/Story91/Gambly/internal/spin"
	"github.com/Story91/Gambly/internal/stats"
)

// StatsService wires the stats repository, the leaderboard index, the
// name resolver and the event hub into the operations the HTTP layer
// exposes. Handlers never touch the store directly.
type StatsService struct {
	repo     *stats.Repository
	index    *leaderboard.Index
	resolver *names.Resolver
	hub      *events.Hub

	winDifficulty uint64
	winPayout     string
}

func NewStatsService(repo *stats.Repository, index *leaderboard.Index, resolver *names.Resolver, hub *events.Hub, cfg *config.Config) *StatsService {
	return &StatsService{
		repo:          repo,
		index:         index,
		resolver:      resolver,
		hub:           hub,
		winDifficulty: cfg.WinDifficulty,
		winPayout:     cfg.WinPayout,
	}
}

// CreateAccount provisions a zeroed account for the address. Idempotent.
func (s *StatsService) CreateAccount(ctx context.Context, address string) error {
	return s.repo.EnsureAccount(ctx, address)
}

// GetUserStats returns the address's counters, zero-valued for unknown
// addresses or a degraded store.
func (s *StatsService) GetUserStats(ctx context.Context, address string) models.UserStats {
	return s.repo.GetStats(ctx, address)
}

// GetGlobalStats returns the process-wide counters.
func (s *StatsService) GetGlobalStats(ctx context.Context) models.GlobalStats {
	return s.repo.GetGlobal(ctx)
}

// AllUserStats exports every address's counters.
func (s *StatsService) AllUserStats(ctx context.Context) (map[string]models.UserStats, error) {
	return s.repo.AllStats(ctx)
}

// RecordSpin applies one completed spin end to end: per-user counters,
// leaderboard reindex, global counters, then a push to connected UIs.
// The per-user and global updates are two separately-retryable writes,
// never a transaction; both are attempted even if the other fails, and
// the first failure is surfaced so the caller can retry or alert. A
// dropped increment must never be silent.
func (s *StatsService) RecordSpin(ctx context.Context, address string, isWin bool, tokensWon string) (models.UserStats, error) {
	updated, userErr := s.repo.RecordSpin(ctx, address, isWin, tokensWon)

	var indexErr error
	if userErr == nil {
		if indexErr = s.index.Update(ctx, address, updated); indexErr != nil {
			slog.Error("Failed to reindex leaderboards", "address", address, "error", indexErr)
		}
	}

	globalErr := s.repo.IncrementGlobal(ctx, isWin)
	if globalErr != nil {
		slog.Error("Failed to increment global stats", "error", globalErr)
	}

	if userErr != nil {
		return models.UserStats{}, fmt.Errorf("failed to record spin: %w", userErr)
	}
	if indexErr != nil {
		return updated, fmt.Errorf("failed to record spin: %w", indexErr)
	}
	if globalErr != nil {
		return updated, fmt.Errorf("failed to record spin: %w", globalErr)
	}

	s.publishSpin(ctx, address, isWin, updated)
	return updated, nil
}

// Spin rolls the slot machine server-side against the configured win
// difficulty and records the outcome. The payout amount mirrors what the
// gambling contract transfers on a win.
func (s *StatsService) Spin(ctx context.Context, address, seed string) (models.SpinOutcome, error) {
	isWin := spin.CheckWin(s.winDifficulty, seed)

	tokensWon := "0"
	if isWin {
		tokensWon = s.winPayout
	}

	updated, err := s.RecordSpin(ctx, address, isWin, tokensWon)
	if err != nil {
		return models.SpinOutcome{}, err
	}

	return models.SpinOutcome{
		IsWin:     isWin,
		TokensWon: tokensWon,
		Stats:     updated,
	}, nil
}

// Leaderboard returns one ranked page. When resolveNames is set the page
// is enriched with display names before returning; callers wanting the
// fast path pass false and re-request with names later, so resolution
// latency never gates the ranking read itself.
func (s *StatsService) Leaderboard(ctx context.Context, typ models.RankingType, limit, offset int, resolveNames bool) (models.LeaderboardResult, error) {
	result, err := s.index.Query(ctx, typ, limit, offset)
	if err != nil {
		return models.LeaderboardResult{}, err
	}

	if resolveNames && len(result.Entries) > 0 {
		addresses := make([]string, len(result.Entries))
		for i, entry := range result.Entries {
			addresses[i] = entry.Address
		}
		resolved := s.resolver.ResolveAll(ctx, addresses)
		for i := range result.Entries {
			result.Entries[i].DisplayName = resolved[result.Entries[i].Address]
		}
	}

	return result, nil
}

func (s *StatsService) publishSpin(ctx context.Context, address string, isWin bool, updated models.UserStats) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(events.EventSpinCompleted, map[string]interface{}{
		"address": address,
		"isWin":   isWin,
		"stats":   updated,
	})
	s.hub.Publish(events.EventGlobalStats, s.repo.GetGlobal(ctx))
}
