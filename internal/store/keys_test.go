package store

import (
	"testing"

	"github.com/Story91/Gambly/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestKeyLayout(t *testing.T) {
	addr := "0xaaaaaaa100000000000000000000000000000001"

	assert.Equal(t, "user:"+addr+":stats", UserStatsKey(addr))
	assert.Equal(t, "user:"+addr+":profile", UserProfileKey(addr))
	assert.Equal(t, "leaderboard:total_won", LeaderboardKey(models.RankingTotalWon))
	assert.Equal(t, "leaderboard:win_ratio", LeaderboardKey(models.RankingWinRatio))
	assert.Equal(t, "name:"+addr, NameCacheKey(addr))
}

func TestAddressFromStatsKey(t *testing.T) {
	addr := "0xaaaaaaa100000000000000000000000000000001"

	got, ok := AddressFromStatsKey(UserStatsKey(addr))
	assert.True(t, ok)
	assert.Equal(t, addr, got)

	_, ok = AddressFromStatsKey("user:" + addr + ":profile")
	assert.False(t, ok)
	_, ok = AddressFromStatsKey("global:stats")
	assert.False(t, ok)
	_, ok = AddressFromStatsKey("user::stats")
	assert.False(t, ok)
}
