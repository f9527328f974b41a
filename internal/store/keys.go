package store

import "github.com/Story91/Gambly/internal/models"

const (
	// Key prefixes
	userStatsPrefix   = "user:"
	userStatsSuffix   = ":stats"
	userProfileSuffix = ":profile"
	leaderboardPrefix = "leaderboard:"
	nameCachePrefix   = "name:"

	// GlobalStatsKey holds the process-wide counters.
	GlobalStatsKey = "global:stats"

	// UserStatsPattern matches every per-user stats hash.
	UserStatsPattern = userStatsPrefix + "*" + userStatsSuffix
)

// UserStatsKey is the hash holding an address's counters.
func UserStatsKey(address string) string {
	return userStatsPrefix + address + userStatsSuffix
}

// UserProfileKey is the hash marking an address's account creation.
func UserProfileKey(address string) string {
	return userStatsPrefix + address + userProfileSuffix
}

// LeaderboardKey is the sorted set backing one ranking.
func LeaderboardKey(typ models.RankingType) string {
	return leaderboardPrefix + string(typ)
}

// NameCacheKey is the TTL-bearing display-name cache entry for an address.
func NameCacheKey(address string) string {
	return nameCachePrefix + address
}

// AddressFromStatsKey recovers the address from a per-user stats key. The
// second return is false if the key does not have the expected shape.
func AddressFromStatsKey(key string) (string, bool) {
	if len(key) <= len(userStatsPrefix)+len(userStatsSuffix) {
		return "", false
	}
	if key[:len(userStatsPrefix)] != userStatsPrefix ||
		key[len(key)-len(userStatsSuffix):] != userStatsSuffix {
		return "", false
	}
	return key[len(userStatsPrefix) : len(key)-len(userStatsSuffix)], true
}
