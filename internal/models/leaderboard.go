package models

// RankingType selects one of the two leaderboard orderings.
type RankingType string

const (
	RankingTotalWon RankingType = "total_won"
	RankingWinRatio RankingType = "win_ratio"
)

// Valid reports whether the ranking type is one of the two known orderings.
func (t RankingType) Valid() bool {
	return t == RankingTotalWon || t == RankingWinRatio
}

// LeaderboardEntry is a single ranked row. All displayed values are
// re-read from UserStats at query time; the sorted-set score (which
// carries the tiebreak fraction) is never shown.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Address     string `json:"address"`
	DisplayName string `json:"displayName,omitempty"`
	TotalWon    string `json:"totalWon"`
	Spins       int    `json:"spins"`
	Wins        int    `json:"wins"`
	WinRatio    string `json:"winRatio"`
}

// Pagination describes the window a leaderboard page was cut from.
type Pagination struct {
	Total         int  `json:"total"`
	HasMore       bool `json:"hasMore"`
	CurrentOffset int  `json:"currentOffset"`
	Limit         int  `json:"limit"`
}

// LeaderboardResult is one page of a ranking.
type LeaderboardResult struct {
	Entries    []LeaderboardEntry `json:"entries"`
	Pagination Pagination         `json:"pagination"`
}
