package models

// UserStats holds the per-address counters. TotalWon is kept as a decimal
// string so token amounts never pass through a float.
type UserStats struct {
	Spins     int    `json:"spins"`
	Wins      int    `json:"wins"`
	TotalWon  string `json:"totalWon"`
	FirstSeen int64  `json:"firstSeen"`
	LastSeen  int64  `json:"lastSeen"`
}

// ZeroUserStats is the safe value returned for unknown addresses and for
// degraded reads when the store is unavailable.
func ZeroUserStats() UserStats {
	return UserStats{TotalWon: "0"}
}

// UserProfile marks that an account has been created for an address.
type UserProfile struct {
	Address   string `json:"address"`
	CreatedAt int64  `json:"createdAt"`
}

// GlobalStats holds the process-wide counters, incremented once per spin
// independently of the per-user update.
type GlobalStats struct {
	TotalGames int `json:"totalGames"`
	TotalWins  int `json:"totalWins"`
}

// SpinOutcome is the result of one server-side spin roll.
type SpinOutcome struct {
	IsWin     bool      `json:"isWin"`
	TokensWon string    `json:"tokensWon"`
	Stats     UserStats `json:"stats"`
}
