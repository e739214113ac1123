package stats

import "time"

// Pagination is the envelope shared by every paginated view.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// BasicStats are one user's headline numbers. Percentages carry 2 decimal
// places; derived money sums carry 4. Stored amounts stay exact.
type BasicStats struct {
	TotalBets    int     `json:"totalBets"`
	TotalWins    int     `json:"totalWins"`
	TotalSettled int     `json:"totalSettled"`
	WinRate      float64 `json:"winRate"`
	TotalWagered string  `json:"totalWagered"`
	TotalWon     string  `json:"totalWon"`
	Profit       string  `json:"profit"`
}

// TokenStatsEntry is one user's performance on one token.
type TokenStatsEntry struct {
	Token   string  `json:"token"`
	Bets    int     `json:"totalBets"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
	Volume  string  `json:"volume"`
	Profit  string  `json:"profit"`
}

// DurationStatsEntry is one user's performance on one duration class.
type DurationStatsEntry struct {
	Duration int     `json:"duration"`
	Bets     int     `json:"totalBets"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"winRate"`
}

// Streak is the run of most-recent settled bets sharing one outcome.
type Streak struct {
	Type   *string `json:"type"` // "win" | "loss", nil with no settled bets
	Length int     `json:"length"`
}

// RecentOutcome is one settled result in the recent-performance strip.
type RecentOutcome struct {
	BetID     string    `json:"betId"`
	IsWinner  bool      `json:"isWinner"`
	SettledAt time.Time `json:"settledAt"`
}

// UserStats is the full per-user statistics view.
type UserStats struct {
	Exists            bool                 `json:"exists"`
	Address           string               `json:"address,omitempty"`
	BasicStats        BasicStats           `json:"basicStats"`
	TokenBreakdown    []TokenStatsEntry    `json:"tokenBreakdown"`
	DurationBreakdown []DurationStatsEntry `json:"durationBreakdown"`
	Streak            Streak               `json:"streak"`
	RecentPerformance []RecentOutcome      `json:"recentPerformance"`
	LastUpdated       time.Time            `json:"lastUpdated"`
}

// LeaderboardEntry is one ranked row. The address is obfuscated for display
// and the avatar is a pure function of the address.
type LeaderboardEntry struct {
	Rank           int        `json:"rank"`
	Address        string     `json:"address"`
	DisplayAddress string     `json:"displayAddress"`
	Avatar         string     `json:"avatar"`
	TotalBets      int        `json:"totalBets"`
	TotalWins      int        `json:"totalWins"`
	WinRate        float64    `json:"winRate"`
	TotalWagered   string     `json:"totalWagered"`
	TotalWon       string     `json:"totalWon"`
	Profit         string     `json:"profit"`
	LastBetTime    *time.Time `json:"lastBetTime"`
}

// LeaderboardPage is one page of the ranked board.
type LeaderboardPage struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Pagination  Pagination         `json:"pagination"`
	Timeframe   string             `json:"timeframe"`
	SortBy      string             `json:"sortBy"`
}

// RankUser accompanies a user's rank lookup.
type RankUser struct {
	Address        string  `json:"address"`
	DisplayAddress string  `json:"displayAddress"`
	TotalBets      int     `json:"totalBets"`
	TotalWins      int     `json:"totalWins"`
	WinRate        float64 `json:"winRate"`
	TotalWagered   string  `json:"totalWagered"`
	TotalWon       string  `json:"totalWon"`
	Profit         string  `json:"profit"`
}

// RankResult is nil-ranked for accounts below the leaderboard floor.
type RankResult struct {
	Rank    *int      `json:"rank"`
	User    *RankUser `json:"user,omitempty"`
	Message string    `json:"message,omitempty"`
}

// TokenVolumeRow is the compact per-token slice inside the global view.
type TokenVolumeRow struct {
	Token  string `json:"token"`
	Count  int    `json:"count"`
	Volume string `json:"volume"`
}

// ActivityPoint is one hour of placement activity.
type ActivityPoint struct {
	Hour   time.Time `json:"hour"`
	Count  int       `json:"count"`
	Volume string    `json:"volume"`
}

// GlobalStats is the platform-wide view.
type GlobalStats struct {
	TotalBets      int              `json:"totalBets"`
	TotalUsers     int              `json:"totalUsers"`
	TotalVolume    string           `json:"totalVolume"`
	TotalPayout    string           `json:"totalPayout"`
	ActiveBets     int              `json:"activeBets"`
	GlobalWinRate  float64          `json:"globalWinRate"`
	TokenStats     []TokenVolumeRow `json:"tokenStats"`
	RecentActivity []ActivityPoint  `json:"recentActivity"`
	LastUpdated    time.Time        `json:"lastUpdated"`
}

// TokenStatsRow is the detailed per-token performance view.
type TokenStatsRow struct {
	Token       string  `json:"token"`
	TotalBets   int     `json:"totalBets"`
	ActiveBets  int     `json:"activeBets"`
	SettledBets int     `json:"settledBets"`
	Wins        int     `json:"wins"`
	UpBets      int     `json:"upBets"`
	DownBets    int     `json:"downBets"`
	WinRate     float64 `json:"winRate"`
	HouseEdge   float64 `json:"houseEdge"`
	TotalVolume string  `json:"totalVolume"`
	TotalPayout string  `json:"totalPayout"`
}

// TokenStats wraps the per-token rows.
type TokenStats struct {
	Tokens      []TokenStatsRow `json:"tokens"`
	LastUpdated time.Time       `json:"lastUpdated"`
}
