package cache

import (
	"strconv"
)

// Key families. Each family is invalidated as a whole by prefix; there is
// no per-entry dependency tracking between a bet mutation and the many
// leaderboard parameterizations it may affect.
const (
	famUserBets    = "user_bets"
	famLeaderboard = "leaderboard"
	famUserRank    = "user_rank"
	famUserStats   = "stats:user"
	famGlobalStats = "stats:global"
	famTokenStats  = "stats:tokens"
)

func userBetsKey(address string, page, limit int, status string) string {
	if status == "" {
		status = "all"
	}
	return famUserBets + ":" + address + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(limit) + ":" + status
}

func leaderboardKey(timeframe, sortBy string, page, limit int) string {
	return famLeaderboard + ":" + timeframe + ":" + sortBy + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}

func userRankKey(address, timeframe, sortBy string) string {
	return famUserRank + ":" + address + ":" + timeframe + ":" + sortBy
}

func userStatsKey(address string) string {
	return famUserStats + ":" + address
}
