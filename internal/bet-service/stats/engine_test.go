package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
)

func addr(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func hash(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

var betSeq int

// settledBet writes one settled bet plus its counter rollups, so the engine
// sees the same picture the lifecycle manager would leave behind.
func settledBet(t *testing.T, st *store.Memory, address, token string, amount, payout string, win bool, settledAt time.Time) {
	t.Helper()
	ctx := context.Background()
	betSeq++
	b := &model.Bet{
		ID:          fmt.Sprintf("bet-%d", betSeq),
		UserAddress: address,
		Token:       token,
		Amount:      amount,
		Direction:   model.DirectionUp,
		Duration:    300,
		StartPrice:  "2000",
		StartTime:   settledAt.Add(-5 * time.Minute),
		Status:      model.StatusActive,
		Payout:      "0",
		TxHash:      hash(betSeq),
		CommitHash:  hash(betSeq + 100000),
	}
	require.NoError(t, st.CreateBet(ctx, b))
	require.NoError(t, st.ApplyPlacement(ctx, address, amount, b.StartTime))
	require.NoError(t, st.SettleBet(ctx, b.ID, store.Settlement{
		EndPrice:     "2100",
		IsWinner:     win,
		Payout:       payout,
		SettleTxHash: hash(betSeq + 200000),
		SettledAt:    settledAt,
	}))
	require.NoError(t, st.ApplySettlement(ctx, address, win, payout))
}

func TestUserStatsUnknownAddress(t *testing.T) {
	e := NewEngine(store.NewMemory(), 5)
	out, err := e.UserStats(context.Background(), addr(1))
	require.NoError(t, err)
	assert.False(t, out.Exists)
}

func TestUserStatsStreakAndRecent(t *testing.T) {
	st := store.NewMemory()
	e := NewEngine(st, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Oldest to newest: loss, then three wins.
	settledBet(t, st, addr(1), "ETH", "10", "0", false, base)
	settledBet(t, st, addr(1), "ETH", "10", "19.6", true, base.Add(1*time.Hour))
	settledBet(t, st, addr(1), "BTC", "20", "39.2", true, base.Add(2*time.Hour))
	settledBet(t, st, addr(1), "ETH", "10", "19.6", true, base.Add(3*time.Hour))

	out, err := e.UserStats(context.Background(), addr(1))
	require.NoError(t, err)
	require.True(t, out.Exists)

	assert.Equal(t, 4, out.BasicStats.TotalBets)
	assert.Equal(t, 3, out.BasicStats.TotalWins)
	assert.Equal(t, 75.0, out.BasicStats.WinRate)
	assert.Equal(t, "50", out.BasicStats.TotalWagered)
	assert.Equal(t, "78.4", out.BasicStats.TotalWon)
	assert.Equal(t, "28.4", out.BasicStats.Profit)

	require.NotNil(t, out.Streak.Type)
	assert.Equal(t, "win", *out.Streak.Type)
	assert.Equal(t, 3, out.Streak.Length)

	require.Len(t, out.RecentPerformance, 4)
	// Newest first.
	assert.True(t, out.RecentPerformance[0].IsWinner)
	assert.False(t, out.RecentPerformance[3].IsWinner)

	require.Len(t, out.TokenBreakdown, 2)
	// Ordered by volume: ETH wagered 30 vs BTC 20.
	assert.Equal(t, "ETH", out.TokenBreakdown[0].Token)
	assert.Equal(t, 3, out.TokenBreakdown[0].Bets)
	require.Len(t, out.DurationBreakdown, 1)
	assert.Equal(t, 300, out.DurationBreakdown[0].Duration)
}

func TestStreakAllLosses(t *testing.T) {
	st := store.NewMemory()
	e := NewEngine(st, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	settledBet(t, st, addr(1), "ETH", "10", "0", false, base)
	settledBet(t, st, addr(1), "ETH", "10", "0", false, base.Add(time.Hour))

	out, err := e.UserStats(context.Background(), addr(1))
	require.NoError(t, err)
	require.NotNil(t, out.Streak.Type)
	assert.Equal(t, "loss", *out.Streak.Type)
	assert.Equal(t, 2, out.Streak.Length)
}

func TestLeaderboardFloorOrderingAndRanks(t *testing.T) {
	st := store.NewMemory()
	e := NewEngine(st, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed := func(address string, bets, wins int) {
		for i := 0; i < bets; i++ {
			win := i < wins
			payout := "0"
			if win {
				payout = "19.6"
			}
			settledBet(t, st, address, "ETH", "10", payout, win, base.Add(time.Duration(i)*time.Minute))
		}
	}
	seed(addr(1), 6, 3)  // 50% on 6 bets
	seed(addr(2), 10, 5) // 50% on 10 bets, wins the tie
	seed(addr(3), 2, 2)  // below the floor

	page, err := e.Leaderboard(context.Background(), LeaderboardQuery{
		Timeframe: "all", SortBy: store.SortWinRate, Page: 1, Limit: 50,
	})
	require.NoError(t, err)

	require.Len(t, page.Leaderboard, 2)
	assert.Equal(t, 1, page.Leaderboard[0].Rank)
	assert.Equal(t, addr(2), page.Leaderboard[0].Address)
	assert.Equal(t, 2, page.Leaderboard[1].Rank)
	assert.Equal(t, addr(1), page.Leaderboard[1].Address)

	assert.Equal(t, model.DisplayAddress(addr(2)), page.Leaderboard[0].DisplayAddress)
	assert.NotEmpty(t, page.Leaderboard[0].Avatar)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
}

func TestLeaderboardRankFollowsPage(t *testing.T) {
	st := store.NewMemory()
	e := NewEngine(st, 1)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for n := 1; n <= 5; n++ {
		settledBet(t, st, addr(n), "ETH", "10", "19.6", true, base)
	}

	page, err := e.Leaderboard(context.Background(), LeaderboardQuery{
		Timeframe: "all", SortBy: store.SortTotalBets, Page: 2, Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, page.Leaderboard, 2)
	assert.Equal(t, 3, page.Leaderboard[0].Rank)
	assert.Equal(t, 4, page.Leaderboard[1].Rank)
	assert.Equal(t, 5, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.Pages)
}

func TestUserRank(t *testing.T) {
	st := store.NewMemory()
	e := NewEngine(st, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed := func(address string, bets, wins int) {
		for i := 0; i < bets; i++ {
			win := i < wins
			payout := "0"
			if win {
				payout = "19.6"
			}
			settledBet(t, st, address, "ETH", "10", payout, win, base)
		}
	}
	seed(addr(1), 10, 3) // 30%
	seed(addr(2), 10, 8) // 80%
	seed(addr(3), 10, 9) // 90%
	seed(addr(4), 2, 2)  // below the floor

	res, err := e.UserRank(context.Background(), addr(1), store.SortWinRate)
	require.NoError(t, err)
	require.NotNil(t, res.Rank)
	assert.Equal(t, 3, *res.Rank)
	require.NotNil(t, res.User)
	assert.Equal(t, 30.0, res.User.WinRate)

	// Below the floor: no rank, explanatory message.
	res, err = e.UserRank(context.Background(), addr(4), store.SortWinRate)
	require.NoError(t, err)
	assert.Nil(t, res.Rank)
	assert.NotEmpty(t, res.Message)

	res, err = e.UserRank(context.Background(), addr(99), store.SortWinRate)
	require.NoError(t, err)
	assert.Nil(t, res.Rank)
}

func TestGlobalStats(t *testing.T) {
	st := store.NewMemory()
	e := NewEngine(st, 5)
	now := time.Now()

	settledBet(t, st, addr(1), "ETH", "100", "196", true, now.Add(-time.Hour))
	settledBet(t, st, addr(1), "BTC", "50", "0", false, now.Add(-time.Hour))

	ctx := context.Background()
	active := &model.Bet{
		ID: "active-1", UserAddress: addr(1), Token: "ETH", Amount: "25",
		Direction: model.DirectionDown, Duration: 900, StartPrice: "2000",
		StartTime: now, Status: model.StatusActive, Payout: "0",
		TxHash: hash(999999), CommitHash: hash(999998),
	}
	require.NoError(t, st.CreateBet(ctx, active))
	require.NoError(t, st.ApplyPlacement(ctx, addr(1), "25", now))

	out, err := e.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalBets)
	assert.Equal(t, 1, out.TotalUsers)
	assert.Equal(t, 1, out.ActiveBets)
	assert.Equal(t, "175", out.TotalVolume)
	assert.Equal(t, "196", out.TotalPayout)
	assert.Equal(t, 50.0, out.GlobalWinRate)
	assert.NotEmpty(t, out.TokenStats)
	assert.NotEmpty(t, out.RecentActivity)
}

func TestTokenStatsHouseEdge(t *testing.T) {
	st := store.NewMemory()
	e := NewEngine(st, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// ETH: volume 100, payout 80 -> house edge 20%.
	settledBet(t, st, addr(1), "ETH", "50", "80", true, base)
	settledBet(t, st, addr(1), "ETH", "50", "0", false, base.Add(time.Minute))

	out, err := e.TokenStats(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Tokens, 1)

	row := out.Tokens[0]
	assert.Equal(t, "ETH", row.Token)
	assert.Equal(t, 2, row.TotalBets)
	assert.Equal(t, 2, row.SettledBets)
	assert.Equal(t, 1, row.Wins)
	assert.Equal(t, 50.0, row.WinRate)
	assert.Equal(t, 20.0, row.HouseEdge)
	assert.Equal(t, "100", row.TotalVolume)
	assert.Equal(t, "80", row.TotalPayout)
	assert.Equal(t, 2, row.UpBets)
	assert.Equal(t, 0, row.DownBets)
}

func TestPctRounding(t *testing.T) {
	assert.Equal(t, 0.0, pct(3, 0))
	assert.Equal(t, 33.33, pct(1, 3))
	assert.Equal(t, 66.67, pct(2, 3))
	assert.Equal(t, 100.0, pct(5, 5))
}

func TestTimeframeStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	today := timeframeStart("today", now)
	require.NotNil(t, today)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), *today)

	month := timeframeStart("month", now)
	require.NotNil(t, month)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *month)

	week := timeframeStart("week", now)
	require.NotNil(t, week)
	assert.Equal(t, now.Add(-7*24*time.Hour), *week)

	assert.Nil(t, timeframeStart("all", now))
	assert.Nil(t, timeframeStart("whatever", now))
}
