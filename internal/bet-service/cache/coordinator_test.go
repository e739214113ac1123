package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/stats"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
)

func addr(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func hash(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

// countingLister tracks how many times the underlying list is computed.
type countingLister struct {
	calls int
	bets  []model.Bet
}

func (c *countingLister) ListUserBets(context.Context, string, store.BetFilter) ([]model.Bet, int, error) {
	c.calls++
	return c.bets, len(c.bets), nil
}

// failingCache errors on every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (failingCache) DeleteByPrefix(context.Context, string) error {
	return errors.New("cache down")
}

func ttls() TTLs {
	return TTLs{
		Leaderboard: time.Minute,
		UserStats:   time.Minute,
		BetList:     time.Minute,
		UserRank:    time.Minute,
		GlobalStats: time.Minute,
		TokenStats:  time.Minute,
	}
}

func seedSettledBet(t *testing.T, st *store.Memory, n int, address string, win bool, settledAt time.Time) {
	t.Helper()
	ctx := context.Background()
	payout := "0"
	if win {
		payout = "19.6"
	}
	b := &model.Bet{
		ID:          fmt.Sprintf("bet-%d", n),
		UserAddress: address,
		Token:       "ETH",
		Amount:      "10",
		Direction:   model.DirectionUp,
		Duration:    300,
		StartPrice:  "2000",
		StartTime:   settledAt.Add(-5 * time.Minute),
		Status:      model.StatusActive,
		Payout:      "0",
		TxHash:      hash(n),
		CommitHash:  hash(n + 100000),
	}
	require.NoError(t, st.CreateBet(ctx, b))
	require.NoError(t, st.ApplyPlacement(ctx, address, "10", b.StartTime))
	require.NoError(t, st.SettleBet(ctx, b.ID, store.Settlement{
		EndPrice: "2100", IsWinner: win, Payout: payout,
		SettleTxHash: hash(n + 200000), SettledAt: settledAt,
	}))
	require.NoError(t, st.ApplySettlement(ctx, address, win, payout))
}

func TestUserBetsServedFromCacheUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := stats.NewEngine(st, 5)
	lister := &countingLister{bets: []model.Bet{{ID: "bet-1", UserAddress: addr(1)}}}
	co := NewCoordinator(NewMemory(), engine, lister, ttls(), zap.NewNop())

	f := store.BetFilter{Page: 1, Limit: 20}
	res, err := co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	require.Len(t, res.Bets, 1)
	assert.Equal(t, 1, lister.calls)

	// Second read hits the cache.
	_, err = co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	// A mutation for the same address drops the family.
	co.OnBetMutation(ctx, addr(1))
	_, err = co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestUserBetsOtherAddressSurvivesInvalidation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := stats.NewEngine(st, 5)
	lister := &countingLister{}
	co := NewCoordinator(NewMemory(), engine, lister, ttls(), zap.NewNop())

	f := store.BetFilter{Page: 1, Limit: 20}
	_, err := co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	_, err = co.UserBets(ctx, addr(2), f)
	require.NoError(t, err)
	require.Equal(t, 2, lister.calls)

	co.OnBetMutation(ctx, addr(1))

	// addr(2) entries are untouched.
	_, err = co.UserBets(ctx, addr(2), f)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)

	_, err = co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	assert.Equal(t, 3, lister.calls)
}

func TestUserStatsCoherentAfterSettlement(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := stats.NewEngine(st, 5)
	co := NewCoordinator(NewMemory(), engine, &countingLister{}, ttls(), zap.NewNop())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedSettledBet(t, st, 1, addr(1), false, base)

	out, err := co.UserStats(ctx, addr(1))
	require.NoError(t, err)
	assert.Equal(t, 0, out.BasicStats.TotalWins)

	// The store moves on; the cached view is stale until invalidated.
	seedSettledBet(t, st, 2, addr(1), true, base.Add(time.Hour))
	stale, err := co.UserStats(ctx, addr(1))
	require.NoError(t, err)
	assert.Equal(t, 0, stale.BasicStats.TotalWins)

	co.OnBetMutation(ctx, addr(1))
	fresh, err := co.UserStats(ctx, addr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.BasicStats.TotalWins)
	assert.Equal(t, 2, fresh.BasicStats.TotalBets)
}

func TestLeaderboardInvalidatedOnAnyMutation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := stats.NewEngine(st, 1)
	mem := NewMemory()
	co := NewCoordinator(mem, engine, &countingLister{}, ttls(), zap.NewNop())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedSettledBet(t, st, 1, addr(1), true, base)

	q := stats.LeaderboardQuery{Timeframe: "all", SortBy: store.SortWinRate, Page: 1, Limit: 50}
	page, err := co.Leaderboard(ctx, q)
	require.NoError(t, err)
	require.Len(t, page.Leaderboard, 1)

	// Any bettor's mutation drops the whole leaderboard family.
	seedSettledBet(t, st, 2, addr(2), true, base.Add(time.Hour))
	co.OnBetMutation(ctx, addr(2))

	page, err = co.Leaderboard(ctx, q)
	require.NoError(t, err)
	assert.Len(t, page.Leaderboard, 2)
}

func TestGlobalAndTokenStatsCached(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := stats.NewEngine(st, 5)
	mem := NewMemory()
	co := NewCoordinator(mem, engine, &countingLister{}, ttls(), zap.NewNop())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedSettledBet(t, st, 1, addr(1), true, base)

	g1, err := co.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, g1.TotalBets)

	seedSettledBet(t, st, 2, addr(1), true, base.Add(time.Hour))

	// Still the cached snapshot.
	g2, err := co.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, g2.TotalBets)

	co.OnBetMutation(ctx, addr(1))
	g3, err := co.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, g3.TotalBets)

	ts, err := co.TokenStats(ctx)
	require.NoError(t, err)
	require.Len(t, ts.Tokens, 1)
	assert.Equal(t, "ETH", ts.Tokens[0].Token)
}

func TestFailingCacheDegradesToComputation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := stats.NewEngine(st, 5)
	lister := &countingLister{}
	co := NewCoordinator(failingCache{}, engine, lister, ttls(), zap.NewNop())

	f := store.BetFilter{Page: 1, Limit: 20}
	_, err := co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	_, err = co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	// Every request computes; none fails.
	assert.Equal(t, 2, lister.calls)

	// Invalidation failures are swallowed too.
	co.OnBetMutation(ctx, addr(1))

	out, err := co.UserStats(ctx, addr(1))
	require.NoError(t, err)
	assert.False(t, out.Exists)
}

func TestUndecodableEntryTreatedAsMiss(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := stats.NewEngine(st, 5)
	lister := &countingLister{}
	mem := NewMemory()
	co := NewCoordinator(mem, engine, lister, ttls(), zap.NewNop())

	f := store.BetFilter{Page: 1, Limit: 20}
	key := userBetsKey(addr(1), f.Page, f.Limit, f.Status)
	require.NoError(t, mem.Set(ctx, key, []byte("{not json"), time.Minute))

	_, err := co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	// The bad entry was overwritten with a good one.
	_, err = co.UserBets(ctx, addr(1), f)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)
}
