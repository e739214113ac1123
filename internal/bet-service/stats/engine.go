// Package stats is the aggregation engine: read-only, cache-independent
// computation over the record store. Every result here can be recomputed
// from scratch at any time.
package stats

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
)

// streakWindow bounds the streak scan: only the last N settled bets can
// contribute to the current run.
const streakWindow = 20

// recentWindow is the length of the recent-performance strip.
const recentWindow = 10

// Engine computes derived views over the record store.
type Engine struct {
	store   store.Store
	minBets int // leaderboard floor
	now     func() time.Time
}

func NewEngine(s store.Store, minBets int) *Engine {
	return &Engine{store: s, minBets: minBets, now: time.Now}
}

var hundred = decimal.NewFromInt(100)

// pct returns part/whole as a percentage with 2 decimal places, 0 when the
// whole is 0.
func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(hundred).
		Round(2).
		InexactFloat64()
}

// money rounds a derived sum to 4 decimal places for display.
func money(d decimal.Decimal) string {
	return d.Round(4).String()
}

func moneyStr(s string) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return money(d)
}

// timeframeStart maps a leaderboard timeframe to its lastBetTime floor.
// "all" and unknown values mean no floor.
func timeframeStart(timeframe string, now time.Time) *time.Time {
	var start time.Time
	switch timeframe {
	case "today":
		start = model.Day(now.UTC())
	case "week":
		start = now.Add(-7 * 24 * time.Hour)
	case "month":
		n := now.UTC()
		start = time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return nil
	}
	return &start
}

// UserStats assembles the full statistics view for one address.
func (e *Engine) UserStats(ctx context.Context, address string) (*UserStats, error) {
	addr := model.NormalizeAddress(address)

	u, err := e.store.GetUser(ctx, addr)
	if errors.Is(err, model.ErrNotFound) {
		return &UserStats{Exists: false, LastUpdated: e.now()}, nil
	}
	if err != nil {
		return nil, err
	}

	tokens, err := e.store.UserTokenBreakdown(ctx, addr)
	if err != nil {
		return nil, err
	}
	durations, err := e.store.UserDurationBreakdown(ctx, addr)
	if err != nil {
		return nil, err
	}
	settled, err := e.store.RecentSettled(ctx, addr, streakWindow)
	if err != nil {
		return nil, err
	}

	out := &UserStats{
		Exists:  true,
		Address: addr,
		BasicStats: BasicStats{
			TotalBets:    u.TotalBets,
			TotalWins:    u.TotalWins,
			TotalSettled: u.TotalSettled,
			WinRate:      pct(u.TotalWins, u.TotalBets),
			TotalWagered: u.TotalWagered,
			TotalWon:     u.TotalWon,
			Profit:       money(u.Profit()),
		},
		Streak:      streak(settled),
		LastUpdated: e.now(),
	}

	for _, t := range tokens {
		out.TokenBreakdown = append(out.TokenBreakdown, TokenStatsEntry{
			Token:   t.Token,
			Bets:    t.Bets,
			Wins:    t.Wins,
			WinRate: pct(t.Wins, t.Bets),
			Volume:  moneyStr(t.Volume),
			Profit:  moneyStr(t.Profit),
		})
	}
	for _, d := range durations {
		out.DurationBreakdown = append(out.DurationBreakdown, DurationStatsEntry{
			Duration: d.Duration,
			Bets:     d.Bets,
			Wins:     d.Wins,
			WinRate:  pct(d.Wins, d.Bets),
		})
	}

	recent := settled
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}
	for _, b := range recent {
		out.RecentPerformance = append(out.RecentPerformance, RecentOutcome{
			BetID:     b.ID,
			IsWinner:  b.IsWinner,
			SettledAt: *b.SettledAt,
		})
	}

	return out, nil
}

// streak counts the run of newest settled bets matching the most recent
// outcome, stopping at the first change.
func streak(settledNewestFirst []model.Bet) Streak {
	if len(settledNewestFirst) == 0 {
		return Streak{}
	}
	first := settledNewestFirst[0].IsWinner
	kind := "loss"
	if first {
		kind = "win"
	}
	n := 0
	for _, b := range settledNewestFirst {
		if b.IsWinner != first {
			break
		}
		n++
	}
	return Streak{Type: &kind, Length: n}
}

// LeaderboardQuery parameterizes one leaderboard page.
type LeaderboardQuery struct {
	Timeframe string // "all" | "today" | "week" | "month"
	SortBy    store.SortBy
	Page      int
	Limit     int
}

// Leaderboard ranks eligible accounts. Rank strictly reflects the sort
// order of the requested page: (page-1)*limit + index + 1.
func (e *Engine) Leaderboard(ctx context.Context, q LeaderboardQuery) (*LeaderboardPage, error) {
	users, total, err := e.store.RankedUsers(ctx, store.RankQuery{
		MinBets: e.minBets,
		SortBy:  q.SortBy,
		Since:   timeframeStart(q.Timeframe, e.now()),
		Page:    q.Page,
		Limit:   q.Limit,
	})
	if err != nil {
		return nil, err
	}

	page := &LeaderboardPage{
		Leaderboard: make([]LeaderboardEntry, 0, len(users)),
		Pagination:  paginate(q.Page, q.Limit, total),
		Timeframe:   q.Timeframe,
		SortBy:      string(q.SortBy),
	}
	for i, u := range users {
		page.Leaderboard = append(page.Leaderboard, LeaderboardEntry{
			Rank:           (q.Page-1)*q.Limit + i + 1,
			Address:        u.Address,
			DisplayAddress: model.DisplayAddress(u.Address),
			Avatar:         model.Avatar(u.Address),
			TotalBets:      u.TotalBets,
			TotalWins:      u.TotalWins,
			WinRate:        pct(u.TotalWins, u.TotalBets),
			TotalWagered:   u.TotalWagered,
			TotalWon:       u.TotalWon,
			Profit:         money(u.Profit()),
			LastBetTime:    u.LastBetTime,
		})
	}
	return page, nil
}

// UserRank counts accounts strictly better under the leaderboard ordering
// and returns count+1, or a nil rank below the floor.
func (e *Engine) UserRank(ctx context.Context, address string, sortBy store.SortBy) (*RankResult, error) {
	addr := model.NormalizeAddress(address)

	u, err := e.store.GetUser(ctx, addr)
	if errors.Is(err, model.ErrNotFound) {
		return &RankResult{Message: "user not found or insufficient bets for ranking"}, nil
	}
	if err != nil {
		return nil, err
	}
	if u.TotalBets < e.minBets {
		return &RankResult{Message: "user not found or insufficient bets for ranking"}, nil
	}

	better, err := e.store.CountBetter(ctx, u, sortBy, e.minBets)
	if err != nil {
		return nil, err
	}
	rank := better + 1

	return &RankResult{
		Rank: &rank,
		User: &RankUser{
			Address:        addr,
			DisplayAddress: model.DisplayAddress(addr),
			TotalBets:      u.TotalBets,
			TotalWins:      u.TotalWins,
			WinRate:        pct(u.TotalWins, u.TotalBets),
			TotalWagered:   u.TotalWagered,
			TotalWon:       u.TotalWon,
			Profit:         money(u.Profit()),
		},
	}, nil
}

// GlobalStats assembles the platform-wide view, including the trailing-24h
// activity histogram.
func (e *Engine) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	totalBets, err := e.store.CountBets(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := e.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	activeBets, err := e.store.CountBetsByStatus(ctx, model.StatusActive)
	if err != nil {
		return nil, err
	}
	volume, err := e.store.GlobalVolume(ctx)
	if err != nil {
		return nil, err
	}
	settled, wins, err := e.store.GlobalSettledOutcomes(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := e.store.TokenAggregates(ctx)
	if err != nil {
		return nil, err
	}
	activity, err := e.store.HourlyActivity(ctx, e.now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	out := &GlobalStats{
		TotalBets:     totalBets,
		TotalUsers:    totalUsers,
		TotalVolume:   moneyStr(volume.Wagered),
		TotalPayout:   moneyStr(volume.Paid),
		ActiveBets:    activeBets,
		GlobalWinRate: pct(wins, settled),
		LastUpdated:   e.now(),
	}
	for _, t := range tokens {
		out.TokenStats = append(out.TokenStats, TokenVolumeRow{
			Token:  t.Token,
			Count:  t.TotalBets,
			Volume: moneyStr(t.Volume),
		})
	}
	for _, a := range activity {
		out.RecentActivity = append(out.RecentActivity, ActivityPoint{
			Hour:   a.Hour,
			Count:  a.Count,
			Volume: moneyStr(a.Volume),
		})
	}
	return out, nil
}

// TokenStats assembles the detailed per-token view with win rate and house
// edge = (volume - payout) / volume.
func (e *Engine) TokenStats(ctx context.Context) (*TokenStats, error) {
	aggs, err := e.store.TokenAggregates(ctx)
	if err != nil {
		return nil, err
	}

	out := &TokenStats{LastUpdated: e.now()}
	for _, t := range aggs {
		out.Tokens = append(out.Tokens, TokenStatsRow{
			Token:       t.Token,
			TotalBets:   t.TotalBets,
			ActiveBets:  t.ActiveBets,
			SettledBets: t.SettledBets,
			Wins:        t.Wins,
			UpBets:      t.UpBets,
			DownBets:    t.DownBets,
			WinRate:     pct(t.Wins, t.SettledBets),
			HouseEdge:   houseEdge(t.Volume, t.Payout),
			TotalVolume: moneyStr(t.Volume),
			TotalPayout: moneyStr(t.Payout),
		})
	}
	return out, nil
}

func houseEdge(volume, payout string) float64 {
	v, err := decimal.NewFromString(volume)
	if err != nil || v.IsZero() {
		return 0
	}
	p, err := decimal.NewFromString(payout)
	if err != nil {
		return 0
	}
	return v.Sub(p).Div(v).Mul(hundred).Round(2).InexactFloat64()
}

// paginate fills the standard envelope; pages is ceil(total/limit).
func paginate(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
