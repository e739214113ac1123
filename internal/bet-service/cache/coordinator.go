package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/stats"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/metrics"
)

// BetLister is the slice of the lifecycle manager the coordinator needs
// for the bet-list family.
type BetLister interface {
	ListUserBets(ctx context.Context, address string, f store.BetFilter) ([]model.Bet, int, error)
}

// TTLs holds the per-family expirations. Short for fast-moving aggregate
// views, long for slow-changing token stats.
type TTLs struct {
	Leaderboard time.Duration
	UserStats   time.Duration
	BetList     time.Duration
	UserRank    time.Duration
	GlobalStats time.Duration
	TokenStats  time.Duration
}

// Coordinator is the read-through layer: serve from cache when present,
// otherwise compute via the aggregation engine and populate. Cache failures
// never fail a request; they degrade to direct computation.
type Coordinator struct {
	cache  Cache
	engine *stats.Engine
	bets   BetLister
	ttls   TTLs
	log    *zap.Logger
}

func NewCoordinator(c Cache, engine *stats.Engine, bets BetLister, ttls TTLs, log *zap.Logger) *Coordinator {
	return &Coordinator{cache: c, engine: engine, bets: bets, ttls: ttls, log: log}
}

// SetBetLister wires the bet-list source after construction. The lifecycle
// manager invalidates through the coordinator and the coordinator reads
// through the manager, so one side has to be attached late.
func (co *Coordinator) SetBetLister(b BetLister) { co.bets = b }

// readThrough runs the hit/miss/populate cycle for one key.
func readThrough[T any](ctx context.Context, co *Coordinator, family, key string, ttl time.Duration, compute func(context.Context) (*T, error)) (*T, error) {
	if b, ok, err := co.cache.Get(ctx, key); err != nil {
		metrics.CacheErrors.Inc()
		co.log.Warn("cache read failed, computing directly", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if jerr := json.Unmarshal(b, &v); jerr == nil {
			metrics.CacheHits.WithLabelValues(family).Inc()
			return &v, nil
		}
		// Undecodable entry: treat as miss and overwrite below.
	}

	metrics.CacheMisses.WithLabelValues(family).Inc()
	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if b, jerr := json.Marshal(v); jerr == nil {
		if serr := co.cache.Set(ctx, key, b, ttl); serr != nil {
			metrics.CacheErrors.Inc()
			co.log.Warn("cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return v, nil
}

// UserBetsResult is the paginated bet-list view.
type UserBetsResult struct {
	Bets       []model.Bet      `json:"bets"`
	Pagination stats.Pagination `json:"pagination"`
}

func (co *Coordinator) UserBets(ctx context.Context, address string, f store.BetFilter) (*UserBetsResult, error) {
	addr := model.NormalizeAddress(address)
	key := userBetsKey(addr, f.Page, f.Limit, f.Status)
	return readThrough(ctx, co, famUserBets, key, co.ttls.BetList, func(ctx context.Context) (*UserBetsResult, error) {
		bets, total, err := co.bets.ListUserBets(ctx, addr, f)
		if err != nil {
			return nil, err
		}
		if bets == nil {
			bets = []model.Bet{}
		}
		pages := 0
		if f.Limit > 0 {
			pages = (total + f.Limit - 1) / f.Limit
		}
		return &UserBetsResult{
			Bets:       bets,
			Pagination: stats.Pagination{Page: f.Page, Limit: f.Limit, Total: total, Pages: pages},
		}, nil
	})
}

func (co *Coordinator) Leaderboard(ctx context.Context, q stats.LeaderboardQuery) (*stats.LeaderboardPage, error) {
	key := leaderboardKey(q.Timeframe, string(q.SortBy), q.Page, q.Limit)
	return readThrough(ctx, co, famLeaderboard, key, co.ttls.Leaderboard, func(ctx context.Context) (*stats.LeaderboardPage, error) {
		return co.engine.Leaderboard(ctx, q)
	})
}

func (co *Coordinator) UserRank(ctx context.Context, address, timeframe string, sortBy store.SortBy) (*stats.RankResult, error) {
	addr := model.NormalizeAddress(address)
	key := userRankKey(addr, timeframe, string(sortBy))
	return readThrough(ctx, co, famUserRank, key, co.ttls.UserRank, func(ctx context.Context) (*stats.RankResult, error) {
		return co.engine.UserRank(ctx, addr, sortBy)
	})
}

func (co *Coordinator) UserStats(ctx context.Context, address string) (*stats.UserStats, error) {
	addr := model.NormalizeAddress(address)
	return readThrough(ctx, co, famUserStats, userStatsKey(addr), co.ttls.UserStats, func(ctx context.Context) (*stats.UserStats, error) {
		return co.engine.UserStats(ctx, addr)
	})
}

func (co *Coordinator) GlobalStats(ctx context.Context) (*stats.GlobalStats, error) {
	return readThrough(ctx, co, famGlobalStats, famGlobalStats, co.ttls.GlobalStats, func(ctx context.Context) (*stats.GlobalStats, error) {
		return co.engine.GlobalStats(ctx)
	})
}

func (co *Coordinator) TokenStats(ctx context.Context) (*stats.TokenStats, error) {
	return readThrough(ctx, co, famTokenStats, famTokenStats, co.ttls.TokenStats, func(ctx context.Context) (*stats.TokenStats, error) {
		return co.engine.TokenStats(ctx)
	})
}

// OnBetMutation implements the lifecycle invalidation signal. Invalidation
// is coarse: the bettor's families plus the whole leaderboard and global
// families go at once — correctness over precision. Failures are logged,
// not retried; entries expire by TTL anyway.
func (co *Coordinator) OnBetMutation(ctx context.Context, address string) {
	prefixes := []string{
		famUserBets + ":" + address + ":",
		famUserStats + ":" + address,
		famUserRank + ":" + address + ":",
		famLeaderboard + ":",
		famGlobalStats,
		famTokenStats,
	}
	for _, p := range prefixes {
		if err := co.cache.DeleteByPrefix(ctx, p); err != nil {
			metrics.CacheErrors.Inc()
			co.log.Warn("cache invalidation failed", zap.String("prefix", p), zap.Error(err))
		}
	}
}
