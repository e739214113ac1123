// Package store is the durable record layer for bets and user accounts.
// Postgres is the source of truth; the in-memory implementation backs unit
// tests. Aggregate queries live here so each backend can answer them the
// way it is best at (SQL for Postgres, plain loops in memory).
package store

import (
	"context"
	"time"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
)

// SortBy selects the leaderboard ordering rule.
type SortBy string

const (
	SortWinRate   SortBy = "winRate"
	SortTotalWon  SortBy = "totalWon"
	SortTotalBets SortBy = "totalBets"
	SortProfit    SortBy = "profit"
)

func ValidSortBy(s SortBy) bool {
	switch s {
	case SortWinRate, SortTotalWon, SortTotalBets, SortProfit:
		return true
	}
	return false
}

// BetFilter narrows a user's bet listing.
type BetFilter struct {
	Status string // empty = all
	Page   int    // 1-based
	Limit  int
}

// ActiveFilter narrows the active-bet listing used by settlement monitors.
type ActiveFilter struct {
	Token string // empty = all
	Limit int
}

// Settlement carries the outcome fields written exactly once per bet.
type Settlement struct {
	EndPrice     string
	IsWinner     bool
	Payout       string
	SettleTxHash string
	RevealTxHash *string
	SettledAt    time.Time
}

// RankQuery parameterizes leaderboard pages.
type RankQuery struct {
	MinBets int
	SortBy  SortBy
	Since   *time.Time // lastBetTime floor; nil = all-time
	Page    int        // 1-based
	Limit   int
}

// Counters is the rebuildable rollup snapshot used by reconciliation.
type Counters struct {
	TotalBets    int
	TotalWins    int
	TotalSettled int
	TotalWagered string
	TotalWon     string
}

// TokenAggregate is the per-token slice of the global picture.
type TokenAggregate struct {
	Token       string
	TotalBets   int
	ActiveBets  int
	SettledBets int
	Wins        int
	UpBets      int
	DownBets    int
	Volume      string
	Payout      string
}

// TokenBreakdown is one user's performance on one token.
type TokenBreakdown struct {
	Token  string
	Bets   int
	Wins   int
	Volume string
	Profit string
}

// DurationBreakdown is one user's performance on one duration class.
type DurationBreakdown struct {
	Duration int
	Bets     int
	Wins     int
}

// ActivityBucket is one hour of placement activity.
type ActivityBucket struct {
	Hour   time.Time
	Count  int
	Volume string
}

// VolumeTotals are the all-time wagered and paid-out sums.
type VolumeTotals struct {
	Wagered string
	Paid    string
}

// Store is the persistence interface shared by Postgres and the in-memory
// test double.
type Store interface {
	// --- Bets ---

	// CreateBet persists a new bet. Returns model.ErrDuplicateSubmission
	// when the placement tx hash is already recorded.
	CreateBet(ctx context.Context, b *model.Bet) error

	// GetBet fetches one bet by id. Returns model.ErrNotFound when absent.
	GetBet(ctx context.Context, id string) (*model.Bet, error)

	// GetBetByTxHash fetches one bet by its placement tx hash.
	GetBetByTxHash(ctx context.Context, txHash string) (*model.Bet, error)

	// ListUserBets returns one page of a user's bets ordered by start time
	// descending, plus the total matching count.
	ListUserBets(ctx context.Context, address string, f BetFilter) ([]model.Bet, int, error)

	// ListActiveBets returns active bets ordered by start time ascending.
	ListActiveBets(ctx context.Context, f ActiveFilter) ([]model.Bet, error)

	// ListActiveExpired returns active bets whose window elapsed before now.
	ListActiveExpired(ctx context.Context, now time.Time, limit int) ([]model.Bet, error)

	// SettleBet transitions one bet from active to settled in a single
	// conditional write. A concurrent second attempt observes the
	// post-transition state and gets model.ErrInvalidState.
	SettleBet(ctx context.Context, id string, s Settlement) error

	// CancelBet transitions one bet from active to cancelled.
	CancelBet(ctx context.Context, id string, now time.Time) error

	// --- User accounts ---

	// GetUser fetches one account. Returns model.ErrNotFound when absent.
	GetUser(ctx context.Context, address string) (*model.UserAccount, error)

	// ApplyPlacement upserts the account and rolls the placement into its
	// counters: totalBets, totalWagered, lastBetTime, firstBetTime and the
	// daily counter with its day-boundary reset.
	ApplyPlacement(ctx context.Context, address, amount string, now time.Time) error

	// ApplySettlement rolls a settlement into the counters: totalSettled
	// always, totalWins and totalWon only on a win.
	ApplySettlement(ctx context.Context, address string, isWinner bool, payout string) error

	// SetPreferences updates the free-form user settings.
	SetPreferences(ctx context.Context, address string, p model.Preferences, referrer *string) error

	// ReplaceCounters overwrites the rollups with a rebuilt snapshot.
	ReplaceCounters(ctx context.Context, address string, c Counters) error

	// RankedUsers returns one leaderboard page plus the count of eligible
	// accounts. Ordering: the SortBy rule, with win-rate ties broken by
	// total bets descending.
	RankedUsers(ctx context.Context, q RankQuery) ([]model.UserAccount, int, error)

	// CountBetter counts accounts strictly better than u under the given
	// ordering rule, among accounts at or above the floor.
	CountBetter(ctx context.Context, u *model.UserAccount, sortBy SortBy, minBets int) (int, error)

	// --- Aggregates ---

	CountBets(ctx context.Context) (int, error)
	CountBetsByStatus(ctx context.Context, status string) (int, error)
	CountUsers(ctx context.Context) (int, error)

	// GlobalVolume sums wagered amounts and payouts across all bets.
	GlobalVolume(ctx context.Context) (VolumeTotals, error)

	// GlobalSettledOutcomes counts settled bets and how many were wins.
	GlobalSettledOutcomes(ctx context.Context) (settled, wins int, err error)

	// TokenAggregates groups all bets by token, ordered by volume descending.
	TokenAggregates(ctx context.Context) ([]TokenAggregate, error)

	// UserTokenBreakdown groups one user's bets by token.
	UserTokenBreakdown(ctx context.Context, address string) ([]TokenBreakdown, error)

	// UserDurationBreakdown groups one user's bets by duration class.
	UserDurationBreakdown(ctx context.Context, address string) ([]DurationBreakdown, error)

	// RecentSettled returns a user's settled bets newest-first.
	RecentSettled(ctx context.Context, address string, limit int) ([]model.Bet, error)

	// HourlyActivity buckets placements per hour since the given instant.
	HourlyActivity(ctx context.Context, since time.Time) ([]ActivityBucket, error)

	// RebuildCounters recomputes a user's rollups from the bet records.
	// Reconciliation replays this against ReplaceCounters.
	RebuildCounters(ctx context.Context, address string) (Counters, error)
}
