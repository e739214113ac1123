// Package model defines the core betting domain types. All monetary values
// travel as exact decimal strings and are computed with shopspring/decimal —
// never float64.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bet statuses. Transitions only move forward: active is the initial state,
// settled and cancelled are terminal.
const (
	StatusActive    = "active"
	StatusSettled   = "settled"
	StatusCancelled = "cancelled"
)

// Directions of a price bet.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Tokens supported by the betting contract.
var Tokens = []string{"ETH", "BTC", "LINK"}

// Durations supported by the betting contract, in seconds
// (5 minutes, 15 minutes, 1 hour).
var Durations = []int{300, 900, 3600}

// Bet is one wager on a short-term price movement, mirrored from the
// on-chain commit-reveal contract. Created active at placement, mutated
// exactly once at settlement or cancellation, never deleted.
type Bet struct {
	ID          string `json:"id"`
	UserAddress string `json:"userAddress"` // lowercase 0x + 40 hex
	Token       string `json:"token"`
	Amount      string `json:"amount"` // decimal string
	Direction   string `json:"direction"`
	Duration    int    `json:"duration"` // seconds

	StartPrice string  `json:"startPrice"`
	EndPrice   *string `json:"endPrice"`

	StartTime time.Time  `json:"startTime"`
	SettledAt *time.Time `json:"settledAt"`

	Status   string `json:"status"`
	IsWinner bool   `json:"isWinner"`
	Payout   string `json:"payout"` // "0" until settled as a win

	TxHash       string  `json:"txHash"` // placement tx, unique
	SettleTxHash *string `json:"settleTxHash"`

	CommitHash   string  `json:"commitHash"`
	Revealed     bool    `json:"revealed"`
	RevealTxHash *string `json:"revealTxHash"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsExpired reports whether the bet window has elapsed at the given instant.
// Expiry is a read-time computation only; an expired-but-unsettled bet stays
// active until a settlement instruction arrives.
func (b *Bet) IsExpired(now time.Time) bool {
	return now.After(b.ExpiresAt())
}

func (b *Bet) ExpiresAt() time.Time {
	return b.StartTime.Add(time.Duration(b.Duration) * time.Second)
}

// TimeRemaining returns how long until the bet window closes, floored at 0.
func (b *Bet) TimeRemaining(now time.Time) time.Duration {
	rem := b.ExpiresAt().Sub(now)
	if rem < 0 {
		return 0
	}
	return rem
}

// UserAccount holds the rolled-up counters for one bettor address. The
// counters are advisory aggregates rebuildable from the bets themselves;
// the Bet record is the source of truth. Only the lifecycle manager
// writes to this entity.
type UserAccount struct {
	Address string `json:"address"` // lowercase, unique

	TotalBets    int    `json:"totalBets"`
	TotalWins    int    `json:"totalWins"`
	TotalSettled int    `json:"totalSettled"`
	TotalWagered string `json:"totalWagered"` // decimal string
	TotalWon     string `json:"totalWon"`     // decimal string

	LastBetTime  *time.Time `json:"lastBetTime"`
	FirstBetTime *time.Time `json:"firstBetTime"`

	// Daily cap bookkeeping: BetsToday counts placements since LastBetDay,
	// and resets when the UTC day advances.
	BetsToday  int        `json:"betsToday"`
	LastBetDay *time.Time `json:"lastBetDay"`

	Preferences Preferences `json:"preferences"`
	Referrer    *string     `json:"referrer"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Preferences are free-form user settings updated through the
// signature-gated endpoint.
type Preferences struct {
	Notifications bool `json:"notifications"`
	Newsletter    bool `json:"newsletter"`
}

// WinRate returns totalWins/totalBets as a percentage, 0 for a fresh account.
func (u *UserAccount) WinRate() decimal.Decimal {
	if u.TotalBets == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(u.TotalWins)).
		Div(decimal.NewFromInt(int64(u.TotalBets))).
		Mul(decimal.NewFromInt(100))
}

// Profit returns totalWon - totalWagered.
func (u *UserAccount) Profit() decimal.Decimal {
	won, _ := decimal.NewFromString(u.TotalWon)
	wagered, _ := decimal.NewFromString(u.TotalWagered)
	return won.Sub(wagered)
}

// AverageBetSize returns totalWagered/totalBets, 0 for a fresh account.
func (u *UserAccount) AverageBetSize() decimal.Decimal {
	if u.TotalBets == 0 {
		return decimal.Zero
	}
	wagered, _ := decimal.NewFromString(u.TotalWagered)
	return wagered.Div(decimal.NewFromInt(int64(u.TotalBets)))
}

// Day truncates t to its UTC day, the reference used by the daily counter.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BetsTodayAt returns the effective daily counter at the given instant,
// treating a stale LastBetDay as a reset.
func (u *UserAccount) BetsTodayAt(now time.Time) int {
	if u.LastBetDay == nil || u.LastBetDay.Before(Day(now.UTC())) {
		return 0
	}
	return u.BetsToday
}
