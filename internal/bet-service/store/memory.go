package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
)

// Memory implements Store with plain maps under one mutex. It mirrors the
// Postgres semantics, including the conditional settle transition, and backs
// the unit tests.
type Memory struct {
	mu    sync.Mutex
	bets  map[string]*model.Bet
	byTx  map[string]string // txHash -> bet id
	users map[string]*model.UserAccount
}

func NewMemory() *Memory {
	return &Memory{
		bets:  make(map[string]*model.Bet),
		byTx:  make(map[string]string),
		users: make(map[string]*model.UserAccount),
	}
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m *Memory) CreateBet(_ context.Context, b *model.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byTx[b.TxHash]; dup {
		return model.ErrDuplicateSubmission
	}
	cp := *b
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.bets[cp.ID] = &cp
	m.byTx[cp.TxHash] = cp.ID
	return nil
}

func (m *Memory) GetBet(_ context.Context, id string) (*model.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) GetBetByTxHash(_ context.Context, txHash string) (*model.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byTx[txHash]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *m.bets[id]
	return &cp, nil
}

func (m *Memory) userBets(address string) []*model.Bet {
	var out []*model.Bet
	for _, b := range m.bets {
		if b.UserAddress == address {
			out = append(out, b)
		}
	}
	return out
}

func (m *Memory) ListUserBets(_ context.Context, address string, f BetFilter) ([]model.Bet, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Bet
	for _, b := range m.userBets(address) {
		if f.Status == "" || b.Status == f.Status {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartTime.After(matched[j].StartTime)
	})

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}

	out := make([]model.Bet, 0, end-start)
	for _, b := range matched[start:end] {
		out = append(out, *b)
	}
	return out, total, nil
}

func (m *Memory) ListActiveBets(_ context.Context, f ActiveFilter) ([]model.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Bet
	for _, b := range m.bets {
		if b.Status != model.StatusActive {
			continue
		}
		if f.Token != "" && b.Token != f.Token {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartTime.Before(matched[j].StartTime)
	})
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}

	out := make([]model.Bet, 0, len(matched))
	for _, b := range matched {
		out = append(out, *b)
	}
	return out, nil
}

func (m *Memory) ListActiveExpired(_ context.Context, now time.Time, limit int) ([]model.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Bet
	for _, b := range m.bets {
		if b.Status == model.StatusActive && b.IsExpired(now) {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartTime.Before(matched[j].StartTime)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]model.Bet, 0, len(matched))
	for _, b := range matched {
		out = append(out, *b)
	}
	return out, nil
}

func (m *Memory) SettleBet(_ context.Context, id string, s Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bets[id]
	if !ok {
		return model.ErrNotFound
	}
	if b.Status != model.StatusActive {
		return model.ErrInvalidState
	}

	endPrice := s.EndPrice
	settleTx := s.SettleTxHash
	settledAt := s.SettledAt
	b.EndPrice = &endPrice
	b.IsWinner = s.IsWinner
	b.Payout = s.Payout
	b.SettleTxHash = &settleTx
	if s.RevealTxHash != nil {
		rv := *s.RevealTxHash
		b.RevealTxHash = &rv
		b.Revealed = true
	}
	b.Status = model.StatusSettled
	b.SettledAt = &settledAt
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) CancelBet(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bets[id]
	if !ok {
		return model.ErrNotFound
	}
	if b.Status != model.StatusActive {
		return model.ErrInvalidState
	}
	b.Status = model.StatusCancelled
	settledAt := now
	b.SettledAt = &settledAt
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) GetUser(_ context.Context, address string) (*model.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[address]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) ApplyPlacement(_ context.Context, address, amount string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[address]
	if !ok {
		u = &model.UserAccount{
			Address:      address,
			TotalWagered: "0",
			TotalWon:     "0",
			Preferences:  model.Preferences{Notifications: true},
			CreatedAt:    time.Now(),
		}
		m.users[address] = u
	}

	u.TotalBets++
	u.TotalWagered = mustDec(u.TotalWagered).Add(mustDec(amount)).String()

	t := now
	u.LastBetTime = &t
	if u.FirstBetTime == nil {
		u.FirstBetTime = &t
	}

	day := model.Day(now.UTC())
	if u.LastBetDay == nil || u.LastBetDay.Before(day) {
		u.BetsToday = 1
	} else {
		u.BetsToday++
	}
	u.LastBetDay = &day
	u.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ApplySettlement(_ context.Context, address string, isWinner bool, payout string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[address]
	if !ok {
		return model.ErrNotFound
	}
	u.TotalSettled++
	if isWinner {
		u.TotalWins++
		u.TotalWon = mustDec(u.TotalWon).Add(mustDec(payout)).String()
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) SetPreferences(_ context.Context, address string, p model.Preferences, referrer *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[address]
	if !ok {
		return model.ErrNotFound
	}
	u.Preferences = p
	if referrer != nil {
		r := *referrer
		u.Referrer = &r
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ReplaceCounters(_ context.Context, address string, c Counters) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[address]
	if !ok {
		return model.ErrNotFound
	}
	u.TotalBets = c.TotalBets
	u.TotalWins = c.TotalWins
	u.TotalSettled = c.TotalSettled
	u.TotalWagered = c.TotalWagered
	u.TotalWon = c.TotalWon
	u.UpdatedAt = time.Now()
	return nil
}

// less orders a before b under the given rule, matching the Postgres
// ORDER BY clauses.
func less(a, b *model.UserAccount, sortBy SortBy) bool {
	switch sortBy {
	case SortTotalWon:
		return mustDec(a.TotalWon).GreaterThan(mustDec(b.TotalWon))
	case SortTotalBets:
		return a.TotalBets > b.TotalBets
	case SortProfit:
		return a.Profit().GreaterThan(b.Profit())
	default:
		cmp := a.WinRate().Cmp(b.WinRate())
		if cmp != 0 {
			return cmp > 0
		}
		return a.TotalBets > b.TotalBets
	}
}

func (m *Memory) eligible(q RankQuery) []*model.UserAccount {
	var out []*model.UserAccount
	for _, u := range m.users {
		if u.TotalBets < q.MinBets {
			continue
		}
		if q.Since != nil && (u.LastBetTime == nil || u.LastBetTime.Before(*q.Since)) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (m *Memory) RankedUsers(_ context.Context, q RankQuery) ([]model.UserAccount, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := m.eligible(q)
	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], q.SortBy)
	})

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	out := make([]model.UserAccount, 0, end-start)
	for _, u := range matched[start:end] {
		out = append(out, *u)
	}
	return out, total, nil
}

func (m *Memory) CountBetter(_ context.Context, u *model.UserAccount, sortBy SortBy, minBets int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, other := range m.users {
		if other.TotalBets < minBets {
			continue
		}
		var better bool
		switch sortBy {
		case SortTotalWon:
			better = mustDec(other.TotalWon).GreaterThan(mustDec(u.TotalWon))
		case SortTotalBets:
			better = other.TotalBets > u.TotalBets
		case SortProfit:
			better = other.Profit().GreaterThan(u.Profit())
		default:
			better = other.WinRate().GreaterThan(u.WinRate())
		}
		if better {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountBets(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bets), nil
}

func (m *Memory) CountBetsByStatus(_ context.Context, status string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bets {
		if b.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *Memory) GlobalVolume(_ context.Context) (VolumeTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wagered, paid := decimal.Zero, decimal.Zero
	for _, b := range m.bets {
		wagered = wagered.Add(mustDec(b.Amount))
		paid = paid.Add(mustDec(b.Payout))
	}
	return VolumeTotals{Wagered: wagered.String(), Paid: paid.String()}, nil
}

func (m *Memory) GlobalSettledOutcomes(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settled, wins := 0, 0
	for _, b := range m.bets {
		if b.Status != model.StatusSettled {
			continue
		}
		settled++
		if b.IsWinner {
			wins++
		}
	}
	return settled, wins, nil
}

func (m *Memory) TokenAggregates(_ context.Context) ([]TokenAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type agg struct {
		TokenAggregate
		volume decimal.Decimal
		payout decimal.Decimal
	}
	byToken := make(map[string]*agg)
	for _, b := range m.bets {
		a, ok := byToken[b.Token]
		if !ok {
			a = &agg{TokenAggregate: TokenAggregate{Token: b.Token}}
			byToken[b.Token] = a
		}
		a.TotalBets++
		switch b.Status {
		case model.StatusActive:
			a.ActiveBets++
		case model.StatusSettled:
			a.SettledBets++
		}
		if b.IsWinner {
			a.Wins++
		}
		if b.Direction == model.DirectionUp {
			a.UpBets++
		} else {
			a.DownBets++
		}
		a.volume = a.volume.Add(mustDec(b.Amount))
		a.payout = a.payout.Add(mustDec(b.Payout))
	}

	var out []TokenAggregate
	for _, a := range byToken {
		a.Volume = a.volume.String()
		a.Payout = a.payout.String()
		out = append(out, a.TokenAggregate)
	}
	sort.Slice(out, func(i, j int) bool {
		return mustDec(out[i].Volume).GreaterThan(mustDec(out[j].Volume))
	})
	return out, nil
}

func (m *Memory) UserTokenBreakdown(_ context.Context, address string) ([]TokenBreakdown, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type agg struct {
		TokenBreakdown
		volume decimal.Decimal
		profit decimal.Decimal
	}
	byToken := make(map[string]*agg)
	for _, b := range m.userBets(address) {
		a, ok := byToken[b.Token]
		if !ok {
			a = &agg{TokenBreakdown: TokenBreakdown{Token: b.Token}}
			byToken[b.Token] = a
		}
		a.Bets++
		if b.IsWinner {
			a.Wins++
		}
		a.volume = a.volume.Add(mustDec(b.Amount))
		a.profit = a.profit.Add(mustDec(b.Payout).Sub(mustDec(b.Amount)))
	}

	var out []TokenBreakdown
	for _, a := range byToken {
		a.Volume = a.volume.String()
		a.Profit = a.profit.String()
		out = append(out, a.TokenBreakdown)
	}
	sort.Slice(out, func(i, j int) bool {
		return mustDec(out[i].Volume).GreaterThan(mustDec(out[j].Volume))
	})
	return out, nil
}

func (m *Memory) UserDurationBreakdown(_ context.Context, address string) ([]DurationBreakdown, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDur := make(map[int]*DurationBreakdown)
	for _, b := range m.userBets(address) {
		d, ok := byDur[b.Duration]
		if !ok {
			d = &DurationBreakdown{Duration: b.Duration}
			byDur[b.Duration] = d
		}
		d.Bets++
		if b.IsWinner {
			d.Wins++
		}
	}

	var out []DurationBreakdown
	for _, d := range byDur {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Duration < out[j].Duration })
	return out, nil
}

func (m *Memory) RecentSettled(_ context.Context, address string, limit int) ([]model.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Bet
	for _, b := range m.userBets(address) {
		if b.Status == model.StatusSettled {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SettledAt.After(*matched[j].SettledAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]model.Bet, 0, len(matched))
	for _, b := range matched {
		out = append(out, *b)
	}
	return out, nil
}

func (m *Memory) HourlyActivity(_ context.Context, since time.Time) ([]ActivityBucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type agg struct {
		count  int
		volume decimal.Decimal
	}
	byHour := make(map[time.Time]*agg)
	for _, b := range m.bets {
		if b.StartTime.Before(since) {
			continue
		}
		h := b.StartTime.UTC().Truncate(time.Hour)
		a, ok := byHour[h]
		if !ok {
			a = &agg{}
			byHour[h] = a
		}
		a.count++
		a.volume = a.volume.Add(mustDec(b.Amount))
	}

	var out []ActivityBucket
	for h, a := range byHour {
		out = append(out, ActivityBucket{Hour: h, Count: a.count, Volume: a.volume.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out, nil
}

func (m *Memory) RebuildCounters(_ context.Context, address string) (Counters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := Counters{TotalWagered: "0", TotalWon: "0"}
	wagered, won := decimal.Zero, decimal.Zero
	for _, b := range m.userBets(address) {
		c.TotalBets++
		wagered = wagered.Add(mustDec(b.Amount))
		if b.Status == model.StatusSettled {
			c.TotalSettled++
			if b.IsWinner {
				c.TotalWins++
				won = won.Add(mustDec(b.Payout))
			}
		}
	}
	c.TotalWagered = wagered.String()
	c.TotalWon = won.String()
	return c, nil
}

var _ Store = (*Memory)(nil)
