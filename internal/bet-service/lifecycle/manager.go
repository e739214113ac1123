// Package lifecycle owns the bet state machine and is the only writer of
// user account rollups. Every mutation goes through here so that bet and
// counters always change within the same logical operation.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/metrics"
)

// Invalidator receives write-side signals so cached aggregate views do not
// outlive a mutation. Implementations must swallow their own failures:
// a missed invalidation means staleness, never a failed request.
type Invalidator interface {
	OnBetMutation(ctx context.Context, address string)
}

// NoopInvalidator is used when no cache is wired.
type NoopInvalidator struct{}

func (NoopInvalidator) OnBetMutation(context.Context, string) {}

// Manager drives bet placement, settlement and cancellation.
type Manager struct {
	store       store.Store
	inval       Invalidator
	log         *zap.Logger
	dailyBetCap int
	now         func() time.Time
}

func NewManager(s store.Store, inval Invalidator, log *zap.Logger, dailyBetCap int) *Manager {
	if inval == nil {
		inval = NoopInvalidator{}
	}
	return &Manager{
		store:       s,
		inval:       inval,
		log:         log,
		dailyBetCap: dailyBetCap,
		now:         time.Now,
	}
}

// PlaceBetInput arrives shape-validated from the transport layer; the
// manager re-checks everything it depends on before mutating.
type PlaceBetInput struct {
	UserAddress string
	Token       string
	Amount      string
	Direction   string
	Duration    int
	TxHash      string
	StartPrice  string
	CommitHash  string
}

func (m *Manager) validatePlacement(in *PlaceBetInput) error {
	if err := model.ValidateAddressField("userAddress", in.UserAddress); err != nil {
		return err
	}
	if err := model.ValidateToken(in.Token); err != nil {
		return err
	}
	if err := model.ValidateDirection(in.Direction); err != nil {
		return err
	}
	if err := model.ValidateDuration(in.Duration); err != nil {
		return err
	}
	if err := model.ValidateHashField("txHash", in.TxHash); err != nil {
		return err
	}
	if err := model.ValidateHashField("commitHash", in.CommitHash); err != nil {
		return err
	}
	amount, err := model.ParseAmount("amount", in.Amount)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return &model.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if _, err := model.ParseAmount("startPrice", in.StartPrice); err != nil {
		return err
	}
	return nil
}

// PlaceBet records a new active bet and rolls it into the bettor's account.
// Placement is idempotent on the tx hash: a replay is rejected with
// ErrDuplicateSubmission, never overwritten.
func (m *Manager) PlaceBet(ctx context.Context, in PlaceBetInput) (*model.Bet, error) {
	if err := m.validatePlacement(&in); err != nil {
		return nil, err
	}
	address := model.NormalizeAddress(in.UserAddress)
	now := m.now()

	// Daily cap before any write. A fresh address has no account yet.
	u, err := m.store.GetUser(ctx, address)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if u != nil && u.BetsTodayAt(now) >= m.dailyBetCap {
		return nil, model.ErrDailyLimit
	}

	// Explicit replay check for a clean rejection; the unique constraint on
	// tx_hash still backs this under races.
	if _, err := m.store.GetBetByTxHash(ctx, in.TxHash); err == nil {
		return nil, model.ErrDuplicateSubmission
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	bet := &model.Bet{
		ID:          uuid.NewString(),
		UserAddress: address,
		Token:       in.Token,
		Amount:      in.Amount,
		Direction:   in.Direction,
		Duration:    in.Duration,
		StartPrice:  in.StartPrice,
		StartTime:   now,
		Status:      model.StatusActive,
		Payout:      "0",
		TxHash:      in.TxHash,
		CommitHash:  in.CommitHash,
	}
	if err := m.store.CreateBet(ctx, bet); err != nil {
		return nil, err
	}

	// Counters are advisory; a failure here is logged for reconciliation
	// rather than rolled back. The bet record remains the source of truth.
	if err := m.store.ApplyPlacement(ctx, address, in.Amount, now); err != nil {
		m.log.Error("placement counters not applied, needs reconciliation",
			zap.String("betId", bet.ID),
			zap.String("address", address),
			zap.Error(err))
	}

	metrics.BetsPlaced.Inc()
	m.inval.OnBetMutation(ctx, address)

	m.log.Info("bet placed",
		zap.String("betId", bet.ID),
		zap.String("address", address),
		zap.String("token", in.Token),
		zap.String("amount", in.Amount))
	return bet, nil
}

// SettleInput carries the observed outcome for one bet.
type SettleInput struct {
	EndPrice     string
	IsWinner     bool
	Payout       string
	SettleTxHash string
	RevealTxHash *string
}

func (m *Manager) validateSettlement(in *SettleInput) error {
	if _, err := model.ParseAmount("endPrice", in.EndPrice); err != nil {
		return err
	}
	if _, err := model.ParseAmount("payout", in.Payout); err != nil {
		return err
	}
	if err := model.ValidateHashField("settleTxHash", in.SettleTxHash); err != nil {
		return err
	}
	if in.RevealTxHash != nil {
		if err := model.ValidateHashField("revealTxHash", *in.RevealTxHash); err != nil {
			return err
		}
	}
	return nil
}

// SettleBet resolves one active bet. Settlement is deliberately not
// idempotent: a second attempt gets ErrInvalidState so payouts can never be
// credited twice. The store serializes concurrent attempts via the
// conditional active->settled write.
func (m *Manager) SettleBet(ctx context.Context, betID string, in SettleInput) (*model.Bet, error) {
	if err := m.validateSettlement(&in); err != nil {
		return nil, err
	}

	bet, err := m.store.GetBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.Status != model.StatusActive {
		return nil, model.ErrInvalidState
	}

	if err := m.store.SettleBet(ctx, betID, store.Settlement{
		EndPrice:     in.EndPrice,
		IsWinner:     in.IsWinner,
		Payout:       in.Payout,
		SettleTxHash: in.SettleTxHash,
		RevealTxHash: in.RevealTxHash,
		SettledAt:    m.now(),
	}); err != nil {
		return nil, err
	}

	if err := m.store.ApplySettlement(ctx, bet.UserAddress, in.IsWinner, in.Payout); err != nil {
		m.log.Error("settlement counters not applied, needs reconciliation",
			zap.String("betId", betID),
			zap.String("address", bet.UserAddress),
			zap.Error(err))
	}

	outcome := "loss"
	if in.IsWinner {
		outcome = "win"
	}
	metrics.BetsSettled.WithLabelValues(outcome).Inc()
	m.inval.OnBetMutation(ctx, bet.UserAddress)

	m.log.Info("bet settled",
		zap.String("betId", betID),
		zap.Bool("isWinner", in.IsWinner),
		zap.String("payout", in.Payout))

	return m.store.GetBet(ctx, betID)
}

// CancelBet moves an active bet to the cancelled terminal state. The wager
// is refunded on-chain, so counters stay untouched; reconciliation treats
// cancelled bets the same way.
func (m *Manager) CancelBet(ctx context.Context, betID string) (*model.Bet, error) {
	bet, err := m.store.GetBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if err := m.store.CancelBet(ctx, betID, m.now()); err != nil {
		return nil, err
	}
	m.inval.OnBetMutation(ctx, bet.UserAddress)
	m.log.Info("bet cancelled", zap.String("betId", betID))
	return m.store.GetBet(ctx, betID)
}

// GetBet fetches a single bet.
func (m *Manager) GetBet(ctx context.Context, betID string) (*model.Bet, error) {
	return m.store.GetBet(ctx, betID)
}

// ListUserBets returns one page of a bettor's history, newest first.
func (m *Manager) ListUserBets(ctx context.Context, address string, f store.BetFilter) ([]model.Bet, int, error) {
	if err := model.ValidateAddressField("address", address); err != nil {
		return nil, 0, err
	}
	if f.Status != "" && f.Status != model.StatusActive &&
		f.Status != model.StatusSettled && f.Status != model.StatusCancelled {
		return nil, 0, &model.ValidationError{Field: "status", Reason: "unknown status"}
	}
	return m.store.ListUserBets(ctx, model.NormalizeAddress(address), f)
}

// ListActiveBets returns active bets oldest-first for settlement monitors.
func (m *Manager) ListActiveBets(ctx context.Context, f store.ActiveFilter) ([]model.Bet, error) {
	if f.Token != "" {
		if err := model.ValidateToken(f.Token); err != nil {
			return nil, err
		}
	}
	return m.store.ListActiveBets(ctx, f)
}

// ListActiveExpired returns active bets whose window already elapsed.
func (m *Manager) ListActiveExpired(ctx context.Context, limit int) ([]model.Bet, error) {
	return m.store.ListActiveExpired(ctx, m.now(), limit)
}

// UpdatePreferences applies the signature-gated settings change.
func (m *Manager) UpdatePreferences(ctx context.Context, address string, p model.Preferences, referrer *string) error {
	if err := model.ValidateAddressField("address", address); err != nil {
		return err
	}
	addr := model.NormalizeAddress(address)
	if err := m.store.SetPreferences(ctx, addr, p, referrer); err != nil {
		return err
	}
	m.inval.OnBetMutation(ctx, addr)
	return nil
}

// Reconcile rebuilds one account's rollups from its bet records. Counters
// are a best-effort cache over the bets, so this is the recovery path for
// the accepted bet-written/counters-missed window.
func (m *Manager) Reconcile(ctx context.Context, address string) (store.Counters, error) {
	addr := model.NormalizeAddress(address)
	c, err := m.store.RebuildCounters(ctx, addr)
	if err != nil {
		return store.Counters{}, err
	}
	if err := m.store.ReplaceCounters(ctx, addr, c); err != nil {
		return store.Counters{}, err
	}
	m.inval.OnBetMutation(ctx, addr)
	m.log.Info("counters reconciled",
		zap.String("address", addr),
		zap.Int("totalBets", c.TotalBets),
		zap.Int("totalSettled", c.TotalSettled))
	return c, nil
}
