package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/lifecycle"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
	"github.com/LordMercury-blip/Web3-Betting-dapp/pkg/contracts/events"
)

type fakeBets struct {
	settleCalls int
	settleErr   []error // popped per call; nil entry means success
	lastInput   lifecycle.SettleInput
	expired     []model.Bet
	reconciled  []string
}

func (f *fakeBets) SettleBet(_ context.Context, betID string, in lifecycle.SettleInput) (*model.Bet, error) {
	f.settleCalls++
	f.lastInput = in
	var err error
	if len(f.settleErr) > 0 {
		err = f.settleErr[0]
		f.settleErr = f.settleErr[1:]
	}
	if err != nil {
		return nil, err
	}
	return &model.Bet{ID: betID, UserAddress: "0xaaaa", Status: model.StatusSettled}, nil
}

func (f *fakeBets) ListActiveExpired(context.Context, int) ([]model.Bet, error) {
	return f.expired, nil
}

func (f *fakeBets) Reconcile(_ context.Context, address string) (store.Counters, error) {
	f.reconciled = append(f.reconciled, address)
	return store.Counters{}, nil
}

func instruction() *events.BetSettlement {
	return &events.BetSettlement{
		BetID:        "bet-1",
		EndPrice:     "2100",
		IsWinner:     true,
		Payout:       "19.6",
		SettleTxHash: "0xsettle",
		RevealTxHash: "0xreveal",
	}
}

func newProcessor(bets *fakeBets) (*Processor, *[]string) {
	var skips []string
	p := &Processor{
		Log:       zap.NewNop(),
		Bets:      bets,
		OnSkipped: func(reason string) { skips = append(skips, reason) },
	}
	return p, &skips
}

func TestSettleOneAppliesInstruction(t *testing.T) {
	bets := &fakeBets{}
	p, _ := newProcessor(bets)

	ev := instruction()
	raw, _ := json.Marshal(ev)
	p.settleOne(context.Background(), ev, raw)

	assert.Equal(t, 1, bets.settleCalls)
	assert.Equal(t, "2100", bets.lastInput.EndPrice)
	assert.Equal(t, "19.6", bets.lastInput.Payout)
	require.NotNil(t, bets.lastInput.RevealTxHash)
	assert.Equal(t, "0xreveal", *bets.lastInput.RevealTxHash)

	// The settled address is queued for the next reconcile sweep.
	assert.Equal(t, []string{"0xaaaa"}, p.drainTouched())
	assert.Empty(t, p.drainTouched())
}

func TestSettleOneOmitsAbsentRevealHash(t *testing.T) {
	bets := &fakeBets{}
	p, _ := newProcessor(bets)

	ev := instruction()
	ev.RevealTxHash = ""
	raw, _ := json.Marshal(ev)
	p.settleOne(context.Background(), ev, raw)

	assert.Nil(t, bets.lastInput.RevealTxHash)
}

func TestSettleOneSkipsRedelivery(t *testing.T) {
	bets := &fakeBets{settleErr: []error{model.ErrInvalidState}}
	p, skips := newProcessor(bets)

	ev := instruction()
	raw, _ := json.Marshal(ev)
	p.settleOne(context.Background(), ev, raw)

	assert.Equal(t, 1, bets.settleCalls)
	assert.Equal(t, []string{"already_terminal"}, *skips)
	assert.Empty(t, p.drainTouched())
}

func TestSettleOneRetriesTransientFailure(t *testing.T) {
	bets := &fakeBets{settleErr: []error{
		model.StoreError(errors.New("timeout")),
		model.StoreError(errors.New("timeout")),
		nil,
	}}
	p, _ := newProcessor(bets)

	ev := instruction()
	raw, _ := json.Marshal(ev)
	p.settleOne(context.Background(), ev, raw)

	assert.Equal(t, 3, bets.settleCalls)
	assert.Equal(t, []string{"0xaaaa"}, p.drainTouched())
}

func TestSettleOneDoesNotRetryTerminalErrors(t *testing.T) {
	bets := &fakeBets{settleErr: []error{model.ErrNotFound}}
	p, skips := newProcessor(bets)
	var stages []string
	p.OnError = func(stage string) { stages = append(stages, stage) }

	ev := instruction()
	raw, _ := json.Marshal(ev)
	p.settleOne(context.Background(), ev, raw)

	assert.Equal(t, 1, bets.settleCalls)
	assert.Equal(t, []string{"unknown_bet"}, *skips)
	assert.Equal(t, []string{"settle"}, stages)
}

func TestAnnouncedDeduplicates(t *testing.T) {
	p := &Processor{Log: zap.NewNop()}

	assert.False(t, p.alreadyAnnounced("bet-1"))
	assert.True(t, p.alreadyAnnounced("bet-1"))
	assert.False(t, p.alreadyAnnounced("bet-2"))

	// A failed publish re-arms the announcement.
	p.forgetAnnounced("bet-1")
	assert.False(t, p.alreadyAnnounced("bet-1"))
}

type recordingPublisher struct {
	expired []events.BetExpired
}

func (r *recordingPublisher) PublishBetExpired(_ context.Context, e events.BetExpired) error {
	r.expired = append(r.expired, e)
	return nil
}

func TestExpiryPollerAnnouncesOnce(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bets := &fakeBets{expired: []model.Bet{{
		ID:          "bet-1",
		UserAddress: "0xaaaa",
		Token:       "ETH",
		Duration:    300,
		StartTime:   start,
		Status:      model.StatusActive,
	}}}
	publ := &recordingPublisher{}
	p := &Processor{
		Log:                zap.NewNop(),
		Bets:               bets,
		Publ:               publ,
		ExpiryPollInterval: 10 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	p.RunExpiryPoller(ctx)

	// Several poll cycles ran, but the bet was announced exactly once.
	require.Len(t, publ.expired, 1)
	e := publ.expired[0]
	assert.Equal(t, "bet-1", e.BetID)
	assert.Equal(t, start.UnixMilli(), e.StartTimeMs)
	assert.Equal(t, start.Add(5*time.Minute).UnixMilli(), e.ExpiredAtMs)
}

func TestReconcilerSweepsTouchedAddresses(t *testing.T) {
	bets := &fakeBets{}
	p := &Processor{
		Log:               zap.NewNop(),
		Bets:              bets,
		ReconcileInterval: 10 * time.Millisecond,
	}
	p.markTouched("0xaaaa")
	p.markTouched("0xbbbb")
	p.markTouched("0xaaaa") // deduplicated

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	p.RunReconciler(ctx)

	assert.ElementsMatch(t, []string{"0xaaaa", "0xbbbb"}, bets.reconciled)
}
