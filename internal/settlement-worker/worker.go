// Package worker drives settlement from the stream side: it consumes
// settlement instructions produced by the chain watcher, applies them through
// the lifecycle manager, announces expired bets and periodically rebuilds
// account rollups for addresses it touched.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/lifecycle"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/kafka"
	"github.com/LordMercury-blip/Web3-Betting-dapp/pkg/contracts/events"
)

// Bets is the slice of the lifecycle manager the worker needs.
type Bets interface {
	SettleBet(ctx context.Context, betID string, in lifecycle.SettleInput) (*model.Bet, error)
	ListActiveExpired(ctx context.Context, limit int) ([]model.Bet, error)
	Reconcile(ctx context.Context, address string) (store.Counters, error)
}

// ExpiredPublisher announces bets whose window elapsed without a settlement
// instruction, so the chain watcher can prioritize their reveals.
type ExpiredPublisher interface {
	PublishBetExpired(ctx context.Context, e events.BetExpired) error
}

type Processor struct {
	Log    *zap.Logger
	Reader *kafkago.Reader
	DLQ    *kafkago.Writer
	Bets   Bets
	Publ   ExpiredPublisher

	ExpiryPollInterval time.Duration
	ReconcileInterval  time.Duration
	ExpiryBatch        int

	OnConsumed func()
	OnSettled  func()
	OnSkipped  func(reason string)
	OnError    func(stage string)

	mu        sync.Mutex
	touched   map[string]struct{} // addresses settled since the last reconcile sweep
	announced map[string]struct{} // expired bet ids already published
}

// Run consumes settlement instructions until the context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.errStage("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		p.count(p.OnConsumed)

		var ev events.BetSettlement
		if jerr := json.Unmarshal(m.Value, &ev); jerr != nil {
			p.Log.Error("undecodable settlement instruction", zap.Error(jerr))
			p.errStage("decode")
			p.toDLQ(ctx, string(m.Key), m.Value)
			continue
		}

		p.settleOne(ctx, &ev, m.Value)
	}
}

// settleOne applies one instruction. Redeliveries of an already-settled bet
// are skipped, not dead-lettered: the conditional write already refused the
// second payout. Transient store failures are retried before the DLQ.
func (p *Processor) settleOne(ctx context.Context, ev *events.BetSettlement, raw []byte) {
	in := lifecycle.SettleInput{
		EndPrice:     ev.EndPrice,
		IsWinner:     ev.IsWinner,
		Payout:       ev.Payout,
		SettleTxHash: ev.SettleTxHash,
	}
	if ev.RevealTxHash != "" {
		in.RevealTxHash = &ev.RevealTxHash
	}

	var bet *model.Bet
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		bet, err = p.Bets.SettleBet(ctx, ev.BetID, in)
		if err == nil || !errors.Is(err, model.ErrStoreUnavailable) {
			break
		}
		p.Log.Warn("settle retry", zap.String("betId", ev.BetID), zap.Int("attempt", attempt+1), zap.Error(err))
		time.Sleep(time.Duration(300*(attempt+1)) * time.Millisecond)
	}

	switch {
	case err == nil:
		p.count(p.OnSettled)
		p.markTouched(bet.UserAddress)
	case errors.Is(err, model.ErrInvalidState):
		// Already settled or cancelled; at-least-once delivery makes this normal.
		p.skip("already_terminal")
		p.Log.Info("settlement replay ignored", zap.String("betId", ev.BetID))
	case errors.Is(err, model.ErrNotFound):
		p.skip("unknown_bet")
		p.errStage("settle")
		p.Log.Error("settlement for unknown bet", zap.String("betId", ev.BetID))
		p.toDLQ(ctx, ev.BetID, raw)
	default:
		p.errStage("settle")
		p.Log.Error("settlement failed", zap.String("betId", ev.BetID), zap.Error(err))
		p.toDLQ(ctx, ev.BetID, raw)
	}
}

// RunExpiryPoller announces active bets whose window already elapsed. Each
// bet is announced once; the instruction stream remains the only path that
// actually settles it.
func (p *Processor) RunExpiryPoller(ctx context.Context) {
	interval := p.ExpiryPollInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	batch := p.ExpiryBatch
	if batch <= 0 {
		batch = 100
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		bets, err := p.Bets.ListActiveExpired(ctx, batch)
		if err != nil {
			p.Log.Warn("expired scan failed", zap.Error(err))
			p.errStage("expiry_scan")
			continue
		}
		for i := range bets {
			b := &bets[i]
			if p.alreadyAnnounced(b.ID) {
				continue
			}
			e := events.BetExpired{
				BetID:       b.ID,
				UserAddress: b.UserAddress,
				Token:       b.Token,
				Duration:    b.Duration,
				StartTimeMs: b.StartTime.UnixMilli(),
				ExpiredAtMs: b.ExpiresAt().UnixMilli(),
			}
			if err := p.Publ.PublishBetExpired(ctx, e); err != nil {
				p.Log.Warn("publish bet_expired", zap.String("betId", b.ID), zap.Error(err))
				p.errStage("expiry_publish")
				p.forgetAnnounced(b.ID)
				continue
			}
			p.Log.Info("bet expired, reveal pending",
				zap.String("betId", b.ID),
				zap.String("token", b.Token),
				zap.Int("duration", b.Duration))
		}
	}
}

// RunReconciler periodically rebuilds rollups for every address settled
// since the previous sweep. Covers the accepted window where a bet write
// lands but its counter update does not.
func (p *Processor) RunReconciler(ctx context.Context) {
	interval := p.ReconcileInterval
	if interval <= 0 {
		interval = time.Hour
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		for _, addr := range p.drainTouched() {
			if _, err := p.Bets.Reconcile(ctx, addr); err != nil {
				p.Log.Warn("reconcile failed", zap.String("address", addr), zap.Error(err))
				p.errStage("reconcile")
				p.markTouched(addr) // retry on the next sweep
			}
		}
	}
}

func (p *Processor) toDLQ(ctx context.Context, key string, payload []byte) {
	if p.DLQ == nil {
		return
	}
	if err := kafka.WriteJSON(ctx, p.DLQ, key, payload); err != nil {
		p.Log.Error("dlq publish failed", zap.String("key", key), zap.Error(err))
		p.errStage("dlq")
	}
}

func (p *Processor) markTouched(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.touched == nil {
		p.touched = make(map[string]struct{})
	}
	p.touched[address] = struct{}{}
}

func (p *Processor) drainTouched() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.touched))
	for a := range p.touched {
		out = append(out, a)
	}
	p.touched = nil
	return out
}

func (p *Processor) alreadyAnnounced(betID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.announced == nil {
		p.announced = make(map[string]struct{})
	}
	// Bound the set; a reset only means a duplicate announcement, which
	// consumers tolerate.
	if len(p.announced) > 10000 {
		p.announced = make(map[string]struct{})
	}
	if _, ok := p.announced[betID]; ok {
		return true
	}
	p.announced[betID] = struct{}{}
	return false
}

func (p *Processor) forgetAnnounced(betID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.announced, betID)
}

func (p *Processor) count(fn func()) {
	if fn != nil {
		fn()
	}
}

func (p *Processor) skip(reason string) {
	if p.OnSkipped != nil {
		p.OnSkipped(reason)
	}
}

func (p *Processor) errStage(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
