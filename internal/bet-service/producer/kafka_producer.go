// Package producer publishes bet lifecycle events for downstream consumers
// (indexers, notification fan-out). Publishing is fire-and-forget from the
// API's point of view; a failed publish is logged by the caller, never
// surfaced to the client.
package producer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/kafka"
	"github.com/LordMercury-blip/Web3-Betting-dapp/pkg/contracts/events"
)

type KafkaPublisher struct {
	placedWriter  *kafkago.Writer
	settledWriter *kafkago.Writer
	expiredWriter *kafkago.Writer
}

func NewKafkaPublisher(placed, settled, expired *kafkago.Writer) *KafkaPublisher {
	return &KafkaPublisher{placedWriter: placed, settledWriter: settled, expiredWriter: expired}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	b, _ := json.Marshal(e)
	return kafka.WriteJSON(ctx, p.placedWriter, e.BetID, b)
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, _ := json.Marshal(e)
	return kafka.WriteJSON(ctx, p.settledWriter, e.BetID, b)
}

func (p *KafkaPublisher) PublishBetExpired(ctx context.Context, e events.BetExpired) error {
	b, _ := json.Marshal(e)
	return kafka.WriteJSON(ctx, p.expiredWriter, e.BetID, b)
}

func (p *KafkaPublisher) Close() error {
	for _, w := range []*kafkago.Writer{p.placedWriter, p.settledWriter, p.expiredWriter} {
		if w != nil {
			_ = w.Close()
		}
	}
	return nil
}
