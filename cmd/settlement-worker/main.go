package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	bcache "github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/cache"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/lifecycle"
	kpub "github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/producer"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/stats"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/settlement-worker"
	sharedcache "github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/cache"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/config"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/db"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/kafka"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/logger"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	st := store.NewPostgres(pg)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.EnsureSchema(ctx); err != nil {
			log.Fatal("schema", zap.Error(err))
		}
	}

	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// The worker mutates bets, so it carries the same invalidation duty as
	// the API. Reads stay on the engine directly; no read-through needed.
	engine := stats.NewEngine(st, cfg.LeaderboardMinBets)
	coord := bcache.NewCoordinator(bcache.NewRedis(rdb), engine, nil, bcache.TTLs{}, log)
	mgr := lifecycle.NewManager(st, coord, log, cfg.DailyBetCap)
	coord.SetBetLister(mgr)

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetSettlements, "settlement-worker")
	defer reader.Close()

	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSettlementsDLQ)
	defer dlqWriter.Close()

	expiredWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetExpired)
	publ := kpub.NewKafkaPublisher(nil, nil, expiredWriter)
	defer publ.Close()

	consumed := promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_instructions_consumed_total",
		Help: "Settlement instructions read from the stream.",
	})
	settled := promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_applied_total",
		Help: "Settlements applied to bets.",
	})
	skipped := promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_skipped_total",
		Help: "Instructions skipped, by reason.",
	}, []string{"reason"})
	errorsBy := promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_errors_total",
		Help: "Worker errors, by stage.",
	}, []string{"stage"})

	proc := &worker.Processor{
		Log:    log,
		Reader: reader,
		DLQ:    dlqWriter,
		Bets:   mgr,
		Publ:   publ,

		ExpiryPollInterval: cfg.ExpiryPollInterval,
		ReconcileInterval:  cfg.ReconcileInterval,

		OnConsumed: func() { consumed.Inc() },
		OnSettled:  func() { settled.Inc() },
		OnSkipped:  func(reason string) { skipped.WithLabelValues(reason).Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go proc.RunExpiryPoller(ctx)
	go proc.RunReconciler(ctx)

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicBetSettlements),
		zap.String("dlq", cfg.TopicSettlementsDLQ))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("worker stopped with error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("settlement-worker stopped")
}
