package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/auth"
	bcache "github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/cache"
	bhttp "github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/http"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/lifecycle"
	kpub "github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/producer"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/stats"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
	sharedcache "github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/cache"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/config"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/db"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/kafka"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/logger"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/metrics"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/shared/signing"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
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

	// Redis
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers for the outbound event topics
	placedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	publ := kpub.NewKafkaPublisher(placedWriter, settledWriter, nil)
	defer publ.Close()

	// Read side: aggregation engine behind the redis read-through layer
	engine := stats.NewEngine(st, cfg.LeaderboardMinBets)
	coord := bcache.NewCoordinator(bcache.NewRedis(rdb), engine, nil, bcache.TTLs{
		Leaderboard: cfg.TTLLeaderboard,
		UserStats:   cfg.TTLUserStats,
		BetList:     cfg.TTLBetList,
		UserRank:    cfg.TTLUserRank,
		GlobalStats: cfg.TTLGlobalStats,
		TokenStats:  cfg.TTLTokenStats,
	}, log)

	// Write side invalidates the coordinator's key families
	mgr := lifecycle.NewManager(st, coord, log, cfg.DailyBetCap)
	coord.SetBetLister(mgr)

	guard := auth.NewGuard(auth.VerifierFunc(signing.RecoverSigner), 5*time.Minute)

	api := bhttp.NewServer(log, mgr, coord, guard, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
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

	go func() {
		log.Info("bet-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
