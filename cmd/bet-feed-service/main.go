package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/bet-feed/cache"
	"github.com/chaindice/dice-bet-platform-poc/internal/bet-feed/httpapi"
	"github.com/chaindice/dice-bet-platform-poc/internal/bet-feed/ws"
	sharedcache "github.com/chaindice/dice-bet-platform-poc/internal/shared/cache"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/config"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/logger"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis: cache de leitura do feed + canal Pub/Sub do fanout
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Contexto de vida do subscriber Pub/Sub
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Hub WebSocket alimentado pelo canal Redis do settlement-feed-worker
	hub := ws.NewHub(func(*http.Request) bool { return true }) // POC: origem liberada
	ws.StartRedisSubscriber(ctx, redisClient, hub)

	// API REST de consulta do feed
	api := &httpapi.API{Cache: cache.New(redisClient)}

	root := http.NewServeMux()
	root.HandleFunc("/ws", hub.HandleWS)
	root.Handle("/", api.Router())

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8080
		Handler: root,
	}

	// Servidor de métricas e health check
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))
	metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		return redisClient.Ping(hctx).Err()
	})

	log.Info("bet-feed-service listening",
		zap.String("addr", apiSrv.Addr),
		zap.String("subscribe", ws.PubSubChannel),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
