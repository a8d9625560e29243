package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/settlement-feed/cache"
	"github.com/chaindice/dice-bet-platform-poc/internal/settlement-feed/consumer"
	"github.com/chaindice/dice-bet-platform-poc/internal/settlement-feed/pubsub"
	sharedcache "github.com/chaindice/dice-bet-platform-poc/internal/shared/cache"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/config"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis: cache do feed + canal de broadcast
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Tamanho da lista de settlements recentes mantida no Redis
	keep := int64(100)
	if v := os.Getenv("FEED_RECENT_KEEP"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			keep = n
		}
	}
	rcache := cache.NewRedisCache(redisClient, 24*time.Hour, keep)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Configura o consumer Kafka (consumer group settlement-feed)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "settlement-feed",
		Topic:    cfg.TopicBetSettled,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_messages_consumed_total", Help: "settlements consumidos"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_cache_sets_total", Help: "escritas no cache do feed"})
	broadcast := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_broadcasts_total", Help: "broadcasts publicados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "feed_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, broadcast, errorsBy)

	// Instancia o processor, conectando callbacks de métricas
	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Cache:       rcache,
		Broadcaster: broadcaster,
		Channel:     cfg.RedisPubSubChannel,
		OnConsumed:  func() { consumed.Inc() },
		OnCached:    func() { cached.Inc() },
		OnBroadcast: func() { broadcast.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			hctx, hcancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer hcancel()
			if err := redisClient.Ping(hctx).Err(); err != nil {
				http.Error(w, "redis", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-feed-worker started",
		zap.String("consume", cfg.TopicBetSettled),
		zap.String("broadcast", cfg.RedisPubSubChannel),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("settlement-feed-worker stopped")
}
