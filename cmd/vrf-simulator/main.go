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

	"github.com/chaindice/dice-bet-platform-poc/internal/shared/cache"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/config"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/logger"
	"github.com/chaindice/dice-bet-platform-poc/internal/vrf-simulator/oracle"
	"github.com/chaindice/dice-bet-platform-poc/internal/vrf-simulator/publisher"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis para o guard de entrega única por request token
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Segredo e latência simulada do oráculo
	secret := os.Getenv("VRF_SECRET")
	if secret == "" {
		secret = "dev-vrf-secret"
	}
	delay := 1500 * time.Millisecond
	if v := os.Getenv("VRF_DELAY_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			delay = time.Duration(n) * time.Millisecond
		}
	}

	// Consumer dos pedidos de VRF (consumer group vrf-simulator)
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "vrf-simulator",
		Topic:    cfg.TopicVRFRequests,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// Publisher dos fulfillments (cria o tópico em ambiente dev)
	pub := publisher.NewKafkaPublisher(brokers, cfg.TopicVRFFulfilled, log)
	defer pub.Close()

	// Métricas Prometheus do oráculo simulado
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "vrf_sim_requests_consumed_total", Help: "pedidos consumidos"})
	fulfilled := prometheus.NewCounter(prometheus.CounterOpts{Name: "vrf_sim_fulfillments_total", Help: "fulfillments publicados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "vrf_sim_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, fulfilled, errorsBy)

	o := &oracle.Oracle{
		Log:         log,
		Reader:      reader,
		Guard:       oracle.RedisDedupe{Client: redisClient},
		Sink:        pub,
		Secret:      []byte(secret),
		Delay:       delay,
		OnConsumed:  func() { consumed.Inc() },
		OnFulfilled: func() { fulfilled.Inc() },
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

	log.Info("vrf-simulator started",
		zap.String("consume", cfg.TopicVRFRequests),
		zap.String("publish", cfg.TopicVRFFulfilled),
		zap.Duration("delay", delay),
	)
	if err := o.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("oracle stopped with error", zap.Error(err))
	}
	log.Info("vrf-simulator stopped")
}
