package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/clock"
	"github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/consumer"
	"github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/httpapi"
	"github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/oracle"
	"github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/producer"
	"github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/treasury"
	"github.com/chaindice/dice-bet-platform-poc/internal/engine"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/config"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/kafka"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso dos loops (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Ledgers no treasury: ativo das apostas e ativo das taxas do oráculo,
	// ambos operando a partir da conta custodiante do motor
	stake := treasury.New(cfg.TreasuryURL, cfg.StakeAsset, cfg.EngineAccount)
	fee := treasury.New(cfg.TreasuryURL, cfg.FeeAsset, cfg.EngineAccount)

	// Kafka writer dos pedidos de VRF
	vrfWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicVRFRequests)
	defer vrfWriter.Close()
	vrfSource := oracle.NewKafkaSource(vrfWriter)

	// Relógio de blocos simulado; a altura avança do boot do processo em diante
	blockClock := clock.NewTicker(0)
	go blockClock.Run(ctx, time.Duration(cfg.BlockTimeMs)*time.Millisecond)

	// Writers dos eventos de ciclo de vida das apostas
	placedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer placedWriter.Close()
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()
	refundedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetRefunded)
	defer refundedWriter.Close()
	publ := producer.NewKafkaPublisher(placedWriter, settledWriter, refundedWriter)

	// Instancia o motor com os parâmetros do jogo vindos da config
	eng, err := engine.New(log, engine.Params{
		Pricing: engine.Pricing{
			HouseEdgeBP:        cfg.HouseEdgeBP,
			WealthTaxBP:        cfg.WealthTaxBP,
			WealthTaxThreshold: cfg.WealthTaxThreshold,
		},
		MinBet:            cfg.MinBet,
		MaxBet:            cfg.MaxBet,
		MaxProfit:         cfg.MaxProfit,
		OracleFee:         cfg.VRFFee,
		RefundDelayBlocks: cfg.RefundDelayBlocks,
		EngineAccount:     cfg.EngineAccount,
		OracleAccount:     cfg.OracleAccount,
	}, engine.Deps{
		Stake:  stake,
		Fee:    fee,
		VRF:    vrfSource,
		Clock:  blockClock,
		Events: publ,
	})
	if err != nil {
		log.Fatal("engine init", zap.Error(err))
	}

	// Métricas Prometheus do motor e do consumo de fulfillments
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "dice_vrf_fulfillments_consumed_total", Help: "fulfillments consumidos"})
	settledBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "dice_bets_settled_total", Help: "apostas liquidadas por desfecho"}, []string{"result"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "dice_engine_errors_total", Help: "erros por estágio"}, []string{"stage"})
	lockedGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "dice_engine_locked_in_bets", Help: "passivo reservado às apostas abertas"},
		func() float64 { return float64(eng.Totals().LockedInBets) })
	openGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "dice_engine_open_bets", Help: "apostas aguardando aleatoriedade"},
		func() float64 { return float64(eng.Totals().OpenBetCount) })
	betsGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "dice_engine_bets_total", Help: "apostas colocadas desde o boot"},
		func() float64 { return float64(eng.Totals().BetCount) })
	prometheus.MustRegister(consumed, settledBy, errorsBy, lockedGauge, openGauge, betsGauge)

	// Consumer dos fulfillments de VRF (callback do oráculo), com DLQ
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "bet-engine",
		Topic:    cfg.TopicVRFFulfilled,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()
	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicVRFFulfilledDLQ)
	defer dlqWriter.Close()

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Engine:     eng,
		DLQ:        dlqWriter,
		OnConsumed: func() { consumed.Inc() },
		OnSettled: func(win bool) {
			if win {
				settledBy.WithLabelValues("win").Inc()
			} else {
				settledBy.WithLabelValues("loss").Inc()
			}
		},
		OnError: func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	go func() {
		if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal("vrf consumer stopped", zap.Error(err))
		}
	}()

	// HTTP público
	api := httpapi.NewServer(log, eng)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		hctx, hcancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer hcancel()
		if _, err := stake.BalanceOf(hctx, cfg.EngineAccount); err != nil {
			http.Error(w, "treasury", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("bet-engine-service listening",
		zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)),
		zap.String("consume", cfg.TopicVRFFulfilled),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
