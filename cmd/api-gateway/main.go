package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/shared/config"
	"github.com/chaindice/dice-bet-platform-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	engineURL := os.Getenv("ENGINE_URL")
	if engineURL == "" {
		engineURL = "http://localhost:8083"
	}
	treasuryURL := os.Getenv("TREASURY_URL")
	if treasuryURL == "" {
		treasuryURL = "http://localhost:8082"
	}
	feedURL := os.Getenv("FEED_URL")
	if feedURL == "" {
		feedURL = "http://localhost:8080"
	}
	eng := rp(engineURL)
	treasury := rp(treasuryURL)
	feed := rp(feedURL)

	mux := http.NewServeMux()

	// apostas (ex.: /api/bets/* -> bet-engine-service)
	mux.Handle("/api/bets/", http.StripPrefix("/api/bets", eng))

	// tesouro (ex.: /api/treasury/* -> treasury-service)
	mux.Handle("/api/treasury/", http.StripPrefix("/api/treasury", treasury))

	// feed de settlements, REST e WebSocket (ex.: /api/feed/* -> bet-feed-service)
	mux.Handle("/api/feed/", http.StripPrefix("/api/feed", feed))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
