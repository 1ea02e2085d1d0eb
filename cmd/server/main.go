package main

import (
	"log"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bossrush/internal/config"
	"bossrush/internal/game"
	"bossrush/internal/gateway"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] Failed to load config: %v", err)
	}

	gs := game.NewServer(cfg.Version)
	go gs.Run()
	defer gs.Stop()

	gw := gateway.New(gs, cfg.KeepAliveInitial, cfg.KeepAliveRetry, cfg.KeepAliveRetries)

	ln, err := net.Listen("tcp", cfg.TCPAddr)
	if err != nil {
		log.Fatalf("[Server] Failed to listen on %s: %v", cfg.TCPAddr, err)
	}
	go func() {
		if err := gw.ServeTCP(ln); err != nil {
			log.Fatalf("[Server] TCP listener stopped: %v", err)
		}
	}()

	r := chi.NewRouter()
	r.Get("/ws", gw.HandleWebSocket)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Printf("[Server] Version %s", cfg.Version)
	log.Printf("[Server] Listening on %s (tcp) and %s (http)", cfg.TCPAddr, cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}
