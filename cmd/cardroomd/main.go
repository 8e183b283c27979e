package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"cardroom/internal/gateway"
	"cardroom/internal/lobby"
	"cardroom/internal/store"
)

func listenAddr() string {
	if v := strings.TrimSpace(os.Getenv("CARDROOM_ADDR")); v != "" {
		return v
	}
	return ":8080"
}

func main() {
	storeService, storeMode, err := store.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init store: %v", err)
	}
	defer storeService.Close()

	gw := gateway.New()
	lby := lobby.New(storeService, gw.Broadcast)
	gw.Bind(lby)
	defer lby.Shutdown()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := listenAddr()
	log.Printf("[Server] Store mode: %s", storeMode)
	log.Printf("[Server] Starting WebSocket server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}
