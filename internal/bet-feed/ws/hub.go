package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// FirehoseKey assina todos os settlements, independentemente do owner
const FirehoseKey = "*"

// Hub gerencia conexões WebSocket e assinaturas de settlements por conta
// subs: mapeia owner (ou FirehoseKey) para o conjunto de conexões inscritas
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// owner -> set of connections
	subs map[string]map[*websocket.Conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*websocket.Conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe por owner (ou firehose) e responde a pings
// Cada cliente pode se inscrever em múltiplos owners
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.Owner]; !ok {
				h.subs[msg.Owner] = make(map[*websocket.Conn]struct{})
			}
			h.subs[msg.Owner][conn] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.Owner]; ok {
				delete(m, conn)
				if len(m) == 0 {
					delete(h.subs, msg.Owner)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, conn)
	}
	h.mu.Unlock()
}

// Broadcast envia um settlement para os clientes inscritos no owner
// correspondente e para os inscritos no firehose
func (h *Hub) Broadcast(update SettlementUpdate) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[update.Owner])+len(h.subs[FirehoseKey]))
	for c := range h.subs[update.Owner] {
		conns = append(conns, c)
	}
	for c := range h.subs[FirehoseKey] {
		if _, dup := h.subs[update.Owner][c]; !dup {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range conns {
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
