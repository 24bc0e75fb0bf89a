// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/pose_tracker/internal/tlog"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// poseBroadcastHub fans the latest fused-pose payload out to every
// connected dashboard client over a websocket — the live counterpart
// to the JSON polling endpoints in web.go.
type poseBroadcastHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newPoseBroadcastHub() *poseBroadcastHub {
	return &poseBroadcastHub{clients: make(map[*websocket.Conn]struct{})}
}

// handle upgrades the request to a websocket and registers the
// connection as a broadcast target until it disconnects.
func (h *poseBroadcastHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		tlog.Log.Warn().Err(err).Msg("web: pose websocket upgrade error")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// The hub only ever writes to this connection from broadcast;
	// this goroutine just waits for the client to go away.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *poseBroadcastHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *poseBroadcastHub) broadcast(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		tlog.Log.Warn().Err(err).Msg("web: pose broadcast marshal error")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			go h.remove(conn)
		}
	}
}
