// canvas-relay - websocket broadcast relay between the Smalltix runtime and
// browser canvases. Every message from one client is forwarded verbatim to
// all other connected clients; the relay itself knows nothing about the
// drawing protocol.
//
// Usage:
//
//	canvas-relay [-addr localhost:4000]
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jdjakub/smalltix/logs"
)

var upgrader = websocket.Upgrader{
	// The relay runs next to the runtime; browsers connect from file:// or
	// localhost pages.
	CheckOrigin: func(*http.Request) bool { return true },
}

type relay struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *slog.Logger
}

func newRelay(logger *slog.Logger) *relay {
	return &relay{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

func (r *relay) handle(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("upgrade failed", "error", err)
		return
	}

	r.mu.Lock()
	r.clients[conn] = struct{}{}
	r.mu.Unlock()
	r.logger.Info("client connected", "remote", conn.RemoteAddr())

	defer func() {
		r.mu.Lock()
		delete(r.clients, conn)
		r.mu.Unlock()
		conn.Close()
		r.logger.Info("client disconnected", "remote", conn.RemoteAddr())
	}()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		r.broadcast(conn, msgType, msg)
	}
}

// broadcast forwards a message to every client except the sender.
func (r *relay) broadcast(from *websocket.Conn, msgType int, msg []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for client := range r.clients {
		if client == from {
			continue
		}
		if err := client.WriteMessage(msgType, msg); err != nil {
			r.logger.Warn("write failed", "remote", client.RemoteAddr(), "error", err)
		}
	}
}

func main() {
	addr := flag.String("addr", "localhost:4000", "listen address")
	flag.Parse()

	logger := logs.New(os.Stderr)
	r := newRelay(logger)

	http.HandleFunc("/", r.handle)
	logger.Info("relay running", "addr", "ws://"+*addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Error("listen", "error", err)
		os.Exit(1)
	}
}
