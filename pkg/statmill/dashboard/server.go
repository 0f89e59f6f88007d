// Package dashboard serves a live view of query results over HTTP and
// WebSocket. It implements render.Sink so it can be attached to a Stream
// like any other output.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/statmill/statmill/pkg/statmill"
)

// TickUpdate is the wire form of one evaluated tick.
type TickUpdate struct {
	Timestamp time.Time   `json:"timestamp"`
	Tick      int         `json:"tick"`
	Values    []TickValue `json:"values"`
}

type TickValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Error string  `json:"error,omitempty"`
}

// QueryInfo describes one registered query for /api/queries.
type QueryInfo struct {
	Label   string `json:"label"`
	Formula string `json:"formula"`
}

type Server struct {
	port     int
	server   *http.Server
	upgrader websocket.Upgrader
	logger   *slog.Logger

	clients      map[*websocket.Conn]bool
	clientsMutex sync.RWMutex
	maxClients   int

	updates chan TickUpdate
	stop    chan struct{}

	// Ring of recent ticks served by /api/rows.
	history      []TickUpdate
	historyIndex int
	historyCount int
	mutex        sync.RWMutex

	queries []QueryInfo
}

func NewServer(port int, queries []*statmill.Query) *Server {
	infos := make([]QueryInfo, len(queries))
	for i, q := range queries {
		infos[i] = QueryInfo{Label: q.Label, Formula: q.Formula()}
	}
	return &Server{
		port: port,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return origin == fmt.Sprintf("http://localhost:%d", port) ||
					origin == fmt.Sprintf("http://127.0.0.1:%d", port)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		clients:    make(map[*websocket.Conn]bool),
		maxClients: 100,
		updates:    make(chan TickUpdate, 100),
		stop:       make(chan struct{}),
		history:    make([]TickUpdate, 512),
		queries:    infos,
	}
}

// SetLogger replaces the server's logger. Nil restores the discard logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.logger = logger
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/rows", s.handleRows)
	mux.HandleFunc("/api/queries", s.handleQueries)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go s.broadcast()

	s.logger.Info("starting dashboard", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	close(s.stop)
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// WriteRows queues one evaluated tick for broadcast. It never blocks: if
// clients cannot keep up the update is dropped.
func (s *Server) WriteRows(rows []statmill.Row) error {
	update := TickUpdate{Timestamp: time.Now()}
	if len(rows) > 0 {
		update.Tick = rows[0].Tick
	}
	for _, row := range rows {
		v := TickValue{Label: row.Label, Value: row.Value}
		if row.Err != nil {
			v.Error = row.Err.Error()
		}
		update.Values = append(update.Values, v)
	}

	select {
	case s.updates <- update:
	default:
		// Drop if channel is full
	}
	return nil
}

// Close satisfies render.Sink. The server keeps running so clients can
// inspect the final state; call Stop to shut it down.
func (s *Server) Close() error { return nil }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	s.mutex.RLock()
	out := make([]TickUpdate, 0, s.historyCount)
	// Oldest first.
	start := s.historyIndex - s.historyCount
	for i := 0; i < s.historyCount; i++ {
		idx := (start + i + len(s.history)) % len(s.history)
		out = append(out, s.history[idx])
	}
	s.mutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleQueries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.queries)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.clientsMutex.RLock()
	clientCount := len(s.clients)
	s.clientsMutex.RUnlock()

	if clientCount >= s.maxClients {
		http.Error(w, "Maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.clientsMutex.Lock()
	s.clients[conn] = true
	s.clientsMutex.Unlock()

	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, conn)
		s.clientsMutex.Unlock()
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Read loop is required to detect client disconnections.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.logger.Warn("websocket read failed", "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		case <-s.stop:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Server) broadcast() {
	for {
		select {
		case update := <-s.updates:
			s.mutex.Lock()
			s.history[s.historyIndex%len(s.history)] = update
			s.historyIndex = (s.historyIndex + 1) % len(s.history)
			if s.historyCount < len(s.history) {
				s.historyCount++
			}
			s.mutex.Unlock()

			s.broadcastMessage(map[string]interface{}{
				"type": "tick",
				"data": update,
			})
		case <-s.stop:
			return
		}
	}
}

func (s *Server) broadcastMessage(message interface{}) {
	s.clientsMutex.RLock()
	if len(s.clients) == 0 {
		s.clientsMutex.RUnlock()
		return
	}

	clientsCopy := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clientsCopy = append(clientsCopy, client)
	}
	s.clientsMutex.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("marshal broadcast message", "error", err)
		return
	}

	var failedClients []*websocket.Conn
	for _, client := range clientsCopy {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			client.Close()
			failedClients = append(failedClients, client)
		}
	}

	if len(failedClients) > 0 {
		s.clientsMutex.Lock()
		for _, client := range failedClients {
			delete(s.clients, client)
		}
		s.clientsMutex.Unlock()
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Statmill Dashboard</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .header { background: #2c3e50; color: white; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
        .card { background: white; padding: 20px; border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 20px; }
        .chart-container { position: relative; height: 360px; }
        .formula { font-family: monospace; color: #7f8c8d; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Statmill Dashboard</h1>
        <p>Live query results</p>
    </div>
    <div class="card">
        <h3>Queries</h3>
        <div id="queries" class="formula">loading...</div>
    </div>
    <div class="card">
        <div class="chart-container">
            <canvas id="chart"></canvas>
        </div>
    </div>
    <script>
        const chart = new Chart(document.getElementById('chart'), {
            type: 'line',
            data: { labels: [], datasets: [] },
            options: { responsive: true, maintainAspectRatio: false, animation: false }
        });
        const colors = ['#3498db', '#e74c3c', '#2ecc71', '#f39c12', '#9b59b6', '#1abc9c'];
        const series = {};

        function addTick(update) {
            chart.data.labels.push(update.tick);
            for (const v of update.values) {
                if (!(v.label in series)) {
                    const ds = {
                        label: v.label,
                        data: new Array(chart.data.labels.length - 1).fill(null),
                        borderColor: colors[chart.data.datasets.length % colors.length],
                        fill: false
                    };
                    series[v.label] = ds;
                    chart.data.datasets.push(ds);
                }
                series[v.label].data.push(v.error ? null : v.value);
            }
            if (chart.data.labels.length > 500) {
                chart.data.labels.shift();
                for (const ds of chart.data.datasets) ds.data.shift();
            }
            chart.update('none');
        }

        fetch('/api/queries').then(r => r.json()).then(qs => {
            document.getElementById('queries').innerText =
                qs.map(q => q.label + ' = ' + q.formula).join('\n');
        });
        fetch('/api/rows').then(r => r.json()).then(rows => {
            for (const row of rows) addTick(row);
            const ws = new WebSocket('ws://' + location.host + '/ws');
            ws.onmessage = (msg) => {
                const m = JSON.parse(msg.data);
                if (m.type === 'tick') addTick(m.data);
            };
        });
    </script>
</body>
</html>
`
