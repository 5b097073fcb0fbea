package proxygen

import (
	"encoding/json"
	"log"
	"net/http"
	"path"
	"runtime"
	"strconv"
	"sync"
	"text/template"
	"time"

	"github.com/gorilla/websocket"
)

//  ██╗    ██╗███████╗██████╗
//  ██║    ██║██╔════╝██╔══██╗
//  ██║ █╗ ██║█████╗  ██████╔╝
//  ██║███╗██║██╔══╝  ██╔══██╗
//  ╚███╔███╔╝███████╗██████╔╝
//   ╚══╝╚══╝ ╚══════╝╚═════╝
//

// dashboard serves a small live-stats page over WebSocket, pushing the
// engine's stats snapshot on an interval and every emitted log line.
type dashboard struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mu        sync.Mutex

	stats *stats
}

// Payload is the shape of every message pushed to connected clients.
type Payload struct {
	Kind string `json:"kind"`
	Body any    `json:"body"`
}

func newDashboard(s *stats) *dashboard {
	return &dashboard{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, channelCapacity),
		stats:     s,
	}
}

// serve starts the HTTP server on the given port, registers itself as the
// package's logSink so every logWarn/logError line reaches connected
// clients too, and begins pushing stats snapshots once a second. It blocks
// until http.ListenAndServe returns, so callers run it in a goroutine.
func (d *dashboard) serve(port int) error {
	logSink = d.broadcastLog

	mux := http.NewServeMux()
	mux.HandleFunc("/", d.serveIndex)
	mux.HandleFunc("/ws", d.wsHandler)

	fs := http.FileServer(http.Dir(webDir()))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	go d.pump()
	go d.tick()

	log.Printf("dashboard listening on :%d", port)
	return http.ListenAndServe(":"+strconv.Itoa(port), mux)
}

func (d *dashboard) tick() {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for range t.C {
		body, err := d.stats.MarshalJSON()
		if err != nil {
			continue
		}
		msg, err := json.Marshal(Payload{Kind: "stats", Body: json.RawMessage(body)})
		if err != nil {
			continue
		}
		d.broadcast <- msg
	}
}

func (d *dashboard) broadcastLog(level, msg string) {
	payload, err := json.Marshal(Payload{Kind: "log", Body: map[string]string{"level": level, "msg": msg}})
	if err != nil {
		return
	}
	select {
	case d.broadcast <- payload:
	default:
	}
}

func (d *dashboard) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("dashboard: upgrade: ", err)
		return
	}

	d.mu.Lock()
	d.clients[conn] = true
	d.mu.Unlock()
}

func (d *dashboard) pump() {
	for msg := range d.broadcast {
		d.mu.Lock()
		for c := range d.clients {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				delete(d.clients, c)
			}
		}
		d.mu.Unlock()
	}
}

func (d *dashboard) serveIndex(w http.ResponseWriter, r *http.Request) {
	t, err := template.ParseFiles(webDir() + "/template.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err = t.Execute(w, "ws://"+r.Host+"/ws"); err != nil {
		log.Print("dashboard: template execute: ", err)
	}
}

func webDir() string {
	_, dir, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(dir), "web")
}
