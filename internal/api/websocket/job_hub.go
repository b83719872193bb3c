// Package websocket pushes job status changes to connected clients.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/events"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// JobStatusMessage is sent to clients for every job change they may read.
type JobStatusMessage struct {
	Type    string             `json:"type"`
	JobID   string             `json:"jobId"`
	Title   string             `json:"title"`
	JobType string             `json:"jobType"`
	Status  entities.JobStatus `json:"status"`
	Updated time.Time          `json:"updated"`
}

// JobHub tracks websocket clients and the user each one connected as.
type JobHub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*entities.User

	unsubscribe func()
}

// NewJobHub creates a hub that forwards job updated events.
func NewJobHub(logger *zap.Logger) *JobHub {
	hub := &JobHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]*entities.User),
	}
	hub.unsubscribe = events.SubscribeToJobUpdatedEvents(func(data events.JobUpdatedEventData) {
		hub.Broadcast(data.Job)
	})
	return hub
}

func canSee(job *entities.Job, user *entities.User) bool {
	if job.Public {
		return true
	}
	return user != nil && (user.Admin || user.ID == job.UserID)
}

// Broadcast sends the job's status to every client allowed to read it.
func (h *JobHub) Broadcast(job *entities.Job) {
	if job == nil {
		return
	}
	message, err := json.Marshal(JobStatusMessage{
		Type:    "job_status",
		JobID:   job.ID,
		Title:   job.Title,
		JobType: job.Type,
		Status:  job.Status,
		Updated: job.UpdatedAt,
	})
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	h.mu.RLock()
	var targets []*websocket.Conn
	for client, user := range h.clients {
		if canSee(job, user) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warn("Failed to send WebSocket message to client, removing from clients", zap.Error(err))
			h.remove(client)
		}
	}
}

// Serve upgrades the request and keeps the client registered until it
// disconnects.
func (h *JobHub) Serve(w http.ResponseWriter, r *http.Request, user *entities.User) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return err
	}

	h.mu.Lock()
	h.clients[ws] = user
	h.mu.Unlock()
	h.logger.Debug("WebSocket client connected", zap.Int("clients", h.ClientCount()))
	defer h.remove(ws)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	return nil
}

func (h *JobHub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[ws]
	delete(h.clients, ws)
	h.mu.Unlock()
	if ok {
		ws.Close()
		h.logger.Debug("WebSocket client disconnected")
	}
}

func (h *JobHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops forwarding events and disconnects all clients.
func (h *JobHub) Close() {
	h.unsubscribe()
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]*entities.User)
	h.mu.Unlock()
	for client := range clients {
		client.Close()
	}
}
