package server

import (
	"net/http"

	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *StatusServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				// Send full initial state
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case message := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = s.mergedState(message)
			s.stateMutex.Unlock()

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

// mergedState folds an incoming event into the cached snapshot so that a
// client connecting mid-session still receives the current state and
// aggregates. Called with stateMutex held.
func (s *StatusServer) mergedState(msg *models.MLatestData) *models.MLatestData {
	merged := *s.latestState
	merged.Type = msg.Type
	merged.Timestamp = msg.Timestamp

	if msg.State != "" {
		merged.State = msg.State
	}
	if msg.Sample != nil {
		merged.Sample = msg.Sample
	}
	if msg.Run != nil {
		merged.Run = msg.Run
	}
	if msg.Aggregates != nil {
		merged.Aggregates = msg.Aggregates
	}

	return &merged
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateSessionState publishes a session state transition to all clients.
func (s *StatusServer) UpdateSessionState(state string) {
	s.enqueue(&models.MLatestData{
		Type:      "STATE",
		State:     state,
		Timestamp: nowMillis(),
	})
}

// -----------------------------------------------------------------------------

// UpdateAggregates publishes the per-profile statistics after a completed run.
func (s *StatusServer) UpdateAggregates(aggs map[string]models.MStatistics) {
	s.enqueue(&models.MLatestData{
		Type:       "STATE",
		Aggregates: aggs,
		Timestamp:  nowMillis(),
	})
}

// -----------------------------------------------------------------------------

// BroadcastSample pushes a live force reading. Samples arrive at device rate
// so a full queue drops the sample instead of stalling the acquisition loop.
func (s *StatusServer) BroadcastSample(sample models.MSample) {
	snapshot := sample
	s.enqueue(&models.MLatestData{
		Type:      "SAMPLE",
		Sample:    &snapshot,
		Timestamp: nowMillis(),
	})
}

// -----------------------------------------------------------------------------

// BroadcastRun pushes a completed run summary.
func (s *StatusServer) BroadcastRun(run models.MRunSummary) {
	snapshot := run
	s.enqueue(&models.MLatestData{
		Type:      "RUN",
		Run:       &snapshot,
		Timestamp: nowMillis(),
	})
}

// -----------------------------------------------------------------------------

// enqueue performs a non-blocking send so the serial acquisition path never
// waits on the web side.
func (s *StatusServer) enqueue(state *models.MLatestData) {
	select {
	case s.broadcast <- state:
	default:
		s.Logger.Debug("Broadcast queue full, dropping %s event", state.Type)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *StatusServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}
