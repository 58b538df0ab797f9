// Package sse provides Server-Sent Events support for real-time updates.
// Clients are addressed either by user or by room; the pipeline board joins
// the "pipeline" room.
package sse

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"wedding_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventInAppNotification is pushed to a user when a notification is stored.
const EventInAppNotification = "in_app_notification"

const clientBuffer = 32

// Event represents an SSE event payload.
type Event struct {
	Type string      `json:"type"`
	Room string      `json:"room,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client.
type client struct {
	userID uuid.UUID
	rooms  []string
	events chan Event
}

// Service manages SSE connections and event fan-out.
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client         // userID -> clients
	rooms   map[string]map[*client]struct{} // room -> members
	log     *logger.Logger
}

// New creates a new SSE service.
func New(log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		rooms:   make(map[string]map[*client]struct{}),
		log:     log,
	}
}

// addClient registers a new client connection.
func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.userID] = append(s.clients[c.userID], c)
	for _, room := range c.rooms {
		members, ok := s.rooms[room]
		if !ok {
			members = make(map[*client]struct{})
			s.rooms[room] = members
		}
		members[c] = struct{}{}
	}
}

// removeClient unregisters a client connection.
func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.userID]) == 0 {
		delete(s.clients, c.userID)
	}

	for _, room := range c.rooms {
		delete(s.rooms[room], c)
		if len(s.rooms[room]) == 0 {
			delete(s.rooms, room)
		}
	}
}

// deliver queues event without blocking; a full buffer drops it for that client.
func (s *Service) deliver(c *client, event Event) {
	select {
	case c.events <- event:
	default:
		s.log.Warn("sse buffer full, event dropped", "userId", c.userID, "type", event.Type)
	}
}

// Publish sends an event to every connection of a user.
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients[userID] {
		s.deliver(c, event)
	}
}

// PublishToRoom sends payload as eventName to every client in room. Nobody
// listening is not an error.
func (s *Service) PublishToRoom(room, eventName string, payload any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event := Event{Type: eventName, Room: room, Data: payload}
	for c := range s.rooms[room] {
		s.deliver(c, event)
	}
	s.log.Debug("sse room event published", "room", room, "type", eventName, "clients", len(s.rooms[room]))
	return nil
}

// RoomSize reports how many clients are in room.
func (s *Service) RoomSize(room string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[room])
}

// ParseRooms splits a comma separated ?rooms= value, dropping blanks and duplicates.
func ParseRooms(raw string) []string {
	rooms := make([]string, 0)
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		room := strings.TrimSpace(part)
		if room == "" || seen[room] {
			continue
		}
		seen[room] = true
		rooms = append(rooms, room)
	}
	return rooms
}

// Handler returns a Gin handler for SSE connections. Rooms are joined with
// ?rooms=pipeline,other.
func (s *Service) Handler(getUserID func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			userID: userID,
			rooms:  ParseRooms(c.Query("rooms")),
			events: make(chan Event, clientBuffer),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"userId": userID, "rooms": cl.rooms})
		c.Writer.Flush()

		s.log.Debug("sse client connected", "userId", userID, "rooms", cl.rooms)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Debug("sse client disconnected", "userId", userID)
				return
			case event := <-cl.events:
				data, err := json.Marshal(event)
				if err != nil {
					s.log.Error("sse event encoding failed", "type", event.Type, "error", err)
					continue
				}
				c.SSEvent(event.Type, string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close drops every registration. Open handlers return when their request ends.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients = make(map[uuid.UUID][]*client)
	s.rooms = make(map[string]map[*client]struct{})
}
