package channels

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Event is what gets written to a live delivery channel.
type Event struct {
	Kind string      `json:"kind"` // message | comment | notification
	Data interface{} `json:"data"`
}

// Manager is the process-local registry of live delivery channels, one per
// online user. Delivery is fire-and-forget: no queuing, no replay on
// reconnect. A multi-instance deployment needs an external pub/sub behind
// this interface.
type Manager struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func NewManager() *Manager {
	return &Manager{conns: make(map[string]*websocket.Conn)}
}

// Default is the registry used by the request handlers.
var Default = NewManager()

func (m *Manager) Register(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	if old, ok := m.conns[userID]; ok && old != conn {
		old.Close()
	}
	m.conns[userID] = conn
	m.mu.Unlock()
}

func (m *Manager) Unregister(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	if cur, ok := m.conns[userID]; ok && cur == conn {
		delete(m.conns, userID)
	}
	m.mu.Unlock()
}

// Push writes an event to the user's channel if one is open. Returns false
// when the user is offline; callers treat that as non-fatal, the record is
// visible on the next explicit fetch.
func (m *Manager) Push(userID string, event Event) bool {
	m.mu.Lock()
	conn, ok := m.conns[userID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	if err := conn.WriteJSON(event); err != nil {
		log.Println("Error pushing event, dropping channel:", err)
		m.mu.Lock()
		if cur, stillThere := m.conns[userID]; stillThere && cur == conn {
			delete(m.conns, userID)
		}
		m.mu.Unlock()
		conn.Close()
		return false
	}
	return true
}

// Online reports whether the user currently has a live channel.
func (m *Manager) Online(userID string) bool {
	m.mu.Lock()
	_, ok := m.conns[userID]
	m.mu.Unlock()
	return ok
}
