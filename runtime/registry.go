// Package runtime owns message routing: who is subscribed where, and the
// persist-then-broadcast pipeline. It contains no transport or storage
// details beyond the interfaces it is handed.
package runtime

import (
	"sync"

	"github.com/UDAVALAPATISURESH/app-chat/contract"
	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

type Set map[string]struct{}

// Registry tracks live connections and their room subscriptions.
// A connection may sit in any number of rooms; membership here is
// transient and says nothing about durable group membership.
type Registry struct {
	mu          sync.RWMutex
	Sessions    map[string]contract.EventSink // connection id -> sink
	RoomMembers map[domain.RoomID]Set         // room -> connection ids
	connRooms   map[string]map[domain.RoomID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:    make(map[string]contract.EventSink),
		RoomMembers: make(map[domain.RoomID]Set),
		connRooms:   make(map[string]map[domain.RoomID]struct{}),
	}
}

// GetSinksForRoom resolves the room's connection ids into live sinks.
// The two-step lookup keeps one sink per connection no matter how many
// rooms it joined. Returns nil for an unknown or empty room.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.RoomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connID := range members {
		if sink, exists := r.Sessions[connID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a connection's sink and adds it to a room.
// Rooms are initialized on the fly; subscribing twice is harmless.
func (r *Registry) Subscribe(connID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[connID] = sink

	if _, ok := r.RoomMembers[roomID]; !ok {
		r.RoomMembers[roomID] = make(Set)
	}
	r.RoomMembers[roomID][connID] = struct{}{}

	if _, ok := r.connRooms[connID]; !ok {
		r.connRooms[connID] = make(map[domain.RoomID]struct{})
	}
	r.connRooms[connID][roomID] = struct{}{}
}

// Unsubscribe removes a connection from one room only. The session stays:
// leaving a room must not tear down the connection's other subscriptions.
func (r *Registry) Unsubscribe(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveRoom(connID, roomID)
}

// UnsubscribeAll drops every subscription of a disconnecting connection
// and forgets its session. Empty room sets are removed to avoid leaking
// entries over time.
func (r *Registry) UnsubscribeAll(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.connRooms[connID] {
		r.leaveRoom(connID, roomID)
	}
	delete(r.Sessions, connID)
}

func (r *Registry) leaveRoom(connID string, roomID domain.RoomID) {
	if members, ok := r.RoomMembers[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.RoomMembers, roomID)
		}
	}
	if rooms, ok := r.connRooms[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.connRooms, connID)
		}
	}
}
