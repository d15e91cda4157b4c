package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"slotpoll/core/cache"
	"slotpoll/core/constants"
	"slotpoll/core/logger"
	"slotpoll/modules/realtime/entity"
)

// Broadcaster is the side of the hub the other modules depend on.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg entity.Message)
}

// Session is one connected viewer. Send must not block: the hub drops
// the message for a slow session rather than stalling the room, which
// the at-least-once model tolerates (the next snapshot supersedes it).
type Session interface {
	Send(data []byte)
}

// Hub fans room broadcasts out to every subscribed session. When a redis
// cache is supplied, broadcasts travel through pub/sub so that sessions
// connected to other server instances receive them too; without one the
// hub delivers directly (single instance, tests).
//
// Rapid successive votes_updated broadcasts for a room are coalesced:
// a pending fan-out timer is cancelled and restarted on every new
// update, and only the latest snapshot is delivered. Snapshots fully
// supersede each other, so dropping the intermediate ones is lossless.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]map[Session]struct{}
	cancels map[string]context.CancelFunc // redis subscription per room

	pendingMu  sync.Mutex
	pending    map[string]*pendingVotes
	pendingGen uint64

	cache cache.Cache
}

type pendingVotes struct {
	timer *time.Timer
	msg   entity.Message
	gen   uint64
}

func NewHub(c cache.Cache) *Hub {
	return &Hub{
		rooms:   map[string]map[Session]struct{}{},
		cancels: map[string]context.CancelFunc{},
		pending: map[string]*pendingVotes{},
		cache:   c,
	}
}

// JoinRoom subscribes a session to an event's broadcasts. The first
// session of a room opens the room's redis subscription.
func (h *Hub) JoinRoom(eventID string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[eventID]
	if !ok {
		room = map[Session]struct{}{}
		h.rooms[eventID] = room
		if h.cache != nil {
			ctx, cancel := context.WithCancel(context.Background())
			h.cancels[eventID] = cancel
			h.cache.Subscribe(ctx, constants.RealtimeChannelPrefix+eventID, func(payload string) {
				h.deliverLocal(eventID, []byte(payload))
			})
		}
	}
	room[s] = struct{}{}
}

// LeaveRoom unsubscribes a session; the last one out closes the room's
// redis subscription.
func (h *Hub) LeaveRoom(eventID string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[eventID]
	if !ok {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(h.rooms, eventID)
		if cancel, ok := h.cancels[eventID]; ok {
			cancel()
			delete(h.cancels, eventID)
		}
	}
}

// Broadcast sends a message to every session in the message's room.
// votes_updated goes through the debounce window; everything else is
// fanned out immediately.
func (h *Hub) Broadcast(ctx context.Context, msg entity.Message) {
	if msg.Type == entity.VotesUpdated {
		h.debounceVotes(msg)
		return
	}
	h.fanOut(ctx, msg)
}

func (h *Hub) debounceVotes(msg entity.Message) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()

	// Resetting a timer whose callback has fired but not yet taken the
	// lock re-arms a dead timer, so every update gets a fresh one. A
	// callback that lost the race sees a newer generation and gives up.
	if p, ok := h.pending[msg.EventID]; ok {
		p.timer.Stop()
	}

	h.pendingGen++
	gen := h.pendingGen
	p := &pendingVotes{msg: msg, gen: gen}
	p.timer = time.AfterFunc(constants.BroadcastDebounce, func() {
		h.pendingMu.Lock()
		cur, ok := h.pending[msg.EventID]
		if !ok || cur.gen != gen {
			h.pendingMu.Unlock()
			return
		}
		latest := cur.msg
		delete(h.pending, msg.EventID)
		h.pendingMu.Unlock()

		h.fanOut(context.Background(), latest)
	})
	h.pending[msg.EventID] = p
}

func (h *Hub) fanOut(ctx context.Context, msg entity.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Hub:fanOut marshal", "type", msg.Type, "error", err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Publish(ctx, constants.RealtimeChannelPrefix+msg.EventID, string(data)); err != nil {
			logger.Error("Hub:fanOut publish", "event_id", msg.EventID, "error", err)
			// Fall through to local delivery so sessions on this
			// instance still converge.
			h.deliverLocal(msg.EventID, data)
		}
		return
	}

	h.deliverLocal(msg.EventID, data)
}

func (h *Hub) deliverLocal(eventID string, data []byte) {
	h.mu.Lock()
	sessions := make([]Session, 0, len(h.rooms[eventID]))
	for s := range h.rooms[eventID] {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Send(data)
	}
}
