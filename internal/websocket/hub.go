package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"kisansetu-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	module         = "Hub"
	clusterChannel = "cluster_events"

	// presencePrefix keys a hash of instance id -> local client count per session.
	presencePrefix = "ws_presence:"
	presenceTTL    = 24 * time.Hour
	redisTimeout   = 2 * time.Second
)

// Cluster message kinds. An empty kind is a delivery.
const (
	clusterDeliver = "deliver"
	clusterSpeech  = "speech_event"
)

// clusterMessage is what instances exchange over redis.
type clusterMessage struct {
	Origin          string          `json:"origin"`
	Kind            string          `json:"kind,omitempty"`
	TargetSessionID string          `json:"target_session_id"`
	Message         json.RawMessage `json:"message"`
}

// speechWaiter only accepts events from clients of its own session.
type speechWaiter struct {
	sessionID string
	ch        chan SpeechEventPayload
}

type Hub struct {
	// Session ID -> connected clients (one screen may be open on several devices).
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Pending speak requests waiting for a final speech_event.
	speechMu      sync.Mutex
	speechWaiters map[string]speechWaiter

	// Redis connection for cross-instance fan-out. Nil runs single-instance.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		clients:       make(map[string][]*Client),
		speechWaiters: make(map[string]speechWaiter),
		rdb:           rdb,
		instanceID:    uuid.NewString(),
		logger:        log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			local := len(h.clients[client.SessionID])
			h.mu.Unlock()
			h.trackPresence(client.SessionID, local)
			h.logger.Info(module, "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			clients, ok := h.clients[client.SessionID]
			if ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info(module, "Session has no clients left", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			local := len(h.clients[client.SessionID])
			h.mu.Unlock()
			if ok {
				h.trackPresence(client.SessionID, local)
			}
		}
	}
}

// HasClients reports whether this instance holds a connection for the session.
func (h *Hub) HasClients(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID]) > 0
}

// Reachable reports whether any instance holds a connection for the session.
// Presence of other instances is read from redis; a lookup error counts as
// unreachable.
func (h *Hub) Reachable(sessionID string) bool {
	if h.HasClients(sessionID) {
		return true
	}
	if h.rdb == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	n, err := h.rdb.HLen(ctx, presencePrefix+sessionID).Result()
	if err != nil {
		h.logger.Warn(module, "Presence lookup failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return false
	}
	return n > 0
}

// trackPresence records this instance's client count for the session. Entries of
// a crashed instance linger until presenceTTL.
func (h *Hub) trackPresence(sessionID string, local int) {
	if h.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	key := presencePrefix + sessionID
	var err error
	if local == 0 {
		err = h.rdb.HDel(ctx, key, h.instanceID).Err()
	} else {
		pipe := h.rdb.TxPipeline()
		pipe.HSet(ctx, key, h.instanceID, local)
		pipe.Expire(ctx, key, presenceTTL)
		_, err = pipe.Exec(ctx)
	}
	if err != nil {
		h.logger.Warn(module, "Presence update failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
	}
}

// Send delivers a typed message to every client of the session, here and on the
// other instances.
func (h *Hub) Send(sessionID, msgType string, data interface{}) error {
	payload, err := encode(msgType, data)
	if err != nil {
		return err
	}

	h.deliverLocal(sessionID, payload)
	h.publishCluster(clusterDeliver, sessionID, payload)
	return nil
}

func (h *Hub) publishCluster(kind, sessionID string, payload []byte) {
	if h.rdb == nil {
		return
	}
	msg, _ := json.Marshal(clusterMessage{
		Origin:          h.instanceID,
		Kind:            kind,
		TargetSessionID: sessionID,
		Message:         payload,
	})
	if err := h.rdb.Publish(context.Background(), clusterChannel, msg).Err(); err != nil {
		h.logger.Warn(module, "Cluster publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) deliverLocal(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn(module, "Client send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
		}
	}
}

// handleInbound is called by a client's read loop for every frame it receives.
func (h *Hub) handleInbound(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.logger.Warn(module, "Malformed client message", map[string]interface{}{"session_id": c.SessionID})
		return
	}

	switch env.Type {
	case TypeSpeechEvent:
		var ev SpeechEventPayload
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return
		}
		// The speak request may have come from another instance.
		if !h.resolveSpeech(c.SessionID, ev) && ev.Status != SpeechStarted {
			h.publishCluster(clusterSpeech, c.SessionID, env.Data)
		}
	default:
		h.logger.Debug(module, "Ignoring client message", map[string]interface{}{"type": env.Type})
	}
}

func (h *Hub) awaitSpeech(sessionID, requestID string) (<-chan SpeechEventPayload, func()) {
	ch := make(chan SpeechEventPayload, 1)
	h.speechMu.Lock()
	h.speechWaiters[requestID] = speechWaiter{sessionID: sessionID, ch: ch}
	h.speechMu.Unlock()

	return ch, func() {
		h.speechMu.Lock()
		delete(h.speechWaiters, requestID)
		h.speechMu.Unlock()
	}
}

// resolveSpeech hands a final speech event to its waiter and reports whether this
// instance knew the request. Events from another session's client are dropped.
func (h *Hub) resolveSpeech(sessionID string, ev SpeechEventPayload) bool {
	h.speechMu.Lock()
	w, ok := h.speechWaiters[ev.RequestID]
	if !ok {
		h.speechMu.Unlock()
		return false
	}
	if w.sessionID != sessionID {
		h.speechMu.Unlock()
		h.logger.Warn(module, "Speech event from foreign session", map[string]interface{}{
			"session_id": sessionID,
			"request_id": ev.RequestID,
		})
		return true
	}
	if ev.Status == SpeechStarted {
		h.speechMu.Unlock()
		return true
	}
	delete(h.speechWaiters, ev.RequestID)
	h.speechMu.Unlock()

	w.ch <- ev
	return true
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn(module, "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instanceID {
			continue
		}
		switch payload.Kind {
		case clusterSpeech:
			var ev SpeechEventPayload
			if err := json.Unmarshal(payload.Message, &ev); err == nil {
				h.resolveSpeech(payload.TargetSessionID, ev)
			}
		default:
			h.deliverLocal(payload.TargetSessionID, payload.Message)
		}
	}
}
