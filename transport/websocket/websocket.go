package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nakatani/tankarena/game/broadcast"
	"github.com/nakatani/tankarena/game/relay"
	"github.com/nakatani/tankarena/game/session"
	"github.com/nakatani/tankarena/game/state"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Request is the inbound RPC envelope. Op selects the relay operation;
// the remaining fields are populated per op.
type Request struct {
	Op           string           `json:"op"`
	AvatarID     uuid.UUID        `json:"avatar_id,omitempty"`
	TargetID     uuid.UUID        `json:"target_id,omitempty"`
	ProjectileID uuid.UUID        `json:"projectile_id,omitempty"`
	Position     state.Vector3    `json:"position"`
	Velocity     state.Vector3    `json:"velocity"`
	Rotation     state.Quaternion `json:"rotation"`
	LaunchForce  float64          `json:"launch_force,omitempty"`
}

// Operation names accepted in Request.Op.
const (
	OpJoin              = "join"
	OpMove              = "move"
	OpAttack            = "attack"
	OpShoot             = "shoot"
	OpProjectileUpdate  = "projectile_update"
	OpProjectileExplode = "projectile_explode"
)

// Envelope is the outbound push frame wrapping one relay event.
type Envelope struct {
	Event string          `json:"event"`
	Data  broadcast.Event `json:"data"`
}

var errSendQueueFull = errors.New("websocket: send queue full")

// Handler upgrades HTTP requests to WebSocket connections and bridges
// them into the relay.
type Handler struct {
	relay     *relay.Handler
	queueSize int
}

// NewHandler creates a WebSocket handler delivering through the given
// relay. queueSize is the per-client outbound buffer; a client that
// falls that far behind is disconnected.
func NewHandler(relayHandler *relay.Handler, queueSize int) *Handler {
	return &Handler{relay: relayHandler, queueSize: queueSize}
}

// ServeWS handles a WebSocket upgrade. The optional ?room=<uuid> query
// parameter selects the session; without it the connection lands in the
// default session.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := session.DefaultID
	if raw := r.URL.Query().Get("room"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid room id", http.StatusBadRequest)
			return
		}
		roomID = parsed
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, h.queueSize),
		done: make(chan struct{}),
	}

	relayConn, err := h.relay.Attach(roomID, client)
	if err != nil {
		// Unknown room: the connection is refused before any state is
		// touched.
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown room"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	client.relay = relayConn

	go client.writePump()
	go client.readPump()
}

// Client is one WebSocket connection. It implements broadcast.Sendable:
// the relay's broadcasts are marshaled once per member and handed to
// the client's writePump through a buffered channel, so a slow peer
// never blocks the handler that triggered the broadcast.
type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	relay *relay.Conn
	once  sync.Once
}

// Send queues one event for delivery. It never blocks: if the client's
// buffer is full the connection is torn down and the event is dropped.
func (c *Client) Send(event broadcast.Event) error {
	data, err := json.Marshal(Envelope{Event: event.EventName(), Data: event})
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errors.New("websocket: connection closed")
	default:
		c.close()
		return errSendQueueFull
	}
}

// close makes the pumps exit; the readPump's deferred detach does the
// relay-side cleanup.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump reads RPC requests from the connection and dispatches them
// into the relay. It owns connection teardown: whatever ends the read
// loop (graceful close, timeout, protocol error), the deferred Detach
// runs exactly once.
func (c *Client) readPump() {
	defer func() {
		c.relay.Detach()
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("Malformed request from %s: %v", c.relay.ID(), err)
			continue
		}
		c.dispatch(req)
	}
}

// dispatch translates one request into a relay call. Unknown ops are
// logged and skipped; the relay itself never errors on missing
// entities.
func (c *Client) dispatch(req Request) {
	switch req.Op {
	case OpJoin:
		c.relay.JoinAndSpawn(req.Position)
	case OpMove:
		avatarID := req.AvatarID
		if avatarID == uuid.Nil {
			avatarID = c.relay.ID()
		}
		c.relay.Move(avatarID, req.Position, req.Rotation)
	case OpAttack:
		c.relay.Attack(req.TargetID)
	case OpShoot:
		c.relay.Shoot(req.Position, req.Velocity, req.Rotation, req.LaunchForce)
	case OpProjectileUpdate:
		c.relay.UpdateProjectile(req.ProjectileID, req.Position, req.Velocity)
	case OpProjectileExplode:
		c.relay.ExplodeProjectile(req.ProjectileID, req.Position)
	default:
		log.Printf("Unknown op %q from %s", req.Op, c.relay.ID())
	}
}

// writePump pumps queued events to the WebSocket connection and keeps
// the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
