package gateway

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cardroom/engine"
	"cardroom/internal/codec"
	"cardroom/internal/lobby"
	"cardroom/internal/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection represents one WebSocket client.
type Connection struct {
	ID       string
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway
	LastPing time.Time

	// Current room association. Only the readPump goroutine touches it;
	// broadcasts carry their own room ID and never read the connection.
	Room *room.Room
}

// Gateway manages WebSocket connections and routes frames to the lobby
// and its rooms.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	playerConns map[string]*Connection // playerID -> connection
	lobby       *lobby.Lobby
	serverSeq   atomic.Uint64
}

// New creates a gateway. The returned gateway's Broadcast method is the
// callback to hand the lobby at construction time.
func New() *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		playerConns: make(map[string]*Connection),
	}
}

// Bind attaches the lobby after both sides exist. The lobby needs the
// gateway's Broadcast, the gateway needs the lobby to route requests.
func (g *Gateway) Bind(lby *lobby.Lobby) {
	g.lobby = lby
}

// Broadcast pushes a sanitized snapshot to one player, if connected.
// It runs on room-actor goroutines, so the originating room passes its
// own ID rather than the gateway reading per-connection state.
func (g *Gateway) Broadcast(roomID, playerID string, state engine.State) {
	g.mu.RLock()
	c := g.playerConns[playerID]
	g.mu.RUnlock()
	if c == nil {
		return
	}
	data, err := codec.EncodeState(roomID, g.serverSeq.Add(1), state)
	if err != nil {
		log.Printf("[Gateway] encode state failed: %v", err)
		return
	}
	c.send(data)
}

// HandleWebSocket upgrades the request and starts the pumps. The player
// identity comes from the `player` query parameter; an anonymous client
// gets a generated one.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	playerID := strings.TrimSpace(r.URL.Query().Get("player"))
	if playerID == "" {
		playerID = "guest-" + uuid.NewString()[:8]
	}

	c := &Connection{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
		LastPing: time.Now(),
	}

	g.mu.Lock()
	if old := g.playerConns[playerID]; old != nil {
		// one connection per player; the newer one wins
		close(old.Send)
		delete(g.connections, old.ID)
	}
	g.connections[c.ID] = c
	g.playerConns[playerID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: player=%s, total: %d", playerID, total)

	go c.readPump()
	go c.writePump()
}

func (c *Connection) send(data []byte) {
	select {
	case c.Send <- data:
	default:
		// drop if the client is not draining
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	env, err := codec.DecodeClient(data)
	if err != nil {
		log.Printf("[Gateway] Failed to decode from %s: %v", c.PlayerID, err)
		c.sendError("", "invalid", "invalid message format")
		return
	}

	switch env.Type {
	case codec.ClientCreateRoom:
		c.handleCreateRoom(env)
	case codec.ClientJoinRoom:
		c.handleJoinRoom(env)
	case codec.ClientListRooms:
		c.handleListRooms()
	case codec.ClientStartGame:
		c.submitToRoom(env, room.Event{Type: room.EventStart, PlayerID: c.PlayerID})
	case codec.ClientNextHand:
		c.submitToRoom(env, room.Event{Type: room.EventNextHand, PlayerID: c.PlayerID})
	case codec.ClientAction:
		c.handleAction(env)
	case codec.ClientSync:
		c.submitToRoom(env, room.Event{Type: room.EventSync, PlayerID: c.PlayerID})
	default:
		log.Printf("[Gateway] Unknown message type %q from %s", env.Type, c.PlayerID)
		c.sendError(env.RoomID, "invalid", "unknown message type")
	}
}

func (c *Connection) handleCreateRoom(env codec.ClientEnvelope) {
	req, err := codec.DecodeData[codec.CreateRoomRequest](env)
	if err != nil {
		c.sendError("", "invalid", err.Error())
		return
	}
	name := req.Name
	if name == "" {
		name = c.PlayerID
	}

	r, err := c.Gateway.lobby.CreateRoom(c.PlayerID, name, req.Settings, req.JoinCode)
	if err != nil {
		c.sendError("", codec.ErrorCodeOf(err), err.Error())
		return
	}
	c.Room = r

	data, err := codec.EncodeRoomCreated(r.ID, c.Gateway.serverSeq.Add(1), r.StateForPlayer(c.PlayerID))
	if err != nil {
		log.Printf("[Gateway] encode room_created failed: %v", err)
		return
	}
	c.send(data)
	log.Printf("[Gateway] Player %s created room %s", c.PlayerID, r.ID)
}

func (c *Connection) handleJoinRoom(env codec.ClientEnvelope) {
	req, err := codec.DecodeData[codec.JoinRoomRequest](env)
	if err != nil {
		c.sendError(env.RoomID, "invalid", err.Error())
		return
	}
	name := req.Name
	if name == "" {
		name = c.PlayerID
	}

	r, err := c.Gateway.lobby.JoinRoom(env.RoomID, c.PlayerID, name, req.JoinCode)
	if err != nil {
		c.sendError(env.RoomID, codec.ErrorCodeOf(err), err.Error())
		return
	}
	c.Room = r
	log.Printf("[Gateway] Player %s joined room %s", c.PlayerID, r.ID)
}

func (c *Connection) handleListRooms() {
	data, err := codec.EncodeRooms(c.Gateway.serverSeq.Add(1), c.Gateway.lobby.ListRooms())
	if err != nil {
		log.Printf("[Gateway] encode rooms failed: %v", err)
		return
	}
	c.send(data)
}

func (c *Connection) handleAction(env codec.ClientEnvelope) {
	req, err := codec.DecodeData[codec.ActionRequest](env)
	if err != nil {
		c.sendError(env.RoomID, "invalid", err.Error())
		return
	}
	action, err := codec.ParseAction(req.Action)
	if err != nil {
		c.sendError(env.RoomID, "invalid", err.Error())
		return
	}
	c.submitToRoom(env, room.Event{
		Type:     room.EventAction,
		PlayerID: c.PlayerID,
		Action:   action,
		Amount:   req.Amount,
	})
}

func (c *Connection) submitToRoom(env codec.ClientEnvelope, e room.Event) {
	r := c.Room
	if r == nil && env.RoomID != "" {
		r = c.Gateway.lobby.GetRoom(env.RoomID)
	}
	if r == nil {
		c.sendError(env.RoomID, "invalid", "not in a room")
		return
	}
	if err := r.SubmitEvent(e); err != nil {
		c.sendError(r.ID, codec.ErrorCodeOf(err), err.Error())
	}
}

func (c *Connection) sendError(roomID, code, message string) {
	data, err := codec.EncodeError(roomID, c.Gateway.serverSeq.Add(1), code, message)
	if err != nil {
		return
	}
	c.send(data)
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	if g.playerConns[c.PlayerID] == c {
		delete(g.playerConns, c.PlayerID)
	}
	log.Printf("[Gateway] Client disconnected: player=%s, total: %d", c.PlayerID, len(g.connections))
}
