package server

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gravitas-games/hextactics/internal/gamemap"
	"github.com/gravitas-games/hextactics/internal/network"
	"github.com/gravitas-games/hextactics/pkg/models"
	"github.com/gravitas-games/hextactics/pkg/vision"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	// WebSocket connection
	ws *websocket.Conn

	// Server reference
	server *Server

	// Player information (set after authentication)
	player *models.Player

	// Buffered channel for outbound messages
	send chan []byte

	// Is connection authenticated
	authenticated bool

	// joined is set once the player entered the session
	joined bool

	closeOnce sync.Once
	sendMu    sync.RWMutex
	closed    bool
}

// NewConnection creates a new connection
func NewConnection(ws *websocket.Conn, server *Server) *Connection {
	return &Connection{
		ws:            ws,
		server:        server,
		send:          make(chan []byte, 256),
		authenticated: false,
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	// Set up connection parameters
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Start read and write pumps
	go c.writePump()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the server
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Failed to parse client message: %v", err)
			c.SendError("invalid_message", "Failed to parse message")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.server.ctx.Done():
			// Server shutting down
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	switch msg.Type {
	case network.MsgTypeJoin:
		c.handleJoin()
	case network.MsgTypeLeave:
		c.handleLeave()
	case network.MsgTypePing:
		c.handlePing()
	case network.MsgTypePathPreview:
		c.handlePathPreview(msg.Payload)
	case network.MsgTypeSpawnUnit:
		c.handleSpawnUnit(msg.Payload)
	case network.MsgTypeMoveUnit:
		c.handleMoveUnit(msg.Payload)
	case network.MsgTypeRemoveUnit:
		c.handleRemoveUnit(msg.Payload)
	case network.MsgTypeSetElevation:
		c.handleSetElevation(msg.Payload)
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.SendError("unknown_message_type", "Unknown message type")
	}
}

// handleJoin handles player join requests
func (c *Connection) handleJoin() {
	if !c.authenticated || c.player == nil {
		c.SendError("not_authenticated", "Connection not authenticated")
		return
	}
	session := c.server.session

	c.player.Connected = true
	c.player.ConnectedAt = time.Now()
	c.player.SessionID = session.ID

	if err := session.AddPlayer(c.player, c); err != nil {
		log.Printf("Failed to add player to session: %v", err)
		c.sendFailure(err)
		return
	}
	c.joined = true

	status := session.GetStatus()
	width, height := session.MapSize()
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			PlayerID:  c.player.ID,
			Username:  c.player.Username,
			SessionID: session.ID,
			SessionStatus: network.SessionStatus{
				State:       status.State,
				PlayerCount: status.PlayerCount,
				MaxPlayers:  status.MaxPlayers,
				ServerTick:  status.ServerTick,
				Uptime:      status.Uptime,
			},
			MapWidth:  width,
			MapHeight: height,
		},
	})

	session.BroadcastExcept(c, &network.ServerMessage{
		Type: network.MsgTypePlayerJoined,
		Payload: network.PlayerJoinedPayload{
			PlayerID: c.player.ID,
			Username: c.player.Username,
		},
	})
}

// handleLeave handles player leave requests
func (c *Connection) handleLeave() {
	if c.player == nil || !c.joined {
		return
	}
	c.joined = false
	c.server.session.RemovePlayer(c.player.ID)

	c.server.session.Broadcast(&network.ServerMessage{
		Type: network.MsgTypePlayerLeft,
		Payload: network.PlayerLeftPayload{
			PlayerID: c.player.ID,
			Username: c.player.Username,
		},
	})
}

// handlePing handles ping requests
func (c *Connection) handlePing() {
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypePong,
		Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
	})
}

func (c *Connection) handlePathPreview(payload json.RawMessage) {
	var req network.PathPreviewPayload
	if !c.decode(payload, &req) {
		return
	}
	path, err := c.server.session.PreviewPath(c.player.ID, req.UnitID, req.To, req.Mode)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(&network.ServerMessage{Type: network.MsgTypePath, Payload: path})
}

func (c *Connection) handleSpawnUnit(payload json.RawMessage) {
	var req network.SpawnUnitPayload
	if !c.decode(payload, &req) {
		return
	}
	unit, err := c.server.session.SpawnUnit(c.player.ID, req)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(&network.ServerMessage{Type: network.MsgTypeUnitSpawned, Payload: unit})
}

func (c *Connection) handleMoveUnit(payload json.RawMessage) {
	var req network.MoveUnitPayload
	if !c.decode(payload, &req) {
		return
	}
	unit, path, err := c.server.session.MoveUnit(c.player.ID, req.UnitID, req.To, req.Mode)
	if path.UnitID != "" {
		c.SendMessage(&network.ServerMessage{Type: network.MsgTypePath, Payload: path})
	}
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(&network.ServerMessage{Type: network.MsgTypeUnitMoved, Payload: unit})
}

func (c *Connection) handleRemoveUnit(payload json.RawMessage) {
	var req network.RemoveUnitPayload
	if !c.decode(payload, &req) {
		return
	}
	if err := c.server.session.RemoveUnit(c.player.ID, req.UnitID); err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeUnitRemoved,
		Payload: network.UnitRemovedPayload{UnitID: req.UnitID},
	})
}

func (c *Connection) handleSetElevation(payload json.RawMessage) {
	var req network.SetElevationPayload
	if !c.decode(payload, &req) {
		return
	}
	if err := c.server.session.SetElevation(c.player.ID, req.At, req.Elevation); err != nil {
		c.sendFailure(err)
	}
}

// decode parses a payload for a handler that needs a joined player.
func (c *Connection) decode(payload json.RawMessage, v interface{}) bool {
	if !c.joined {
		c.SendError("not_joined", "Join the session first")
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		log.Printf("Failed to parse payload: %v", err)
		c.SendError("invalid_payload", "Invalid message payload")
		return false
	}
	return true
}

// sendFailure reports a session error to the client with a stable code
func (c *Connection) sendFailure(err error) {
	c.SendError(errorCode(err), err.Error())
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrSessionFull):
		return "session_full"
	case errors.Is(err, ErrNotJoined):
		return "not_joined"
	case errors.Is(err, ErrUnknownUnit):
		return "unknown_unit"
	case errors.Is(err, ErrNotOwner):
		return "not_owner"
	case errors.Is(err, ErrUnknownMode):
		return "unknown_mode"
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrBlocked), errors.Is(err, gamemap.ErrCellOccupied):
		return "blocked"
	case errors.Is(err, gamemap.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrNoPath):
		return "no_path"
	case errors.Is(err, ErrOutOfReach):
		return "out_of_reach"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, vision.ErrDuplicateViewer), errors.Is(err, vision.ErrUnknownViewer):
		return "vision_error"
	default:
		return "internal_error"
	}
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Send buffer full, dropping message")
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close removes the player from the session and closes the connection.
// It is safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		if c.authenticated && c.player != nil {
			c.handleLeave()
		}

		c.sendMu.Lock()
		c.closed = true
		close(c.send)
		c.sendMu.Unlock()

		if c.ws != nil {
			c.ws.Close()
		}
	})
}
