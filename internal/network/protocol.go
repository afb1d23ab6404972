package network

import "encoding/json"

// Message types - Client → Server
const (
	MsgTypeJoin         = "join"
	MsgTypeLeave        = "leave"
	MsgTypePing         = "ping"
	MsgTypePathPreview  = "path_preview"
	MsgTypeSpawnUnit    = "spawn_unit"
	MsgTypeMoveUnit     = "move_unit"
	MsgTypeRemoveUnit   = "remove_unit"
	MsgTypeSetElevation = "set_elevation"
)

// Message types - Server → Client
const (
	MsgTypeWelcome       = "welcome"
	MsgTypePlayerJoined  = "player_joined"
	MsgTypePlayerLeft    = "player_left"
	MsgTypePath          = "path"
	MsgTypeVisibility    = "visibility"
	MsgTypeUnitSpawned   = "unit_spawned"
	MsgTypeUnitMoved     = "unit_moved"
	MsgTypeUnitRemoved   = "unit_removed"
	MsgTypeSessionStatus = "session_status"
	MsgTypeError         = "error"
	MsgTypePong          = "pong"
)

// Movement modes
const (
	// ModeTravel is open-world movement charged in whole turns
	ModeTravel = "travel"
	// ModeTactical is battle movement capped by the unit's action points
	ModeTactical = "tactical"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Position is a hex in rectangular offset coordinates
type Position struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// --- Client Message Payloads ---

// PathPreviewPayload asks for the path a unit would take
type PathPreviewPayload struct {
	UnitID string   `json:"unit_id"`
	To     Position `json:"to"`
	Mode   string   `json:"mode"`
}

// SpawnUnitPayload places a new unit for the sending player.
// Zero values fall back to server defaults.
type SpawnUnitPayload struct {
	At           Position `json:"at"`
	VisionRange  int      `json:"vision_range"`
	Speed        int      `json:"speed"`
	ActionPoints int      `json:"action_points"`
}

// MoveUnitPayload moves a unit along its best path
type MoveUnitPayload struct {
	UnitID string   `json:"unit_id"`
	To     Position `json:"to"`
	Mode   string   `json:"mode"`
}

// RemoveUnitPayload takes a unit off the map
type RemoveUnitPayload struct {
	UnitID string `json:"unit_id"`
}

// SetElevationPayload edits the ground height of a hex
type SetElevationPayload struct {
	At        Position `json:"at"`
	Elevation int      `json:"elevation"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	PlayerID      string        `json:"player_id"`
	Username      string        `json:"username"`
	SessionID     string        `json:"session_id"`
	SessionStatus SessionStatus `json:"session_status"`
	MapWidth      int           `json:"map_width"`
	MapHeight     int           `json:"map_height"`
}

// PlayerJoinedPayload notifies clients when a player joins
type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// PlayerLeftPayload notifies clients when a player leaves
type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// PathPayload describes a found (or missing) path. Distances line up with
// Cells; cells from AffordableCells on lie beyond the unit's budget.
type PathPayload struct {
	UnitID          string     `json:"unit_id"`
	Mode            string     `json:"mode"`
	Found           bool       `json:"found"`
	Reachable       bool       `json:"reachable"`
	Cells           []Position `json:"cells"`
	Distances       []int      `json:"distances"`
	Cost            int        `json:"cost"`
	Turns           int        `json:"turns,omitempty"`
	AffordableCells int        `json:"affordable_cells"`
}

// VisibilityPayload carries the net fog of war change for a player
type VisibilityPayload struct {
	Visible []Position `json:"visible"`
	Hidden  []Position `json:"hidden"`
}

// Empty reports whether the change is a no-op
func (v VisibilityPayload) Empty() bool { return len(v.Visible) == 0 && len(v.Hidden) == 0 }

// UnitPayload describes a unit's current state
type UnitPayload struct {
	UnitID       string   `json:"unit_id"`
	OwnerID      string   `json:"owner_id"`
	At           Position `json:"at"`
	VisionRange  int      `json:"vision_range"`
	Speed        int      `json:"speed"`
	ActionPoints int      `json:"action_points"`
}

// UnitRemovedPayload notifies that a unit left the map
type UnitRemovedPayload struct {
	UnitID string `json:"unit_id"`
}

// SessionStatus represents the current session state
type SessionStatus struct {
	State       string `json:"state"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	ServerTick  int64  `json:"server_tick"`
	Uptime      int64  `json:"uptime"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
