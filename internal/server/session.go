package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitas-games/hextactics/internal/config"
	"github.com/gravitas-games/hextactics/internal/gamemap"
	"github.com/gravitas-games/hextactics/internal/network"
	"github.com/gravitas-games/hextactics/pkg/hex"
	"github.com/gravitas-games/hextactics/pkg/models"
	"github.com/gravitas-games/hextactics/pkg/search"
	"github.com/gravitas-games/hextactics/pkg/vision"
)

var (
	ErrSessionFull  = errors.New("session is full")
	ErrNotJoined    = errors.New("player has not joined")
	ErrUnknownUnit  = errors.New("unknown unit")
	ErrNotOwner     = errors.New("unit belongs to another player")
	ErrUnknownMode  = errors.New("unknown movement mode")
	ErrInvalidRange = errors.New("vision range out of bounds")
	ErrBlocked      = errors.New("hex cannot be entered")
	ErrNoPath       = errors.New("no path to destination")
	ErrOutOfReach   = errors.New("destination beyond unit budget")
	ErrForbidden    = errors.New("permission denied")
)

// Session represents a game session
type Session struct {
	ID        string
	CreatedAt time.Time

	// Player management
	players     map[string]*models.Player // playerID -> Player
	connections map[string]*Connection    // playerID -> Connection
	views       map[string]*playerView    // playerID -> fog of war

	// mu guards all session state. Engine calls take the write lock since
	// the search context is scratch space shared by every query.
	mu sync.RWMutex

	gameMap  *gamemap.GameMap
	search   *search.Context
	units    map[string]*models.Unit
	travel   gamemap.TravelRules
	tactical gamemap.TacticalRules
	status   SessionStatus

	// Configuration
	config *config.Config
}

// SessionStatus represents the current state of the session
type SessionStatus struct {
	State       string `json:"state"` // "waiting", "running"
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	ServerTick  int64  `json:"server_tick"`
	Uptime      int64  `json:"uptime"` // seconds
}

type playerView struct {
	field    *vision.Field
	recorder *vision.Recorder
}

// NewSession creates a new game session
func NewSession(id string, cfg *config.Config) (*Session, error) {
	log.Printf("Creating session: %s", id)

	gameMap, err := gamemap.New(cfg.Session.MapWidth, cfg.Session.MapHeight, cfg.Session.Wrap)
	if err != nil {
		return nil, fmt.Errorf("failed to create map: %w", err)
	}
	if cfg.Session.CloseBorder {
		gameMap.CloseBorder()
		gameMap.ClearDirty()
	}

	session := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		players:     make(map[string]*models.Player),
		connections: make(map[string]*Connection),
		views:       make(map[string]*playerView),
		gameMap:     gameMap,
		search:      search.NewContext(gameMap.Cells()),
		units:       make(map[string]*models.Unit),
		travel:      cfg.TravelRules(),
		tactical:    cfg.TacticalRules(),
		config:      cfg,
		status: SessionStatus{
			State:      "waiting",
			MaxPlayers: cfg.Session.MaxPlayers,
		},
	}

	log.Printf("Session %s created with %dx%d map", id, cfg.Session.MapWidth, cfg.Session.MapHeight)
	return session, nil
}

// Run advances the session clock at the configured tick rate until ctx is done
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.config.Server.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.status.ServerTick++
			s.mu.Unlock()
		case <-ctx.Done():
			log.Printf("Session %s stopped at tick %d", s.ID, s.GetStatus().ServerTick)
			return
		}
	}
}

// AddPlayer adds a player to the session
func (s *Session) AddPlayer(player *models.Player, conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[player.ID]; !exists && len(s.players) >= s.status.MaxPlayers {
		return fmt.Errorf("%w: %d players", ErrSessionFull, len(s.players))
	}

	s.players[player.ID] = player
	s.connections[player.ID] = conn
	if _, exists := s.views[player.ID]; !exists {
		rec := vision.NewRecorder()
		s.views[player.ID] = &playerView{field: vision.NewField(s.gameMap, rec), recorder: rec}
	}
	s.updateCount()

	log.Printf("Player %s (%s) joined session %s", player.Username, player.ID, s.ID)
	return nil
}

// RemovePlayer removes a player and their units from the session
func (s *Session) RemovePlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, exists := s.players[playerID]
	if !exists {
		return
	}
	log.Printf("Player %s (%s) left session %s", player.Username, playerID, s.ID)

	for id, unit := range s.units {
		if unit.OwnerID == playerID {
			s.gameMap.Vacate(unit.Cell)
			delete(s.units, id)
		}
	}
	delete(s.players, playerID)
	delete(s.connections, playerID)
	delete(s.views, playerID)
	s.updateCount()
}

func (s *Session) updateCount() {
	s.status.PlayerCount = len(s.players)
	if s.status.PlayerCount > 0 {
		s.status.State = "running"
	} else {
		s.status.State = "waiting"
	}
}

// GetPlayer retrieves a player by ID
func (s *Session) GetPlayer(playerID string) (*models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, exists := s.players[playerID]
	return player, exists
}

// GetPlayers returns all players in the session
func (s *Session) GetPlayers() []*models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]*models.Player, 0, len(s.players))
	for _, player := range s.players {
		players = append(players, player)
	}
	return players
}

// GetUnit returns a copy of a unit's state
func (s *Session) GetUnit(unitID string) (models.Unit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unit, exists := s.units[unitID]
	if !exists {
		return models.Unit{}, false
	}
	return *unit, true
}

// SpawnUnit places a new unit for playerID. Zero stats take the configured
// defaults.
func (s *Session) SpawnUnit(playerID string, req network.SpawnUnitPayload) (network.UnitPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.views[playerID]
	if !ok {
		return network.UnitPayload{}, ErrNotJoined
	}
	cell, err := s.gameMap.Lookup(hex.Offset{X: req.At.X, Z: req.At.Z})
	if err != nil {
		return network.UnitPayload{}, err
	}
	if c := s.gameMap.Cell(cell); !c.Explorable || c.Underwater() {
		return network.UnitPayload{}, fmt.Errorf("%w: (%d,%d)", ErrBlocked, req.At.X, req.At.Z)
	}

	rng := req.VisionRange
	if rng == 0 {
		rng = s.config.Vision.DefaultRange
	}
	if rng < 0 || rng > s.config.Vision.MaxRange {
		return network.UnitPayload{}, fmt.Errorf("%w: %d", ErrInvalidRange, rng)
	}
	speed := req.Speed
	if speed <= 0 {
		speed = s.config.Movement.TurnSpeed
	}
	ap := req.ActionPoints
	if ap <= 0 {
		ap = s.config.Tactical.ActionPoints
	}

	unit := &models.Unit{
		ID:           uuid.NewString(),
		OwnerID:      playerID,
		Cell:         cell,
		VisionRange:  rng,
		Speed:        speed,
		ActionPoints: ap,
	}
	if err := s.gameMap.Occupy(cell, unit.ID); err != nil {
		return network.UnitPayload{}, err
	}
	if err := view.field.AddViewer(s.search, unit.ID, cell, rng); err != nil {
		s.gameMap.Vacate(cell)
		return network.UnitPayload{}, err
	}
	s.units[unit.ID] = unit
	s.flushVisibility(playerID)

	log.Printf("Player %s spawned unit %s at (%d,%d)", playerID, unit.ID, req.At.X, req.At.Z)
	return s.unitPayload(unit), nil
}

// PreviewPath finds the path a unit would take to reach to without moving it
func (s *Session) PreviewPath(playerID, unitID string, to network.Position, mode string) (network.PathPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, policy, path, err := s.findPath(playerID, unitID, to, mode)
	if err != nil {
		return network.PathPayload{}, err
	}
	return s.pathPayload(unit, mode, policy, path), nil
}

// MoveUnit moves a unit along its best path. Tactical moves must fit the
// unit's action points; travel moves go as far as the current turn allows.
// Vision follows the unit through every hex it enters.
func (s *Session) MoveUnit(playerID, unitID string, to network.Position, mode string) (network.UnitPayload, network.PathPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, policy, path, err := s.findPath(playerID, unitID, to, mode)
	if err != nil {
		return network.UnitPayload{}, network.PathPayload{}, err
	}
	preview := s.pathPayload(unit, mode, policy, path)
	if !path.Found {
		return network.UnitPayload{}, preview, fmt.Errorf("%w: (%d,%d)", ErrNoPath, to.X, to.Z)
	}

	steps := len(path.Cells)
	switch mode {
	case network.ModeTactical:
		if !path.Reachable {
			return network.UnitPayload{}, preview, fmt.Errorf("%w: costs %d of %d", ErrOutOfReach, path.Cost(), unit.ActionPoints)
		}
	case network.ModeTravel:
		steps = path.AffordablePrefix(search.ResourceCeiling{Ceiling: unit.Speed})
	}

	field := s.views[playerID].field
	for _, cell := range path.Cells[1:steps] {
		if err := field.MoveViewer(s.search, unit.ID, cell); err != nil {
			return network.UnitPayload{}, preview, err
		}
	}
	dest := path.Cells[steps-1]
	s.gameMap.Vacate(unit.Cell)
	if err := s.gameMap.Occupy(dest, unit.ID); err != nil {
		return network.UnitPayload{}, preview, err
	}
	unit.Cell = dest
	s.flushVisibility(playerID)

	return s.unitPayload(unit), preview, nil
}

// RemoveUnit takes a unit off the map and withdraws its sight
func (s *Session) RemoveUnit(playerID, unitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, err := s.ownedUnit(playerID, unitID)
	if err != nil {
		return err
	}
	if err := s.views[playerID].field.RemoveViewer(s.search, unit.ID); err != nil {
		return err
	}
	s.gameMap.Vacate(unit.Cell)
	delete(s.units, unit.ID)
	s.flushVisibility(playerID)
	return nil
}

// SetElevation edits the ground height of a hex. Every player's fog of war
// is recounted when the edit changes what can be seen.
func (s *Session) SetElevation(playerID string, at network.Position, elevation int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[playerID]
	if !ok {
		return ErrNotJoined
	}
	if !player.CanEditMap() {
		return fmt.Errorf("%w: %s may not edit the map", ErrForbidden, player.Username)
	}
	cell, err := s.gameMap.Lookup(hex.Offset{X: at.X, Z: at.Z})
	if err != nil {
		return err
	}

	s.gameMap.SetElevation(cell, elevation)
	if !s.gameMap.Dirty() {
		return nil
	}
	for id, view := range s.views {
		view.field.Reset(s.search)
		s.flushVisibility(id)
	}
	s.gameMap.ClearDirty()

	log.Printf("Player %s set elevation of (%d,%d) to %d", player.Username, at.X, at.Z, elevation)
	return nil
}

// findPath must be called with s.mu held.
func (s *Session) findPath(playerID, unitID string, to network.Position, mode string) (*models.Unit, search.Policy, search.Path, error) {
	unit, err := s.ownedUnit(playerID, unitID)
	if err != nil {
		return nil, nil, search.Path{}, err
	}
	dest, err := s.gameMap.Lookup(hex.Offset{X: to.X, Z: to.Z})
	if err != nil {
		return nil, nil, search.Path{}, err
	}

	explored := s.views[playerID].field.Explored
	var q search.Query
	switch mode {
	case network.ModeTravel:
		q.Cost = gamemap.TravelCost(s.gameMap, s.travel, explored)
		q.Policy = search.TurnQuantized{Speed: unit.Speed}
	case network.ModeTactical:
		q.Cost = gamemap.TacticalCost(s.gameMap, s.tactical, explored)
		q.Policy = search.ResourceCeiling{Ceiling: unit.ActionPoints}
	default:
		return nil, nil, search.Path{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	q.From, q.To = unit.Cell, dest

	return unit, q.Policy, s.search.FindPath(s.gameMap, q), nil
}

func (s *Session) ownedUnit(playerID, unitID string) (*models.Unit, error) {
	if _, ok := s.views[playerID]; !ok {
		return nil, ErrNotJoined
	}
	unit, ok := s.units[unitID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, unitID)
	}
	if unit.OwnerID != playerID {
		return nil, fmt.Errorf("%w: %s", ErrNotOwner, unitID)
	}
	return unit, nil
}

// flushVisibility sends the pending fog of war change of a player, if any.
func (s *Session) flushVisibility(playerID string) {
	view := s.views[playerID]
	if view == nil || view.recorder.Empty() {
		return
	}
	visible, hidden := view.recorder.Drain()
	payload := network.VisibilityPayload{
		Visible: s.positions(visible),
		Hidden:  s.positions(hidden),
	}
	if conn, ok := s.connections[playerID]; ok && conn != nil {
		conn.SendMessage(&network.ServerMessage{Type: network.MsgTypeVisibility, Payload: payload})
	}
}

func (s *Session) pathPayload(unit *models.Unit, mode string, policy search.Policy, p search.Path) network.PathPayload {
	payload := network.PathPayload{
		UnitID:    unit.ID,
		Mode:      mode,
		Found:     p.Found,
		Reachable: p.Reachable,
		Cells:     s.positions(p.Cells),
		Distances: p.Distances,
		Cost:      p.Cost(),
	}
	if mode == network.ModeTravel {
		payload.Turns = p.Turns(unit.Speed)
		payload.AffordableCells = p.AffordablePrefix(search.ResourceCeiling{Ceiling: unit.Speed})
	} else {
		payload.AffordableCells = p.AffordablePrefix(policy)
	}
	return payload
}

func (s *Session) unitPayload(u *models.Unit) network.UnitPayload {
	return network.UnitPayload{
		UnitID:       u.ID,
		OwnerID:      u.OwnerID,
		At:           s.position(u.Cell),
		VisionRange:  u.VisionRange,
		Speed:        u.Speed,
		ActionPoints: u.ActionPoints,
	}
}

func (s *Session) position(cell int) network.Position {
	o := s.gameMap.Offset(cell)
	return network.Position{X: o.X, Z: o.Z}
}

func (s *Session) positions(cells []int) []network.Position {
	out := make([]network.Position, len(cells))
	for i, cell := range cells {
		out[i] = s.position(cell)
	}
	return out
}

// Broadcast sends a message to all connected players
func (s *Session) Broadcast(msg *network.ServerMessage) {
	s.BroadcastExcept(nil, msg)
}

// BroadcastExcept sends a message to all players except the specified connection
func (s *Session) BroadcastExcept(exclude *Connection, msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		if conn != exclude {
			conn.SendMessage(msg)
		}
	}
}

// MapSize returns the width and height of the map in hexes
func (s *Session) MapSize() (int, int) {
	return s.gameMap.Width, s.gameMap.Height
}

// GetStatus returns the current session status
func (s *Session) GetStatus() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.status
	status.Uptime = int64(time.Since(s.CreatedAt).Seconds())
	return status
}
