package lobby

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"

	"cardroom/engine"
	"cardroom/internal/room"
	"cardroom/internal/store"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrBadJoinCode  = errors.New("wrong join code")
)

const recentHandCacheSize = 512

// RoomInfo is the listing row for an open room.
type RoomInfo struct {
	ID      string         `json:"id"`
	Variant engine.Variant `json:"variant"`
	Players int            `json:"players"`
	Max     int            `json:"max"`
	Private bool           `json:"private"`
	Phase   engine.Phase   `json:"phase"`
}

// Lobby owns all live rooms. Private rooms carry a bcrypt hash of their
// join code; the plaintext never leaves the creating request.
type Lobby struct {
	mu        sync.RWMutex
	rooms     map[string]*room.Room
	joinCodes map[string][]byte // roomID -> bcrypt hash, private rooms only

	store       store.Service
	broadcast   func(roomID, playerID string, state engine.State)
	recentHands *lru.Cache[string, room.HandEndInfo]
}

// New creates an empty lobby. broadcastFn is handed to every room it
// creates; storeService may be nil for an ephemeral lobby.
func New(storeService store.Service, broadcastFn func(roomID, playerID string, state engine.State)) *Lobby {
	cache, _ := lru.New[string, room.HandEndInfo](recentHandCacheSize)
	return &Lobby{
		rooms:       make(map[string]*room.Room),
		joinCodes:   make(map[string][]byte),
		store:       storeService,
		broadcast:   broadcastFn,
		recentHands: cache,
	}
}

// CreateRoom spins up a room and seats the creator as its host. A
// non-empty joinCode makes the room private.
func (l *Lobby) CreateRoom(hostID, hostName string, settings engine.Settings, joinCode string) (*room.Room, error) {
	roomID := uuid.NewString()

	r, err := room.New(roomID, settings, roomID[:8], l.broadcast, l.store)
	if err != nil {
		return nil, err
	}
	r.OnHandEnd(l.recordHandEnd)

	if err := r.SubmitEvent(room.Event{Type: room.EventJoin, PlayerID: hostID, Name: hostName}); err != nil {
		r.Stop()
		return nil, err
	}

	var codeHash []byte
	if joinCode != "" {
		codeHash, err = bcrypt.GenerateFromPassword([]byte(joinCode), bcrypt.DefaultCost)
		if err != nil {
			r.Stop()
			return nil, err
		}
	}

	l.mu.Lock()
	l.rooms[roomID] = r
	if codeHash != nil {
		l.joinCodes[roomID] = codeHash
	}
	l.mu.Unlock()

	log.Printf("[Lobby] Room %s created by %s (private=%v)", roomID, hostID, codeHash != nil)
	return r, nil
}

// JoinRoom seats a player, checking the join code on private rooms.
func (l *Lobby) JoinRoom(roomID, playerID, name, joinCode string) (*room.Room, error) {
	l.mu.RLock()
	r := l.rooms[roomID]
	codeHash := l.joinCodes[roomID]
	l.mu.RUnlock()

	if r == nil {
		return nil, ErrRoomNotFound
	}
	if codeHash != nil {
		if bcrypt.CompareHashAndPassword(codeHash, []byte(joinCode)) != nil {
			return nil, ErrBadJoinCode
		}
	}
	if err := r.SubmitEvent(room.Event{Type: room.EventJoin, PlayerID: playerID, Name: name}); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRoom returns a live room by ID.
func (l *Lobby) GetRoom(roomID string) *room.Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rooms[roomID]
}

// ListRooms returns a listing of all live rooms.
func (l *Lobby) ListRooms() []RoomInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]RoomInfo, 0, len(l.rooms))
	for id, r := range l.rooms {
		s := r.State()
		out = append(out, RoomInfo{
			ID:      id,
			Variant: s.Settings.Variant,
			Players: len(s.Players),
			Max:     s.Settings.MaxPlayers,
			Private: l.joinCodes[id] != nil,
			Phase:   s.Phase,
		})
	}
	return out
}

// CloseRoom stops a room and drops it from the listing.
func (l *Lobby) CloseRoom(roomID string) error {
	l.mu.Lock()
	r := l.rooms[roomID]
	delete(l.rooms, roomID)
	delete(l.joinCodes, roomID)
	l.mu.Unlock()

	if r == nil {
		return ErrRoomNotFound
	}
	r.Stop()
	log.Printf("[Lobby] Room %s closed", roomID)
	return nil
}

// Shutdown stops every room.
func (l *Lobby) Shutdown() {
	l.mu.Lock()
	rooms := make([]*room.Room, 0, len(l.rooms))
	for _, r := range l.rooms {
		rooms = append(rooms, r)
	}
	l.rooms = make(map[string]*room.Room)
	l.joinCodes = make(map[string][]byte)
	l.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
	}
}

// RecentHand returns a finished hand from the in-memory cache.
func (l *Lobby) RecentHand(handID string) (room.HandEndInfo, bool) {
	return l.recentHands.Get(handID)
}

func (l *Lobby) recordHandEnd(info room.HandEndInfo) {
	l.recentHands.Add(info.HandID, info)
}

// ResumeAll rebuilds rooms from persisted snapshots, typically at boot.
func (l *Lobby) ResumeAll(snapshots map[string]engine.State) error {
	var firstErr error
	for roomID, s := range snapshots {
		r, err := room.Resume(roomID, s, l.broadcast, l.store)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("resume room %s: %w", roomID, err)
			}
			log.Printf("[Lobby] resume room %s failed: %v", roomID, err)
			continue
		}
		r.OnHandEnd(l.recordHandEnd)
		l.mu.Lock()
		l.rooms[roomID] = r
		l.mu.Unlock()
	}
	return firstErr
}
