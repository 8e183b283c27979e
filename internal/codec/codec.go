package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"cardroom/engine"
	"cardroom/internal/lobby"
)

// Client message types.
const (
	ClientCreateRoom = "create_room"
	ClientJoinRoom   = "join_room"
	ClientListRooms  = "list_rooms"
	ClientStartGame  = "start_game"
	ClientNextHand   = "next_hand"
	ClientAction     = "action"
	ClientSync       = "sync"
)

// Server message types.
const (
	ServerState       = "state"
	ServerRooms       = "rooms"
	ServerRoomCreated = "room_created"
	ServerError       = "error"
)

// ClientEnvelope frames every client -> server message.
type ClientEnvelope struct {
	Type   string          `json:"type"`
	RoomID string          `json:"roomId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type CreateRoomRequest struct {
	Name     string          `json:"name"`
	Settings engine.Settings `json:"settings"`
	JoinCode string          `json:"joinCode,omitempty"`
}

type JoinRoomRequest struct {
	Name     string `json:"name"`
	JoinCode string `json:"joinCode,omitempty"`
}

type ActionRequest struct {
	Action string `json:"action"`
	Amount int64  `json:"amount,omitempty"`
}

// ServerEnvelope frames every server -> client message.
type ServerEnvelope struct {
	Type   string           `json:"type"`
	RoomID string           `json:"roomId,omitempty"`
	Seq    uint64           `json:"seq"`
	State  *engine.State    `json:"state,omitempty"`
	Rooms  []lobby.RoomInfo `json:"rooms,omitempty"`
	Error  *ErrorBody       `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecodeClient parses a client frame.
func DecodeClient(data []byte) (ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientEnvelope{}, err
	}
	if env.Type == "" {
		return ClientEnvelope{}, fmt.Errorf("missing message type")
	}
	return env, nil
}

// DecodeData parses the typed payload of a client frame.
func DecodeData[T any](env ClientEnvelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, err
	}
	return out, nil
}

// ParseAction maps the wire action name onto the engine enum.
func ParseAction(name string) (engine.ActionType, error) {
	for a, s := range engine.ActionTypeDictionary {
		if s == name && a != engine.ActionNone {
			return a, nil
		}
	}
	return engine.ActionNone, fmt.Errorf("unknown action %q", name)
}

func EncodeState(roomID string, seq uint64, state engine.State) ([]byte, error) {
	return json.Marshal(ServerEnvelope{
		Type:   ServerState,
		RoomID: roomID,
		Seq:    seq,
		State:  &state,
	})
}

func EncodeRooms(seq uint64, rooms []lobby.RoomInfo) ([]byte, error) {
	return json.Marshal(ServerEnvelope{
		Type:  ServerRooms,
		Seq:   seq,
		Rooms: rooms,
	})
}

func EncodeRoomCreated(roomID string, seq uint64, state engine.State) ([]byte, error) {
	return json.Marshal(ServerEnvelope{
		Type:   ServerRoomCreated,
		RoomID: roomID,
		Seq:    seq,
		State:  &state,
	})
}

func EncodeError(roomID string, seq uint64, code, message string) ([]byte, error) {
	return json.Marshal(ServerEnvelope{
		Type:   ServerError,
		RoomID: roomID,
		Seq:    seq,
		Error:  &ErrorBody{Code: code, Message: message},
	})
}

// ErrorCodeOf extracts the engine error code for the wire, with a
// generic fallback for non-engine failures.
func ErrorCodeOf(err error) string {
	switch {
	case errors.Is(err, lobby.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, lobby.ErrBadJoinCode):
		return "bad_join_code"
	}
	for _, code := range []engine.ErrorCode{
		engine.CodeNotHost,
		engine.CodeInvalidPhase,
		engine.CodeNotActivePlayer,
		engine.CodeInvalidAction,
		engine.CodeTableFull,
	} {
		if engine.IsCode(err, code) {
			return string(code)
		}
	}
	return "internal"
}
