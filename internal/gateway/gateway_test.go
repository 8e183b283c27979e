package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"cardroom/engine"
	"cardroom/internal/codec"
	"cardroom/internal/lobby"
)

func newTestServer(t *testing.T) (*httptest.Server, *lobby.Lobby) {
	t.Helper()
	g := New()
	l := lobby.New(nil, g.Broadcast)
	g.Bind(l)
	srv := httptest.NewServer(http.HandlerFunc(g.HandleWebSocket))
	t.Cleanup(func() {
		srv.Close()
		l.Shutdown()
	})
	return srv, l
}

func dial(t *testing.T, srv *httptest.Server, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?player=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, env codec.ClientEnvelope) {
	t.Helper()
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write err: %v", err)
	}
}

// readUntil drains frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) codec.ServerEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read err waiting for %q: %v", msgType, err)
		}
		var env codec.ServerEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad server frame: %v", err)
		}
		if env.Type == msgType {
			return env
		}
	}
}

func rawMessage(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	return data
}

func wsSettings() engine.Settings {
	return engine.Settings{
		Variant:       engine.VariantTexasHoldem,
		SmallBlind:    50,
		BigBlind:      100,
		StartingStack: 1000,
		MaxPlayers:    6,
	}
}

func TestGateway_CreateJoinStartOverWebSocket(t *testing.T) {
	srv, _ := newTestServer(t)

	alice := dial(t, srv, "alice")
	sendEnvelope(t, alice, codec.ClientEnvelope{
		Type: codec.ClientCreateRoom,
		Data: rawMessage(t, codec.CreateRoomRequest{Name: "Alice", Settings: wsSettings()}),
	})
	created := readUntil(t, alice, codec.ServerRoomCreated)
	if created.RoomID == "" || created.State == nil {
		t.Fatalf("bad room_created frame: %+v", created)
	}
	if created.State.HostID != "alice" {
		t.Fatalf("creator must be host, got %q", created.State.HostID)
	}

	bob := dial(t, srv, "bob")
	sendEnvelope(t, bob, codec.ClientEnvelope{
		Type:   codec.ClientJoinRoom,
		RoomID: created.RoomID,
		Data:   rawMessage(t, codec.JoinRoomRequest{Name: "Bob"}),
	})
	// the join broadcast reaches bob as a state frame tagged with the
	// room it came from, including the very first one after joining
	joined := readUntil(t, bob, codec.ServerState)
	if len(joined.State.Players) != 2 {
		t.Fatalf("join not reflected: %+v", joined.State.Players)
	}
	if joined.RoomID != created.RoomID {
		t.Fatalf("state frame carried room %q, want %q", joined.RoomID, created.RoomID)
	}

	sendEnvelope(t, alice, codec.ClientEnvelope{Type: codec.ClientStartGame, RoomID: created.RoomID})

	var bobView codec.ServerEnvelope
	for {
		bobView = readUntil(t, bob, codec.ServerState)
		if bobView.State.Phase == engine.PhasePreflop {
			break
		}
	}
	if bobView.RoomID != created.RoomID {
		t.Fatalf("state frame carried room %q, want %q", bobView.RoomID, created.RoomID)
	}
	// player-scoped redaction must hold on the wire
	if len(bobView.State.Deck) != 0 {
		t.Fatalf("deck leaked over the wire")
	}
	for _, p := range bobView.State.Players {
		if p.ID == "bob" && len(p.Cards) != 2 {
			t.Fatalf("bob must see his own cards")
		}
		if p.ID != "bob" && p.Cards != nil {
			t.Fatalf("opponent cards leaked to bob")
		}
	}
}

func TestGateway_ErrorsComeBackTyped(t *testing.T) {
	srv, _ := newTestServer(t)

	alice := dial(t, srv, "alice")
	sendEnvelope(t, alice, codec.ClientEnvelope{
		Type: codec.ClientCreateRoom,
		Data: rawMessage(t, codec.CreateRoomRequest{Settings: wsSettings()}),
	})
	created := readUntil(t, alice, codec.ServerRoomCreated)

	bob := dial(t, srv, "bob")
	sendEnvelope(t, bob, codec.ClientEnvelope{
		Type:   codec.ClientJoinRoom,
		RoomID: created.RoomID,
		Data:   rawMessage(t, codec.JoinRoomRequest{Name: "Bob"}),
	})
	readUntil(t, bob, codec.ServerState)

	// non-host start must fail with the engine's code on the wire
	sendEnvelope(t, bob, codec.ClientEnvelope{Type: codec.ClientStartGame, RoomID: created.RoomID})
	errFrame := readUntil(t, bob, codec.ServerError)
	if errFrame.Error == nil || errFrame.Error.Code != string(engine.CodeNotHost) {
		t.Fatalf("expected not_host error, got %+v", errFrame.Error)
	}

	// malformed action name
	sendEnvelope(t, bob, codec.ClientEnvelope{
		Type:   codec.ClientAction,
		RoomID: created.RoomID,
		Data:   rawMessage(t, codec.ActionRequest{Action: "punt"}),
	})
	errFrame = readUntil(t, bob, codec.ServerError)
	if errFrame.Error == nil || errFrame.Error.Code != "invalid" {
		t.Fatalf("expected invalid error, got %+v", errFrame.Error)
	}

	// unknown room
	carol := dial(t, srv, "carol")
	sendEnvelope(t, carol, codec.ClientEnvelope{
		Type:   codec.ClientJoinRoom,
		RoomID: "nope",
		Data:   rawMessage(t, codec.JoinRoomRequest{Name: "Carol"}),
	})
	errFrame = readUntil(t, carol, codec.ServerError)
	if errFrame.Error == nil {
		t.Fatalf("expected an error frame")
	}
}
