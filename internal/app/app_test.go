package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func testConfig() *AppConfig {
	return &AppConfig{
		Host:             "127.0.0.1",
		Port:             0,
		LogLevel:         "DEBUG",
		RoomTTL:          2 * time.Hour,
		ReaperInterval:   30 * time.Minute,
		RoomCodeLength:   6,
		RoomCodeAlphabet: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
		SendQueueSize:    64,
		RedisChannel:     "disco:rooms",
	}
}

func startServer(t *testing.T, cfg *AppConfig) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := New(ctx, cfg, NewLogger(io.Discard, slog.LevelDebug))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType, id string, payload any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    msgType,
		"id":      id,
		"payload": payload,
	}))
}

// expect reads until a message of msgType arrives.
func expect(t *testing.T, conn *websocket.Conn, msgType string) envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var env envelope
		require.NoError(t, conn.ReadJSON(&env), "waiting for %s", msgType)
		if env.Type == msgType {
			return env
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	cfg.RoomTTL = 0
	cfg.RoomCodeAlphabet = ""
	cfg.LogLevel = "LOUD"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room ttl")
	assert.Contains(t, err.Error(), "alphabet")
	assert.Contains(t, err.Error(), "log level")
}

func TestRoomLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisEnabled = true
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg.RedisHost, cfg.RedisPort = mr.Host(), port

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	sub := rc.Subscribe(context.Background(), cfg.RedisChannel)
	defer sub.Close()
	_, err = sub.Receive(context.Background())
	require.NoError(t, err)

	srv := startServer(t, cfg)
	admin := dial(t, srv)
	guest := dial(t, srv)

	send(t, admin, "create-room", "c1", map[string]any{
		"admin_id": "admin-1",
		"playlist": []map[string]any{{"id": "t1", "name": "One"}, {"id": "t2", "name": "Two"}},
		"initial_track": map[string]any{"id": "t1", "name": "One"},
	})
	ack := expect(t, admin, "ack")
	assert.Equal(t, "c1", ack.ID)

	var created struct {
		Success  bool   `json:"success"`
		RoomCode string `json:"room_code"`
	}
	require.NoError(t, json.Unmarshal(ack.Payload, &created))
	require.True(t, created.Success)
	require.Len(t, created.RoomCode, 6)

	send(t, admin, "play-pause", "", map[string]any{"is_playing": true, "current_time_ms": 1500})
	// the admin's messages are handled in order, so the ack means play-pause landed
	send(t, admin, "ping", "p0", nil)
	require.Equal(t, "p0", expect(t, admin, "ack").ID)

	send(t, guest, "join-room", "j1", map[string]any{"room_code": strings.ToLower(created.RoomCode), "name": "Ana"})
	ack = expect(t, guest, "ack")
	assert.Equal(t, "j1", ack.ID)

	var joined struct {
		Success      bool   `json:"success"`
		GuestID      string `json:"guest_id"`
		SyncSnapshot struct {
			Track struct {
				ID string `json:"id"`
			} `json:"track"`
			IsPlaying     bool              `json:"is_playing"`
			CurrentTimeMs int64             `json:"current_time_ms"`
			Playlist      []json.RawMessage `json:"playlist"`
		} `json:"sync_snapshot"`
	}
	require.NoError(t, json.Unmarshal(ack.Payload, &joined))
	require.True(t, joined.Success)
	assert.NotEmpty(t, joined.GuestID)
	assert.Equal(t, "t1", joined.SyncSnapshot.Track.ID)
	assert.True(t, joined.SyncSnapshot.IsPlaying)
	assert.Equal(t, int64(1500), joined.SyncSnapshot.CurrentTimeMs)
	assert.Len(t, joined.SyncSnapshot.Playlist, 2)

	guestJoined := expect(t, admin, "guest-joined")
	assert.Contains(t, string(guestJoined.Payload), `"name":"Ana"`)
	assert.Contains(t, string(guestJoined.Payload), `"total_guests":1`)

	send(t, admin, "update-track", "", map[string]any{"track": map[string]any{"id": "t2", "name": "Two"}})
	trackUpdate := expect(t, guest, "track-update")
	assert.Contains(t, string(trackUpdate.Payload), `"id":"t2"`)
	assert.Contains(t, string(trackUpdate.Payload), `"current_time_ms":0`)

	send(t, guest, "ping", "p1", map[string]any{"client_timestamp": 42})
	pong := expect(t, guest, "ack")
	assert.Equal(t, "p1", pong.ID)
	assert.Contains(t, string(pong.Payload), `"client_timestamp":42`)

	resp, err := http.Get(srv.URL + "/rooms/" + created.RoomCode)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"active_guest_count":1`)

	require.NoError(t, admin.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	closed := expect(t, guest, "room-closed")
	assert.JSONEq(t, `{"reason":"admin-disconnected"}`, string(closed.Payload))

	resp, err = http.Get(srv.URL + "/rooms/" + created.RoomCode)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var types []string
	for len(types) < 3 {
		msg, err := sub.ReceiveTimeout(context.Background(), 3*time.Second)
		require.NoError(t, err)
		if m, ok := msg.(*redis.Message); ok {
			var ev struct {
				Type     string `json:"type"`
				RoomCode string `json:"room_code"`
			}
			require.NoError(t, json.Unmarshal([]byte(m.Payload), &ev))
			assert.Equal(t, created.RoomCode, ev.RoomCode)
			types = append(types, ev.Type)
		}
	}
	assert.Equal(t, []string{"room-created", "guest-joined", "room-closed"}, types)
}

func TestJoinUnknownRoom(t *testing.T) {
	srv := startServer(t, testConfig())
	guest := dial(t, srv)

	send(t, guest, "join-room", "j1", map[string]any{"room_code": "ZZZZZZ"})
	ack := expect(t, guest, "ack")
	assert.JSONEq(t, `{"success":false,"error":"Room not found"}`, string(ack.Payload))

	send(t, guest, "join-room", "j2", map[string]any{"room_code": "bad"})
	ack = expect(t, guest, "ack")
	assert.Equal(t, "j2", ack.ID)
	assert.JSONEq(t, `{"success":false,"error":"Room not found"}`, string(ack.Payload))

	send(t, guest, "request-sync", "r1", nil)
	ack = expect(t, guest, "ack")
	assert.JSONEq(t, `{"success":false,"error":"Not in a room"}`, string(ack.Payload))
}

func TestMalformedMessages(t *testing.T) {
	srv := startServer(t, testConfig())
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	errMsg := expect(t, conn, "error")
	assert.Contains(t, string(errMsg.Payload), "malformed message")

	send(t, conn, "dance", "d1", nil)
	errMsg = expect(t, conn, "error")
	assert.Equal(t, "d1", errMsg.ID)

	send(t, conn, "sync-time", "s1", map[string]any{"current_time_ms": -5})
	errMsg = expect(t, conn, "error")
	assert.Equal(t, "s1", errMsg.ID)
}

func TestHealthz(t *testing.T) {
	srv := startServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","rooms":0}`, string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOriginCheck(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://disco.example"}
	srv := startServer(t, cfg)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://disco.example"}})
	require.NoError(t, err)
	conn.Close()
}

func TestConfiguredRoomCodeShape(t *testing.T) {
	for _, tc := range []struct {
		name     string
		length   int
		alphabet string
	}{
		{name: "longer codes", length: 8, alphabet: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"},
		{name: "case sensitive alphabet", length: 5, alphabet: "abcdefghjk23456789"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.RoomCodeLength = tc.length
			cfg.RoomCodeAlphabet = tc.alphabet
			srv := startServer(t, cfg)
			admin := dial(t, srv)
			guest := dial(t, srv)

			send(t, admin, "create-room", "c1", map[string]any{"admin_id": "admin-1"})
			var created struct {
				RoomCode string `json:"room_code"`
			}
			require.NoError(t, json.Unmarshal(expect(t, admin, "ack").Payload, &created))
			require.Len(t, created.RoomCode, tc.length)

			resp, err := http.Get(srv.URL + "/rooms/" + created.RoomCode)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			send(t, guest, "join-room", "j1", map[string]any{"room_code": " " + created.RoomCode + " "})
			ack := expect(t, guest, "ack")
			assert.Contains(t, string(ack.Payload), `"success":true`)

			send(t, guest, "join-room", "j2", map[string]any{"room_code": created.RoomCode + "X"})
			ack = expect(t, guest, "ack")
			assert.JSONEq(t, `{"success":false,"error":"Room not found"}`, string(ack.Payload))
		})
	}
}
