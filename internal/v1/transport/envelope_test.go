package transport

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

func TestEncodeEnvelope(t *testing.T) {
	raw, err := encodeEnvelope(EvtPong, map[string]any{"ok": true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"pong","payload":{"ok":true}}`, string(raw))

	raw, err = encodeEnvelope(EvtPong, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"pong"}`, string(raw))
}

func TestEnvelopeDecode(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"event":"joinGame","payload":{"roomId":"GAME42"}}`), &env))
	assert.Equal(t, EvtJoinGame, env.Event)

	var body struct {
		RoomID string `json:"roomId"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	assert.Equal(t, "GAME42", body.RoomID)
}

func TestErrorPayloadFrom(t *testing.T) {
	p := errorPayloadFrom(types.ErrRoomFull.WithAction("joinGame"), "")
	assert.Equal(t, "room_full", p.Code)
	assert.Equal(t, "room is full", p.Message)
	assert.Equal(t, "joinGame", p.Action, "the error's own action wins")

	p = errorPayloadFrom(types.ErrRoomFull, "createRoom")
	assert.Equal(t, "createRoom", p.Action, "caller action fills the gap")

	// Unclassified errors never leak internals to the wire.
	p = errorPayloadFrom(errors.New("pq: connection reset"), "startGame")
	assert.Equal(t, "internal_error", p.Code)
	assert.Equal(t, "internal error", p.Message)
	assert.Equal(t, "startGame", p.Action)
}
