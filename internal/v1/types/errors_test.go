package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := E(KindValidation, "bad_input", "payload rejected")
	assert.Equal(t, "bad_input: payload rejected", err.Error())

	wrapped := Wrap(KindTransient, "store_down", "snapshot save failed", fmt.Errorf("dial tcp: refused"))
	assert.Equal(t, "store_down: snapshot save failed: dial tcp: refused", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "dial tcp: refused")
}

func TestWithActionPreservesSentinelIdentity(t *testing.T) {
	annotated := ErrRoomFull.WithAction("joinGame")

	assert.Equal(t, "joinGame", annotated.Action)
	assert.Empty(t, ErrRoomFull.Action, "the sentinel itself is never mutated")
	assert.True(t, errors.Is(annotated, ErrRoomFull))
	assert.False(t, errors.Is(annotated, ErrRoomNotFound))
}

func TestKindOfAndCodeOf(t *testing.T) {
	assert.Equal(t, KindCapacity, KindOf(ErrRoomFull))
	assert.Equal(t, "room_full", CodeOf(ErrRoomFull))

	// Classification survives wrapping with %w.
	chained := fmt.Errorf("handling joinGame: %w", ErrRoomFull)
	assert.Equal(t, KindCapacity, KindOf(chained))
	assert.Equal(t, "room_full", CodeOf(chained))

	// Unclassified errors degrade to fatal, never to a client-facing kind.
	plain := errors.New("slice out of range")
	assert.Equal(t, KindFatal, KindOf(plain))
	assert.Equal(t, "internal_error", CodeOf(plain))
}

func TestSentinelCodesAreDistinct(t *testing.T) {
	sentinels := []*Error{
		ErrRoomNotFound, ErrRoomClosing, ErrRoomFull, ErrUnknownPlayer,
		ErrUnknownGame, ErrUnknownCommand, ErrGameNotActive, ErrGameAlreadyOver,
		ErrGameInProgress, ErrAlreadyStarting, ErrNotHost, ErrUndoNotOwner,
		ErrNothingToUndo, ErrNotEnoughPlayers, ErrRateLimited, ErrUnknownEvent,
	}
	seen := map[string]bool{}
	for _, s := range sentinels {
		require.NotEmpty(t, s.Code)
		assert.False(t, seen[s.Code], "duplicate wire code %q", s.Code)
		seen[s.Code] = true
	}
}
