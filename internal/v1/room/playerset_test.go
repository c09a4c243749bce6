package room

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

func seat(id types.PlayerID, name string, joined time.Time) PlayerRecord {
	return PlayerRecord{ID: id, DisplayName: name, JoinedAt: joined}
}

func TestPlayerSet_AddAndCapacity(t *testing.T) {
	s := NewPlayerSet(2, 2)
	now := time.Now()

	_, err := s.Add(seat("a", "Ada", now))
	require.NoError(t, err)
	_, err = s.Add(seat("b", "Bea", now))
	require.NoError(t, err)

	_, err = s.Add(seat("c", "Cal", now))
	assert.True(t, errors.Is(err, types.ErrRoomFull))
	assert.Equal(t, 2, s.Len())
}

func TestPlayerSet_AddIsIdempotent(t *testing.T) {
	s := NewPlayerSet(2, 4)
	now := time.Now()

	first, err := s.Add(seat("a", "Ada", now))
	require.NoError(t, err)

	again, err := s.Add(seat("a", "Renamed", now.Add(time.Minute)))
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, "Ada", again.DisplayName, "rejoin keeps the original record")
	assert.Equal(t, 1, s.Len())
}

func TestPlayerSet_RemovePreservesJoinOrder(t *testing.T) {
	s := NewPlayerSet(1, 4)
	now := time.Now()
	for _, id := range []types.PlayerID{"a", "b", "c"} {
		_, err := s.Add(seat(id, string(id), now))
		require.NoError(t, err)
	}

	removed := s.Remove("b")
	require.NotNil(t, removed)
	assert.Equal(t, types.PlayerID("b"), removed.ID)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, types.PlayerID("a"), list[0].ID)
	assert.Equal(t, types.PlayerID("c"), list[1].ID)

	first, ok := s.First()
	require.True(t, ok)
	assert.Equal(t, types.PlayerID("a"), first)

	assert.Nil(t, s.Remove("missing"))
}

func TestPlayerSet_ReadyToStart(t *testing.T) {
	s := NewPlayerSet(2, 4)
	now := time.Now()
	_, _ = s.Add(seat("a", "Ada", now))
	_, _ = s.Add(seat("b", "Bea", now))

	assert.False(t, s.ReadyToStart(), "nobody ready")

	_, err := s.SetReady("a", true)
	require.NoError(t, err)
	assert.False(t, s.ReadyToStart(), "one of two ready")

	_, err = s.SetReady("b", true)
	require.NoError(t, err)
	assert.True(t, s.ReadyToStart())

	rec, err := s.ToggleReady("b")
	require.NoError(t, err)
	assert.False(t, rec.Ready)
	assert.False(t, s.ReadyToStart())
}

func TestPlayerSet_ReadyBelowMinimum(t *testing.T) {
	s := NewPlayerSet(2, 4)
	_, _ = s.Add(seat("a", "Ada", time.Now()))
	_, err := s.SetReady("a", true)
	require.NoError(t, err)

	assert.False(t, s.ReadyToStart(), "all ready but below minimum seats")
}

func TestPlayerSet_UnknownPlayer(t *testing.T) {
	s := NewPlayerSet(2, 4)

	_, err := s.SetReady("ghost", true)
	assert.True(t, errors.Is(err, types.ErrUnknownPlayer))

	_, err = s.ToggleReady("ghost")
	assert.True(t, errors.Is(err, types.ErrUnknownPlayer))
}
