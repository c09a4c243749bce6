package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

type fakeState struct {
	Turn     types.PlayerID `json:"turn"`
	Terminal bool           `json:"terminal"`
	WinID    types.PlayerID `json:"winnerId,omitempty"`
	WinName  string         `json:"winnerName,omitempty"`
	Value    int            `json:"value"`
}

func (s fakeState) CurrentPlayer() types.PlayerID { return s.Turn }
func (s fakeState) IsTerminal() bool              { return s.Terminal }
func (s fakeState) Winner() (types.PlayerID, string, bool) {
	if !s.Terminal || s.WinID == "" {
		return "", "", false
	}
	return s.WinID, s.WinName, true
}

func TestStateContainer_VersionStartsAtZero(t *testing.T) {
	c := NewStateContainer(fakeState{Turn: "p1"})

	state, version := c.Snapshot()
	assert.Equal(t, uint64(0), version)
	assert.Equal(t, types.PlayerID("p1"), state.CurrentPlayer())
}

func TestStateContainer_ReplaceIncrementsVersion(t *testing.T) {
	c := NewStateContainer(fakeState{Turn: "p1"})

	for i := 1; i <= 5; i++ {
		change := c.Replace(fakeState{Turn: "p2", Value: i}, nil)
		assert.Equal(t, uint64(i), change.Version)
	}

	_, version := c.Snapshot()
	assert.Equal(t, uint64(5), version)
}

func TestStateContainer_PublishesChanges(t *testing.T) {
	c := NewStateContainer(fakeState{Turn: "p1"})

	c.Replace(fakeState{Turn: "p2", Value: 1}, map[string]any{"k": "v"})
	c.Replace(fakeState{Turn: "p1", Value: 2}, nil)

	first := <-c.StateChanges()
	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, "v", first.Context["k"])

	second := <-c.StateChanges()
	assert.Equal(t, uint64(2), second.Version)
	assert.Equal(t, types.PlayerID("p1"), second.State.CurrentPlayer())
}

func TestStateContainer_RoundEnds(t *testing.T) {
	c := NewStateContainer(fakeState{Turn: "p1"})

	c.EmitRoundEnd(map[string]any{"winnerId": "p1"})

	re := <-c.RoundEnds()
	payload, ok := re.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", payload["winnerId"])
}

func TestStateContainer_CloseIsIdempotent(t *testing.T) {
	c := NewStateContainer(fakeState{Turn: "p1"})

	c.Close()
	c.Close()

	_, ok := <-c.StateChanges()
	assert.False(t, ok)
	_, ok = <-c.RoundEnds()
	assert.False(t, ok)
}

func TestStateContainer_ReplaceAfterCloseDoesNotPublish(t *testing.T) {
	c := NewStateContainer(fakeState{Turn: "p1"})
	c.Close()

	// Version still advances, but nothing is published to the closed stream.
	change := c.Replace(fakeState{Turn: "p2"}, nil)
	assert.Equal(t, uint64(1), change.Version)

	_, ok := <-c.StateChanges()
	assert.False(t, ok)
}
