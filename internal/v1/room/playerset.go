package room

import (
	"time"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// PlayerRecord is the per-room state of one seated player.
type PlayerRecord struct {
	ID          types.PlayerID
	DisplayName string
	Ready       bool
	Metadata    map[string]string
	JoinedAt    time.Time
	Role        string
}

// PlayerSet is an ordered mapping of player id to record with capacity
// enforcement. It carries no lock of its own: it is owned by a Room and is
// only touched under the room lock.
type PlayerSet struct {
	min     int
	max     int
	order   []types.PlayerID
	records map[types.PlayerID]*PlayerRecord
}

// NewPlayerSet creates a set with the given capacity bounds.
func NewPlayerSet(min, max int) *PlayerSet {
	return &PlayerSet{
		min:     min,
		max:     max,
		records: make(map[types.PlayerID]*PlayerRecord),
	}
}

// Add inserts a player at the tail. Adding an id that is already present is
// idempotent and returns the existing record.
func (s *PlayerSet) Add(rec PlayerRecord) (*PlayerRecord, error) {
	if rec.ID == "" {
		return nil, types.E(types.KindValidation, "missing_player_id", "player id is required")
	}
	if existing, ok := s.records[rec.ID]; ok {
		return existing, nil
	}
	if len(s.records) >= s.max {
		return nil, types.ErrRoomFull
	}
	stored := rec
	s.records[rec.ID] = &stored
	s.order = append(s.order, rec.ID)
	return &stored, nil
}

// Remove deletes a player and returns the prior record, or nil if absent.
// Survivor order is preserved.
func (s *PlayerSet) Remove(id types.PlayerID) *PlayerRecord {
	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	delete(s.records, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return rec
}

// SetReady sets the ready flag and returns the record.
func (s *PlayerSet) SetReady(id types.PlayerID, ready bool) (*PlayerRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, types.ErrUnknownPlayer
	}
	rec.Ready = ready
	return rec, nil
}

// ToggleReady flips the ready flag and returns the record.
func (s *PlayerSet) ToggleReady(id types.PlayerID) (*PlayerRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, types.ErrUnknownPlayer
	}
	rec.Ready = !rec.Ready
	return rec, nil
}

// ReadyToStart reports whether enough players are seated and all are ready.
func (s *PlayerSet) ReadyToStart() bool {
	if len(s.records) < s.min {
		return false
	}
	for _, rec := range s.records {
		if !rec.Ready {
			return false
		}
	}
	return true
}

// Get returns the record for an id.
func (s *PlayerSet) Get(id types.PlayerID) (*PlayerRecord, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

// List returns record copies ordered by join time.
func (s *PlayerSet) List() []PlayerRecord {
	out := make([]PlayerRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.records[id])
	}
	return out
}

// First returns the earliest-joined player id. Used for host promotion.
func (s *PlayerSet) First() (types.PlayerID, bool) {
	if len(s.order) == 0 {
		return "", false
	}
	return s.order[0], true
}

// Len reports the number of seated players.
func (s *PlayerSet) Len() int { return len(s.records) }

// Min returns the minimum player count required to start.
func (s *PlayerSet) Min() int { return s.min }

// Max returns the seat capacity.
func (s *PlayerSet) Max() int { return s.max }

// clone returns a deep copy for compensating rollback.
func (s *PlayerSet) clone() *PlayerSet {
	cp := &PlayerSet{
		min:     s.min,
		max:     s.max,
		order:   append([]types.PlayerID(nil), s.order...),
		records: make(map[types.PlayerID]*PlayerRecord, len(s.records)),
	}
	for id, rec := range s.records {
		dup := *rec
		cp.records[id] = &dup
	}
	return cp
}
