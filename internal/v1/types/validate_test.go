package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", "Rose", "Rose", true},
		{"trims and collapses whitespace", "  Rose   Wright  ", "Rose Wright", true},
		{"nfkc folds fullwidth", "Ｒｏｓｅ", "Rose", true},
		{"apostrophe and dot", "D'Arcy Jr.", "D'Arcy Jr.", true},
		{"unicode letters", "Zoë", "Zoë", true},
		{"max length", strings.Repeat("a", 24), strings.Repeat("a", 24), true},
		{"too long", strings.Repeat("a", 25), "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"angle brackets rejected", "<script>", "", false},
		{"emoji rejected", "Rose🎲", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeDisplayName(tt.input)
			if !tt.ok {
				require.Error(t, err)
				assert.Equal(t, KindValidation, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DisplayName(tt.want), got)
		})
	}
}

func TestValidateAccountName(t *testing.T) {
	assert.NoError(t, ValidateAccountName("rose_wright"))
	assert.NoError(t, ValidateAccountName("abc"))
	assert.Error(t, ValidateAccountName("ab"), "below minimum length")
	assert.Error(t, ValidateAccountName(strings.Repeat("a", 25)))
	assert.Error(t, ValidateAccountName("rose wright"), "spaces not allowed")
	assert.Error(t, ValidateAccountName("rosé"), "ascii only")
}

func TestNormalizeRoomCode(t *testing.T) {
	tests := []struct {
		input string
		want  RoomID
		ok    bool
	}{
		{"game42", "GAME42", true},
		{"  ga-me 42 ", "GAME42", true},
		{"abc", "ABC", true},
		{"ab", "", false},
		{"!!", "", false},
		{"ABCDEFGHIJ", "ABCDEFGHIJ", true},
		{"ABCDEFGHIJK", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizeRoomCode(tt.input)
		if !tt.ok {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidateRoomID(t *testing.T) {
	assert.NoError(t, ValidateRoomID("room_a1b2c3d4"), "server-generated form")
	assert.NoError(t, ValidateRoomID("GAME42"), "normalized invite code")
	assert.Error(t, ValidateRoomID("game42"), "invite codes are stored uppercase")
	assert.Error(t, ValidateRoomID("room_xyz"), "suffix must be 8 hex chars")
	assert.Error(t, ValidateRoomID(""))
}

func TestNewServerRoomID(t *testing.T) {
	seen := map[RoomID]bool{}
	for range 32 {
		id := NewServerRoomID()
		require.NoError(t, ValidateRoomID(id))
		assert.False(t, seen[id], "ids are random")
		seen[id] = true
	}
}

func TestValidateGameType(t *testing.T) {
	assert.NoError(t, ValidateGameType("checkers"))
	assert.NoError(t, ValidateGameType("four-in-a-row_2"))
	assert.Error(t, ValidateGameType(""))
	assert.Error(t, ValidateGameType("no spaces"))
	assert.Error(t, ValidateGameType(GameID(strings.Repeat("a", 51))))
}
