package types

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identifier validation. These patterns are part of the wire contract and
// must not drift: clients, the browser UI, and the server all agree on them.
var (
	displayNamePattern  = regexp.MustCompile(`^[\p{L}\p{N} _'’.-]{1,24}$`)
	accountNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{3,24}$`)
	gameTypePattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)
	serverRoomIDPattern = regexp.MustCompile(`^[A-Za-z]+_[A-Fa-f0-9]{8}$`)
	roomCodeStrip       = regexp.MustCompile(`[^A-Z0-9]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// SanitizeDisplayName normalizes a client-supplied display name: NFKC,
// whitespace runs collapsed to a single space, trimmed. Returns a validation
// error when the result does not match the allowed charset or length.
func SanitizeDisplayName(raw string) (DisplayName, error) {
	name := norm.NFKC.String(raw)
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if !displayNamePattern.MatchString(name) {
		return "", E(KindValidation, "invalid_display_name", "display name must be 1-24 letters, digits, spaces or _'’.-")
	}
	return DisplayName(name), nil
}

// ValidateAccountName checks an account handle supplied by the auth boundary.
func ValidateAccountName(name string) error {
	if !accountNamePattern.MatchString(name) {
		return E(KindValidation, "invalid_account_name", "account name must be 3-24 chars of [A-Za-z0-9_-]")
	}
	return nil
}

// NormalizeRoomCode uppercases a client-supplied invite code, strips
// everything outside [A-Z0-9], and enforces the 3-10 char length bound.
func NormalizeRoomCode(raw string) (RoomID, error) {
	code := roomCodeStrip.ReplaceAllString(strings.ToUpper(raw), "")
	if len(code) < 3 || len(code) > 10 {
		return "", E(KindValidation, "invalid_room_code", "room code must normalize to 3-10 chars of [A-Z0-9]")
	}
	return RoomID(code), nil
}

// ValidateRoomID accepts either a normalized invite code or a
// server-generated id.
func ValidateRoomID(id RoomID) error {
	s := string(id)
	if serverRoomIDPattern.MatchString(s) {
		return nil
	}
	if code, err := NormalizeRoomCode(s); err == nil && string(code) == s {
		return nil
	}
	return E(KindValidation, "invalid_room_id", "room id is neither an invite code nor a server id")
}

// ValidateGameType checks the charset of a requested game id. Existence in
// the registry is checked separately by the room manager.
func ValidateGameType(id GameID) error {
	if !gameTypePattern.MatchString(string(id)) {
		return E(KindValidation, "invalid_game_type", "game type must be 1-50 chars of [A-Za-z0-9_-]")
	}
	return nil
}
