package game

// Role is the viewer's in-game role for the current state. It is derived
// fresh on every state change; callers must not cache it across snapshots.
type Role struct {
	PlayerIndex int  `json:"playerIndex"`
	InGame      bool `json:"inGame"`
	IsClueGiver bool `json:"isClueGiver"`
	IsGuesser   bool `json:"isGuesser"`
}

// RoleOf matches a stable user id against the roster and the current
// clue-giver seat. In colors mode everybody both gives clues and guesses,
// so both flags are set for any seated player.
func RoleOf(s State, userID string) Role {
	idx := s.playerIndex(userID)
	if idx < 0 {
		return Role{PlayerIndex: -1}
	}

	r := Role{PlayerIndex: idx, InGame: true}
	if s.Mode == ModeColors {
		r.IsClueGiver = true
		r.IsGuesser = true
		return r
	}

	if idx == s.ClueGiverIndex%len(s.Players) {
		r.IsClueGiver = true
	} else {
		r.IsGuesser = true
	}
	return r
}
