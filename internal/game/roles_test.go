package game

import "testing"

func TestRoleOfCardGame(t *testing.T) {
	s := cardState(t, threePlayers(), Settings{MaxRounds: 2, TurnSeconds: 30})

	cases := []struct {
		name      string
		index     int
		userID    string
		clueGiver bool
		guesser   bool
		inGame    bool
	}{
		{name: "reader seat", index: 0, userID: "a", clueGiver: true, inGame: true},
		{name: "guesser seat", index: 0, userID: "b", guesser: true, inGame: true},
		{name: "rotated reader", index: 1, userID: "b", clueGiver: true, inGame: true},
		{name: "spectator", index: 0, userID: "nobody"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s.ClueGiverIndex = tc.index
			r := RoleOf(s, tc.userID)
			if r.IsClueGiver != tc.clueGiver || r.IsGuesser != tc.guesser || r.InGame != tc.inGame {
				t.Fatalf("RoleOf(%s) with index %d = %+v", tc.userID, tc.index, r)
			}
		})
	}
}

func TestRoleOfColorsEverybodyActs(t *testing.T) {
	s := colorState(t, threePlayers(), Settings{MaxRounds: 2, TurnSeconds: 30})
	for _, id := range []string{"a", "b", "c"} {
		r := RoleOf(s, id)
		if !r.IsClueGiver || !r.IsGuesser {
			t.Fatalf("RoleOf(%s) = %+v; colors mode has no fixed reader", id, r)
		}
	}
}

// Role is derived, not cached: the same user flips roles as the seat moves.
func TestRoleTracksTurnRotation(t *testing.T) {
	s := cardState(t, threePlayers(), Settings{MaxRounds: 2, TurnSeconds: 30})
	s = startTurn(t, s)
	if !RoleOf(s, "a").IsClueGiver {
		t.Fatalf("A should read first")
	}
	s.TimerRemaining = 1
	s = mustApply(t, s, Command{Type: CmdTick})
	if RoleOf(s, "a").IsClueGiver {
		t.Fatalf("A still reads after rotation")
	}
	if !RoleOf(s, "b").IsClueGiver {
		t.Fatalf("B should read after rotation")
	}
}
