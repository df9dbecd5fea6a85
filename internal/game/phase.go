package game

// Phase is the current stage of the round state machine. Exactly one phase
// is active at a time; it decides which commands are legal and what the UI
// renders.
type Phase string

const (
	// Simple chain (cards, quiz).
	PhaseInstructions Phase = "instructions"
	PhasePlaying      Phase = "playing"
	PhaseRoundSummary Phase = "round-summary"
	PhaseGameOver     Phase = "game-over"

	// Rich chain (colors).
	PhaseWaiting     Phase = "waiting"
	PhaseColorPick   Phase = "color-pick"
	PhaseClue1       Phase = "clue-1"
	PhaseGuess1      Phase = "guess-1"
	PhaseClue2       Phase = "clue-2"
	PhaseGuess2      Phase = "guess-2"
	PhaseReveal      Phase = "reveal"
	PhaseLeaderboard Phase = "leaderboard"
	PhaseFinished    Phase = "finished"
)

func firstPhase(mode Mode) Phase {
	if mode == ModeColors {
		return PhaseWaiting
	}
	return PhaseInstructions
}

// terminalPhase is where the game lands once CurrentRound > MaxRounds.
func terminalPhase(mode Mode) Phase {
	if mode == ModeColors {
		return PhaseFinished
	}
	return PhaseGameOver
}
