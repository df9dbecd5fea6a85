package protocol

// Action names carried in player_action payloads. The host maps them onto
// state-machine commands; anything not phase-legal is dropped there.
const (
	ActionStartTurn     = "start_turn"
	ActionMarkCorrect   = "mark_correct"
	ActionMarkIncorrect = "mark_incorrect"
	ActionSkip          = "skip"
	ActionAnswer        = "answer"
	ActionSubmitColor   = "submit_color"
	ActionSubmitClue    = "submit_clue"
	ActionSubmitGuess   = "submit_guess"
	ActionAdvancePhase  = "advance_phase"
)
