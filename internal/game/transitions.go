package game

import (
	"github.com/JoshOsborne1/partysync/internal/content"
)

type CommandType string

const (
	CmdStartTurn     CommandType = "StartTurn"
	CmdDealNext      CommandType = "DealNext"
	CmdMarkCorrect   CommandType = "MarkCorrect"
	CmdMarkIncorrect CommandType = "MarkIncorrect"
	CmdSkip          CommandType = "Skip"
	CmdAnswer        CommandType = "Answer"
	CmdSubmitColor   CommandType = "SubmitColor"
	CmdSubmitClue    CommandType = "SubmitClue"
	CmdSubmitGuess   CommandType = "SubmitGuess"
	CmdAdvancePhase  CommandType = "AdvancePhase"
	CmdTick          CommandType = "Tick"
)

// Command is one requested transition. Content draws are injected by the
// caller (the host loop owns the deck and its randomness), so Apply itself
// stays deterministic.
type Command struct {
	Type     CommandType
	PlayerID string
	TargetID string
	Option   string
	Clue     string
	Color    *content.Color
	Card     *content.Card
	Target   Phase
}

const baseCardPoints = 10

// Apply folds one command into the state and returns the successor. It is a
// total pure function over well-formed input; errors mean the command was
// not legal in the current phase and the caller should drop it. The input
// state is never mutated.
func Apply(s State, cmd Command) (State, error) {
	if s.Completed() {
		return s, ErrGameCompleted
	}

	switch cmd.Type {
	case CmdStartTurn:
		return applyStartTurn(s, cmd)
	case CmdDealNext:
		return applyDealNext(s, cmd)
	case CmdMarkCorrect:
		return applyCorrect(s, cmd.TargetID)
	case CmdMarkIncorrect, CmdSkip:
		return applyIncorrect(s)
	case CmdAnswer:
		return applyAnswer(s, cmd)
	case CmdSubmitColor:
		return applySubmitColor(s, cmd)
	case CmdSubmitClue:
		return applySubmitClue(s, cmd)
	case CmdSubmitGuess:
		return applySubmitGuess(s, cmd)
	case CmdAdvancePhase:
		return applyAdvancePhase(s, cmd)
	case CmdTick:
		return applyTick(s)
	default:
		return s, ErrUnsupportedCommand
	}
}

func applyStartTurn(s State, cmd Command) (State, error) {
	next := s.clone()

	switch s.Mode {
	case ModeColors:
		if s.Phase != PhaseWaiting && s.Phase != PhaseLeaderboard {
			return s, ErrWrongPhase
		}
		next.Phase = PhaseColorPick
		next.Rounds = freshRounds(next.Players)
		next.TimerRemaining = 0
		return next, nil

	default:
		if s.Phase != PhaseInstructions && s.Phase != PhaseRoundSummary {
			return s, ErrWrongPhase
		}
		next.Phase = PhasePlaying
		next.CurrentCard = cmd.Card
		next.TimerRemaining = s.Settings.TurnSeconds
		next.CardsInRound = 0
		next.History = nil
		return next, nil
	}
}

// applyDealNext swaps in the next drawn card mid-turn, after a card or
// question has been resolved.
func applyDealNext(s State, cmd Command) (State, error) {
	if s.Phase != PhasePlaying {
		return s, ErrWrongPhase
	}
	next := s.clone()
	next.CurrentCard = cmd.Card
	return next, nil
}

// applyCorrect credits the named player: base points plus time bonus plus a
// streak bonus for the run of corrects before this one. The bonus total is
// computed here, once, and travels in the snapshot; clients never rescore.
func applyCorrect(s State, targetID string) (State, error) {
	if s.Phase != PhasePlaying {
		return s, ErrWrongPhase
	}
	idx := s.playerIndex(targetID)
	if idx < 0 {
		return s, ErrUnknownPlayer
	}

	next := s.clone()
	p := &next.Players[idx]
	points := baseCardPoints + content.TimeBonus(s.TimerRemaining) + content.StreakBonus(p.Streak)
	p.Score += points
	p.Streak++
	next.CardsInRound++
	if s.CurrentCard != nil {
		next.History = append(next.History, HistoryEntry{
			Card:       *s.CurrentCard,
			PlayerID:   targetID,
			WasCorrect: true,
			Points:     points,
		})
	}
	return next, nil
}

// applyIncorrect records a miss or skip: streaks reset, scores untouched.
func applyIncorrect(s State) (State, error) {
	if s.Phase != PhasePlaying {
		return s, ErrWrongPhase
	}
	next := s.clone()
	// A skip breaks every guesser's run; only the reader sits out.
	for i := range next.Players {
		if i != s.ClueGiverIndex%len(s.Players) {
			next.Players[i].Streak = 0
		}
	}
	next.CardsInRound++
	if s.CurrentCard != nil {
		next.History = append(next.History, HistoryEntry{
			Card:       *s.CurrentCard,
			WasCorrect: false,
		})
	}
	return next, nil
}

// applyAnswer resolves a quiz answer from the acting player against the
// current question's canonical answer.
func applyAnswer(s State, cmd Command) (State, error) {
	if s.Mode != ModeQuiz || s.Phase != PhasePlaying || s.CurrentCard == nil {
		return s, ErrWrongPhase
	}
	idx := s.playerIndex(cmd.PlayerID)
	if idx < 0 {
		return s, ErrUnknownPlayer
	}
	if cmd.Option == s.CurrentCard.Answer {
		return applyCorrect(s, cmd.PlayerID)
	}
	next := s.clone()
	next.Players[idx].Streak = 0
	next.CardsInRound++
	next.History = append(next.History, HistoryEntry{
		Card:       *s.CurrentCard,
		PlayerID:   cmd.PlayerID,
		WasCorrect: false,
	})
	return next, nil
}

func applySubmitColor(s State, cmd Command) (State, error) {
	if s.Phase != PhaseColorPick {
		return s, ErrWrongPhase
	}
	r, ok := s.Rounds[cmd.PlayerID]
	if !ok {
		return s, ErrUnknownPlayer
	}
	if r.SubmittedColor {
		return s, ErrAlreadySubmitted
	}
	if cmd.Color == nil {
		return s, ErrUnsupportedCommand
	}

	next := s.clone()
	nr := next.Rounds[cmd.PlayerID]
	c := *cmd.Color
	nr.Secret = &c
	nr.SubmittedColor = true
	return autoAdvance(next), nil
}

func applySubmitClue(s State, cmd Command) (State, error) {
	if s.Phase != PhaseClue1 && s.Phase != PhaseClue2 {
		return s, ErrWrongPhase
	}
	r, ok := s.Rounds[cmd.PlayerID]
	if !ok {
		return s, ErrUnknownPlayer
	}
	if (s.Phase == PhaseClue1 && r.SubmittedClue1) || (s.Phase == PhaseClue2 && r.SubmittedClue2) {
		return s, ErrAlreadySubmitted
	}

	next := s.clone()
	nr := next.Rounds[cmd.PlayerID]
	nr.Clues = append(nr.Clues, cmd.Clue)
	if s.Phase == PhaseClue1 {
		nr.SubmittedClue1 = true
	} else {
		nr.SubmittedClue2 = true
	}
	return autoAdvance(next), nil
}

// applySubmitGuess records one guess at targetID's secret. A player's guess
// flag for the phase flips once their guesses cover every other player;
// later submits in guess-2 overwrite guess-1 values.
func applySubmitGuess(s State, cmd Command) (State, error) {
	if s.Phase != PhaseGuess1 && s.Phase != PhaseGuess2 {
		return s, ErrWrongPhase
	}
	if _, ok := s.Rounds[cmd.PlayerID]; !ok {
		return s, ErrUnknownPlayer
	}
	if _, ok := s.Rounds[cmd.TargetID]; !ok || cmd.TargetID == cmd.PlayerID {
		return s, ErrUnknownPlayer
	}
	if cmd.Color == nil {
		return s, ErrUnsupportedCommand
	}

	next := s.clone()
	nr := next.Rounds[cmd.PlayerID]
	nr.Guesses[cmd.TargetID] = *cmd.Color
	if len(nr.Guesses) >= len(s.Players)-1 {
		if s.Phase == PhaseGuess1 {
			nr.SubmittedGuess1 = true
		} else {
			nr.SubmittedGuess2 = true
		}
	}
	return autoAdvance(next), nil
}

// applyAdvancePhase covers the two host-driven moves in the colors chain:
// the second-clue gate after guess-1 (target clue-2 or reveal) and leaving
// the reveal screen, which closes the round.
func applyAdvancePhase(s State, cmd Command) (State, error) {
	switch s.Phase {
	case PhaseGuess1:
		if !everySubmitted(s, func(r *PlayerRound) bool { return r.SubmittedGuess1 }) {
			return s, ErrWrongPhase
		}
		if cmd.Target != PhaseClue2 && cmd.Target != PhaseReveal {
			return s, ErrWrongPhase
		}
		if cmd.Target == PhaseReveal {
			return enterReveal(s), nil
		}
		next := s.clone()
		next.Phase = PhaseClue2
		return next, nil

	case PhaseReveal:
		return closeRound(s), nil

	default:
		return s, ErrWrongPhase
	}
}

// applyTick burns one second off the turn clock. Hitting zero is not an
// error: it forces the same transition a timeout action would.
func applyTick(s State) (State, error) {
	switch s.Phase {
	case PhasePlaying:
		next := s.clone()
		next.TimerRemaining--
		if next.TimerRemaining <= 0 {
			next.TimerRemaining = 0
			return advanceTurn(next), nil
		}
		return next, nil

	case PhaseGuess1, PhaseGuess2:
		if s.Settings.TurnSeconds <= 0 || s.TimerRemaining <= 0 {
			return s, ErrWrongPhase
		}
		next := s.clone()
		next.TimerRemaining--
		if next.TimerRemaining <= 0 {
			// Guess clock ran out: reveal with whatever guesses landed.
			return enterReveal(next), nil
		}
		return next, nil

	default:
		return s, ErrWrongPhase
	}
}

// advanceTurn rotates the reader seat and, once everyone has read this
// round, moves to the next round or ends the game.
func advanceTurn(s State) State {
	next := s.clone()
	next.ClueGiverIndex = (next.ClueGiverIndex + 1) % len(next.Players)
	next.TurnsTaken++
	if next.TurnsTaken >= len(next.Players) {
		next.TurnsTaken = 0
		next.CurrentRound++
	}
	if next.CurrentRound > next.MaxRounds {
		next.Phase = terminalPhase(next.Mode)
	} else {
		next.Phase = PhaseRoundSummary
	}
	return next
}

// autoAdvance applies the liveness rule: the last required submission in a
// phase moves the chain forward with no host click. The one exception is
// guess-1, where the host gate (second clue or straight to reveal) holds.
func autoAdvance(s State) State {
	switch s.Phase {
	case PhaseColorPick:
		if everySubmitted(s, func(r *PlayerRound) bool { return r.SubmittedColor }) {
			s.Phase = PhaseClue1
		}
	case PhaseClue1:
		if everySubmitted(s, func(r *PlayerRound) bool { return r.SubmittedClue1 }) {
			s.Phase = PhaseGuess1
			s.TimerRemaining = s.Settings.TurnSeconds
		}
	case PhaseClue2:
		if everySubmitted(s, func(r *PlayerRound) bool { return r.SubmittedClue2 }) {
			s.Phase = PhaseGuess2
			s.TimerRemaining = s.Settings.TurnSeconds
		}
	case PhaseGuess2:
		if everySubmitted(s, func(r *PlayerRound) bool { return r.SubmittedGuess2 }) {
			return enterReveal(s)
		}
	}
	return s
}

func everySubmitted(s State, done func(*PlayerRound) bool) bool {
	for _, p := range s.Players {
		r, ok := s.Rounds[p.ID]
		if !ok || !done(r) {
			return false
		}
	}
	return true
}

// enterReveal scores every recorded guess against its target's secret with
// the same curve the reveal screen displays, and banks the points.
func enterReveal(s State) State {
	next := s.clone()
	next.Phase = PhaseReveal
	next.TimerRemaining = 0
	for i, guesser := range next.Players {
		r := next.Rounds[guesser.ID]
		if r == nil {
			continue
		}
		for targetID, guess := range r.Guesses {
			target := next.Rounds[targetID]
			if target == nil || target.Secret == nil {
				continue
			}
			pts := content.GuessScore(*target.Secret, guess)
			r.GuessScores[targetID] = pts
			next.Players[i].Score += pts
		}
	}
	return next
}

// closeRound leaves the reveal screen: bump the round counter and either
// show the leaderboard or finish the game.
func closeRound(s State) State {
	next := s.clone()
	next.CurrentRound++
	if next.CurrentRound > next.MaxRounds {
		next.Phase = PhaseFinished
	} else {
		next.Phase = PhaseLeaderboard
	}
	return next
}
