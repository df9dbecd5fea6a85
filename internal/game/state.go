package game

import (
	"errors"

	"github.com/JoshOsborne1/partysync/internal/content"
)

var ErrNotEnoughPlayers = errors.New("need at least two players")
var ErrWrongPhase = errors.New("command not valid in current phase")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrAlreadySubmitted = errors.New("already submitted this phase")
var ErrGameCompleted = errors.New("game already completed")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Mode string

const (
	ModeCards  Mode = "cards"
	ModeQuiz   Mode = "quiz"
	ModeColors Mode = "colors"
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Streak int    `json:"streak"`
	IsHost bool   `json:"isHost"`
}

type Settings struct {
	MaxRounds   int                `json:"maxRounds"`
	TurnSeconds int                `json:"turnSeconds"`
	Difficulty  content.Difficulty `json:"difficulty,omitempty"`
}

// HistoryEntry records one resolved card/question within the current turn.
type HistoryEntry struct {
	Card       content.Card `json:"card"`
	PlayerID   string       `json:"playerId,omitempty"`
	WasCorrect bool         `json:"wasCorrect"`
	Points     int          `json:"points"`
}

// PlayerRound is one player's per-round submission state in colors mode.
// Flags only ever go false -> true within a round; StartTurn resets them.
type PlayerRound struct {
	SubmittedColor  bool                     `json:"hasSubmittedColor"`
	SubmittedClue1  bool                     `json:"hasSubmittedClue1"`
	SubmittedClue2  bool                     `json:"hasSubmittedClue2"`
	SubmittedGuess1 bool                     `json:"hasSubmittedGuess1"`
	SubmittedGuess2 bool                     `json:"hasSubmittedGuess2"`
	Secret          *content.Color           `json:"secret,omitempty"`
	Clues           []string                 `json:"clues,omitempty"`
	Guesses         map[string]content.Color `json:"guesses,omitempty"`
	GuessScores     map[string]int           `json:"guessScores,omitempty"`
}

// State is the canonical snapshot for one room's active game. It is a plain
// value: transitions copy it, the host broadcasts it verbatim, and every
// receiver replaces its local copy wholesale.
type State struct {
	Mode           Mode                    `json:"mode"`
	Phase          Phase                   `json:"phase"`
	Players        []Player                `json:"players"`
	CurrentRound   int                     `json:"currentRound"`
	MaxRounds      int                     `json:"maxRounds"`
	ClueGiverIndex int                     `json:"clueGiverIndex"`
	TurnsTaken     int                     `json:"turnsTaken"`
	TimerRemaining int                     `json:"timerRemaining"`
	Settings       Settings                `json:"settings"`
	CurrentCard    *content.Card           `json:"currentCard,omitempty"`
	CardsInRound   int                     `json:"cardsInRound"`
	History        []HistoryEntry          `json:"history,omitempty"`
	Rounds         map[string]*PlayerRound `json:"rounds,omitempty"`
}

// NewState builds the initial snapshot: first phase of the mode's chain,
// round 1, all scores zero. Player order is taken as given and drives turn
// rotation from then on.
func NewState(mode Mode, players []Player, settings Settings) (State, error) {
	if len(players) < 2 {
		return State{}, ErrNotEnoughPlayers
	}
	if settings.MaxRounds <= 0 {
		settings.MaxRounds = 3
	}
	if settings.TurnSeconds <= 0 {
		settings.TurnSeconds = 60
	}

	s := State{
		Mode:         mode,
		Phase:        firstPhase(mode),
		Players:      append([]Player(nil), players...),
		CurrentRound: 1,
		MaxRounds:    settings.MaxRounds,
		Settings:     settings,
	}
	for i := range s.Players {
		s.Players[i].Score = 0
		s.Players[i].Streak = 0
	}
	if mode == ModeColors {
		s.Rounds = freshRounds(s.Players)
	}
	return s, nil
}

func freshRounds(players []Player) map[string]*PlayerRound {
	rounds := make(map[string]*PlayerRound, len(players))
	for _, p := range players {
		rounds[p.ID] = &PlayerRound{
			Guesses:     make(map[string]content.Color),
			GuessScores: make(map[string]int),
		}
	}
	return rounds
}

// clone deep-copies the state so transitions never alias the input's maps
// and slices.
func (s State) clone() State {
	out := s
	out.Players = append([]Player(nil), s.Players...)
	out.History = append([]HistoryEntry(nil), s.History...)
	if s.CurrentCard != nil {
		card := *s.CurrentCard
		out.CurrentCard = &card
	}
	if s.Rounds != nil {
		out.Rounds = make(map[string]*PlayerRound, len(s.Rounds))
		for id, r := range s.Rounds {
			cp := *r
			cp.Clues = append([]string(nil), r.Clues...)
			cp.Guesses = make(map[string]content.Color, len(r.Guesses))
			for k, v := range r.Guesses {
				cp.Guesses[k] = v
			}
			cp.GuessScores = make(map[string]int, len(r.GuessScores))
			for k, v := range r.GuessScores {
				cp.GuessScores[k] = v
			}
			if r.Secret != nil {
				sec := *r.Secret
				cp.Secret = &sec
			}
			out.Rounds[id] = &cp
		}
	}
	return out
}

func (s State) playerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ClueGiver is the player whose turn it is to read/give clues.
func (s State) ClueGiver() Player {
	return s.Players[s.ClueGiverIndex%len(s.Players)]
}

// Completed reports whether the game has reached its terminal phase.
func (s State) Completed() bool {
	return s.Phase == PhaseGameOver || s.Phase == PhaseFinished
}
