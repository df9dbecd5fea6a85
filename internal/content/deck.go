package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
)

type Difficulty string

const (
	DifficultyAny    Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Card is one drawable content item: a clue card, or a quiz question with
// options and a canonical answer.
type Card struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Forbidden  []string   `json:"forbidden,omitempty"`
	Options    []string   `json:"options,omitempty"`
	Answer     string     `json:"answer,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

// Deck draws cards uniformly from the not-yet-seen pool. When the pool runs
// dry it forgets what was seen and starts another lap — running out of
// content is a reshuffle, never an error.
type Deck struct {
	cards []Card
	seen  map[string]bool
	rng   *rand.Rand
}

// NewDeck seeds the deck's own RNG so draws are reproducible in tests.
func NewDeck(cards []Card, seed int64) *Deck {
	return &Deck{
		cards: cards,
		seen:  make(map[string]bool),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (d *Deck) Size() int { return len(d.cards) }

// Remaining reports how many unseen cards match the difficulty this lap.
func (d *Deck) Remaining(diff Difficulty) int {
	n := 0
	for _, c := range d.cards {
		if !d.seen[c.ID] && matches(c, diff) {
			n++
		}
	}
	return n
}

// Draw picks a random unseen card for the difficulty. If the lap is
// exhausted the seen-set resets and the draw retries against the full pool;
// if nothing in the deck matches the difficulty at all, the filter is
// dropped rather than failing.
func (d *Deck) Draw(diff Difficulty) (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, fmt.Errorf("draw from empty deck")
	}

	pool := d.unseen(diff)
	if len(pool) == 0 {
		d.seen = make(map[string]bool)
		pool = d.unseen(diff)
	}
	if len(pool) == 0 {
		// No card of this difficulty exists; any card beats no card.
		pool = d.unseen(DifficultyAny)
	}

	c := pool[d.rng.Intn(len(pool))]
	d.seen[c.ID] = true
	return c, nil
}

func (d *Deck) unseen(diff Difficulty) []Card {
	var pool []Card
	for _, c := range d.cards {
		if !d.seen[c.ID] && matches(c, diff) {
			pool = append(pool, c)
		}
	}
	return pool
}

func matches(c Card, diff Difficulty) bool {
	return diff == DifficultyAny || c.Difficulty == diff || c.Difficulty == DifficultyAny
}

//go:embed decks/cards.json decks/questions.json
var deckFS embed.FS

func loadCards(name string) ([]Card, error) {
	raw, err := deckFS.ReadFile("decks/" + name)
	if err != nil {
		return nil, fmt.Errorf("read deck %s: %w", name, err)
	}
	var cards []Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("parse deck %s: %w", name, err)
	}
	return cards, nil
}

// ClueDeck is the built-in card-clue deck.
func ClueDeck(seed int64) (*Deck, error) {
	cards, err := loadCards("cards.json")
	if err != nil {
		return nil, err
	}
	return NewDeck(cards, seed), nil
}

// QuizDeck is the built-in multiple-choice question deck.
func QuizDeck(seed int64) (*Deck, error) {
	cards, err := loadCards("questions.json")
	if err != nil {
		return nil, err
	}
	return NewDeck(cards, seed), nil
}
