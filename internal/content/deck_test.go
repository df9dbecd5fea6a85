package content

import "testing"

func testCards(n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = Card{ID: string(rune('a' + i)), Text: "card", Difficulty: DifficultyEasy}
	}
	return cards
}

func TestDeckDrawsWithoutRepeatsWithinLap(t *testing.T) {
	d := NewDeck(testCards(8), 1)
	seen := make(map[string]bool)
	for i := 0; i < 8; i++ {
		c, err := d.Draw(DifficultyAny)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if seen[c.ID] {
			t.Fatalf("draw %d repeated card %s within a lap", i, c.ID)
		}
		seen[c.ID] = true
	}
}

func TestDeckReshufflesWhenExhausted(t *testing.T) {
	d := NewDeck(testCards(3), 2)
	for i := 0; i < 12; i++ {
		if _, err := d.Draw(DifficultyAny); err != nil {
			t.Fatalf("draw %d after exhaustion: %v; pool exhaustion must reshuffle, not fail", i, err)
		}
	}
}

func TestDeckIsDeterministicForSeed(t *testing.T) {
	a := NewDeck(testCards(10), 42)
	b := NewDeck(testCards(10), 42)
	for i := 0; i < 20; i++ {
		ca, _ := a.Draw(DifficultyAny)
		cb, _ := b.Draw(DifficultyAny)
		if ca.ID != cb.ID {
			t.Fatalf("draw %d diverged: %s vs %s", i, ca.ID, cb.ID)
		}
	}
}

func TestDeckFallsBackWhenDifficultyMissing(t *testing.T) {
	d := NewDeck(testCards(4), 3) // all easy
	c, err := d.Draw(DifficultyHard)
	if err != nil {
		t.Fatalf("expected fallback draw, got error: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("fallback draw returned zero card")
	}
}

func TestDeckEmptyIsAnError(t *testing.T) {
	d := NewDeck(nil, 4)
	if _, err := d.Draw(DifficultyAny); err == nil {
		t.Fatalf("expected error drawing from an empty deck")
	}
}

func TestBuiltinDecksLoad(t *testing.T) {
	clue, err := ClueDeck(1)
	if err != nil {
		t.Fatalf("ClueDeck: %v", err)
	}
	if clue.Size() == 0 {
		t.Fatalf("clue deck is empty")
	}
	quiz, err := QuizDeck(1)
	if err != nil {
		t.Fatalf("QuizDeck: %v", err)
	}
	for i := 0; i < quiz.Size(); i++ {
		q, err := quiz.Draw(DifficultyAny)
		if err != nil {
			t.Fatalf("quiz draw: %v", err)
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.Answer {
				found = true
			}
		}
		if !found {
			t.Fatalf("question %s: answer %q not among options %v", q.ID, q.Answer, q.Options)
		}
	}
}
