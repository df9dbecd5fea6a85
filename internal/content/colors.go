package content

import "math"

// Color is a point in the 8-bit RGB cube. Guess scoring treats the cube as
// plain Euclidean space; good enough for a party game, and cheap.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// maxScoreDistance is where the score curve hits zero. The cube diagonal is
// ~441.7, so guesses in the opposite corner region all score 0.
const maxScoreDistance = 300.0

func Distance(a, b Color) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Score maps a distance to 0..100, linearly: 100 at zero distance, 0 at or
// beyond maxScoreDistance. The host computes this once and ships it in the
// snapshot; the reveal screen must show the same number.
func Score(d float64) int {
	if d <= 0 {
		return 100
	}
	if d >= maxScoreDistance {
		return 0
	}
	return int(math.Round(100 * (1 - d/maxScoreDistance)))
}

// GuessScore scores one player's guess against the secret color.
func GuessScore(secret, guess Color) int {
	return Score(Distance(secret, guess))
}

// TimeBonus rewards answering with time to spare: one point per 10 seconds
// remaining on the turn clock.
func TimeBonus(remainingSec int) int {
	if remainingSec <= 0 {
		return 0
	}
	return remainingSec / 10
}

// StreakBonus caps out at 5 so a long run doesn't snowball.
func StreakBonus(streak int) int {
	if streak < 0 {
		return 0
	}
	if streak > 5 {
		return 5
	}
	return streak
}
