// Package elo implements the rating math behind adaptive selection. Both the
// user and the question are rating participants: a correct answer is a win
// for the user and a loss for the question's difficulty.
package elo

import "math"

const (
	// DefaultRating is the starting point for users and questions alike.
	DefaultRating = 1000.0
	// RatingFloor keeps ratings out of the degenerate low range where
	// selection bias would run away.
	RatingFloor = 100.0
	// maxRatingDiff clamps the exponent argument so extreme mismatches do
	// not underflow the expected score to exactly zero or one.
	maxRatingDiff = 400.0
)

// Outcome values from participant A's perspective.
const (
	Loss = 0.0
	Win  = 1.0
)

// Updater computes new ratings from an outcome. Zero-value K factors are not
// usable; construct with NewUpdater or fill all fields.
type Updater struct {
	UserK     float64
	QuestionK float64
	// StabilizeAfter freezes a question's difficulty once it has this many
	// recorded answers. Zero means questions never freeze.
	StabilizeAfter int
}

func NewUpdater() Updater {
	return Updater{UserK: 32, QuestionK: 8, StabilizeAfter: 100}
}

// ExpectedScore returns the probability that a participant rated a beats a
// participant rated b.
func ExpectedScore(a, b float64) float64 {
	diff := b - a
	if diff > maxRatingDiff {
		diff = maxRatingDiff
	} else if diff < -maxRatingDiff {
		diff = -maxRatingDiff
	}
	return 1.0 / (1.0 + math.Pow(10, diff/400.0))
}

// Update returns participant A's new rating given its counterpart's rating
// and the outcome (Win or Loss) from A's perspective. The result never drops
// below RatingFloor.
func Update(a, b, outcome, k float64) float64 {
	updated := a + k*(outcome-ExpectedScore(a, b))
	if updated < RatingFloor {
		updated = RatingFloor
	}
	return updated
}

// UpdatePair applies the update twice per answer: once for the user against
// the question and once for the question against the user with the
// complementary outcome. timesAnswered is the question's answer count before
// this answer; past StabilizeAfter the question's difficulty no longer moves.
func (u Updater) UpdatePair(userRating, questionRating float64, correct bool, timesAnswered int) (newUser, newQuestion float64) {
	outcome := Loss
	if correct {
		outcome = Win
	}
	newUser = Update(userRating, questionRating, outcome, u.UserK)

	newQuestion = questionRating
	if u.StabilizeAfter <= 0 || timesAnswered < u.StabilizeAfter {
		newQuestion = Update(questionRating, userRating, Win-outcome, u.QuestionK)
	}
	return newUser, newQuestion
}

// PassProbability estimates the chance a user at the given rating would pass
// an exam whose passing performance corresponds to passRating.
func PassProbability(rating, passRating float64) float64 {
	return ExpectedScore(rating, passRating)
}
