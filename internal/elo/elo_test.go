package elo

import (
	"math"
	"testing"
)

func TestExpectedScore_EqualRatings(t *testing.T) {
	if got := ExpectedScore(1000, 1000); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected 0.5 for equal ratings, got %f", got)
	}
}

func TestExpectedScore_ClampsExtremeDifferences(t *testing.T) {
	// A million-point mismatch must still yield a non-degenerate expectation.
	low := ExpectedScore(100, 1_000_100)
	if low <= 0 {
		t.Errorf("expected score underflowed to %f", low)
	}
	if clamped := ExpectedScore(1000, 1400); low != clamped {
		t.Errorf("difference beyond 400 should clamp: got %f, want %f", low, clamped)
	}
	high := ExpectedScore(1_000_100, 100)
	if high >= 1 {
		t.Errorf("expected score overflowed to %f", high)
	}
}

func TestUpdate_MovesTowardOutcomeBoundedByK(t *testing.T) {
	const k = 32.0
	cases := []struct {
		a, b    float64
		outcome float64
	}{
		{1000, 1000, Win},
		{1000, 1000, Loss},
		{800, 1300, Win},
		{1300, 800, Loss},
		{1200, 1199.5, Win},
	}
	for _, c := range cases {
		got := Update(c.a, c.b, c.outcome, k)
		delta := got - c.a
		if c.outcome == Win && delta <= 0 {
			t.Errorf("Update(%f,%f,win) did not increase rating: delta %f", c.a, c.b, delta)
		}
		if c.outcome == Loss && delta >= 0 {
			t.Errorf("Update(%f,%f,loss) did not decrease rating: delta %f", c.a, c.b, delta)
		}
		if math.Abs(delta) > k {
			t.Errorf("Update(%f,%f,%v) moved by %f, beyond K=%f", c.a, c.b, c.outcome, delta, k)
		}
	}
}

func TestUpdate_Symmetry(t *testing.T) {
	const k = 32.0
	a, b := 1120.0, 980.0
	gain := Update(a, b, Win, k) - a
	loss := b - Update(b, a, Loss, k)
	if math.Abs(gain-loss) > 1e-9 {
		t.Errorf("winner gain %f != loser loss %f", gain, loss)
	}
}

func TestUpdate_FloorClamp(t *testing.T) {
	if got := Update(RatingFloor+1, 2000, Loss, 32); got < RatingFloor {
		t.Errorf("rating fell below floor: %f", got)
	}
}

func TestUpdatePair_BaselineCorrectAnswer(t *testing.T) {
	// User at 1000 answers a 1000-rated question correctly with K=32:
	// expected = 0.5, new rating = 1000 + 32*(1-0.5) = 1016.
	u := NewUpdater()
	newUser, newQuestion := u.UpdatePair(1000, 1000, true, 0)
	if math.Abs(newUser-1016) > 1e-9 {
		t.Errorf("new user rating = %f, want 1016", newUser)
	}
	// Question moves the other way with its smaller K: 1000 + 8*(0-0.5) = 996.
	if math.Abs(newQuestion-996) > 1e-9 {
		t.Errorf("new question rating = %f, want 996", newQuestion)
	}
}

func TestUpdatePair_QuestionFreezesAfterStabilization(t *testing.T) {
	u := NewUpdater()
	_, newQuestion := u.UpdatePair(1000, 1000, true, u.StabilizeAfter)
	if newQuestion != 1000 {
		t.Errorf("stabilized question moved to %f", newQuestion)
	}
	_, stillMoving := u.UpdatePair(1000, 1000, true, u.StabilizeAfter-1)
	if stillMoving == 1000 {
		t.Error("question below stabilization threshold did not move")
	}
}

func TestPassProbability_Monotonic(t *testing.T) {
	prev := -1.0
	for rating := 600.0; rating <= 1400; rating += 100 {
		p := PassProbability(rating, 900)
		if p <= prev {
			t.Fatalf("pass probability not increasing at rating %f: %f <= %f", rating, p, prev)
		}
		prev = p
	}
}
