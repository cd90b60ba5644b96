package srs

import (
	"testing"
	"time"
)

func TestNewItem_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := NewItem("user-1", 42, "DAX CALCULATE", "auto", now)
	if item.IntervalHours != BaseIntervalHours {
		t.Errorf("interval = %d, want %d", item.IntervalHours, BaseIntervalHours)
	}
	if item.EaseFactor != DefaultEase {
		t.Errorf("ease = %f, want %f", item.EaseFactor, DefaultEase)
	}
	if !item.NextReviewAt.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("next review at %v, want %v", item.NextReviewAt, now.Add(24*time.Hour))
	}
}

func TestApply_IntervalGrowsStrictlyWithConsecutiveCorrect(t *testing.T) {
	now := time.Now()
	item := NewItem("user-1", 1, "", "auto", now)

	Apply(&item, true, now)
	afterOne := item.IntervalHours
	Apply(&item, true, now)
	afterTwo := item.IntervalHours

	if afterOne <= BaseIntervalHours {
		t.Errorf("interval after first correct = %d, expected growth past %d", afterOne, BaseIntervalHours)
	}
	if afterTwo <= afterOne {
		t.Errorf("interval after second correct = %d, not strictly larger than %d", afterTwo, afterOne)
	}
	if item.Repetitions != 2 {
		t.Errorf("repetitions = %d, want 2", item.Repetitions)
	}
}

func TestApply_WrongAnswerResetsToFloor(t *testing.T) {
	now := time.Now()
	item := NewItem("user-1", 1, "", "auto", now)
	Apply(&item, true, now)
	Apply(&item, true, now)

	Apply(&item, false, now)
	if item.IntervalHours != BaseIntervalHours {
		t.Errorf("interval after wrong answer = %d, want %d", item.IntervalHours, BaseIntervalHours)
	}
	if !item.NextReviewAt.Equal(now.Add(BaseIntervalHours * time.Hour)) {
		t.Errorf("next review not rescheduled to base interval")
	}
}

func TestApply_EaseStaysWithinBounds(t *testing.T) {
	now := time.Now()
	item := NewItem("user-1", 1, "", "auto", now)

	for i := 0; i < 20; i++ {
		Apply(&item, false, now)
	}
	if item.EaseFactor < MinEase {
		t.Errorf("ease dropped below floor: %f", item.EaseFactor)
	}
	for i := 0; i < 20; i++ {
		Apply(&item, true, now)
	}
	if item.EaseFactor > MaxEase {
		t.Errorf("ease exceeded cap: %f", item.EaseFactor)
	}
}

func TestApply_MasteryTracksCorrectness(t *testing.T) {
	now := time.Now()
	item := NewItem("user-1", 1, "", "auto", now)

	Apply(&item, true, now)
	if item.MasteryScore <= 0 {
		t.Errorf("mastery after correct answer = %f, want > 0", item.MasteryScore)
	}
	before := item.MasteryScore
	Apply(&item, false, now)
	if item.MasteryScore >= before {
		t.Errorf("mastery did not decay after wrong answer: %f >= %f", item.MasteryScore, before)
	}
}
