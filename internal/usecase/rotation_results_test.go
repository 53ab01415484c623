package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
)

func int64ptr(v int64) *int64 { return &v }

func timeptr(t time.Time) *time.Time { return &t }

func TestGetSessionResults_WinnerIsFastestToQuota(t *testing.T) {
	f := newFixture()
	id := f.startSession(t)

	base := time.Now().Add(-10 * time.Hour)
	f.steps.records = []*domain.StepRecord{
		{
			ID: "step-1", SessionID: id, StepIndex: 0, CreativeRef: "img-a",
			ViewsAtStart: 0, ViewsAtEnd: int64ptr(1500),
			StartedAt: base, CompletedAt: timeptr(base.Add(4 * time.Hour)),
		},
		{
			ID: "step-2", SessionID: id, StepIndex: 1, CreativeRef: "img-b",
			ViewsAtStart: 1500, ViewsAtEnd: int64ptr(3000),
			StartedAt: base.Add(4 * time.Hour), CompletedAt: timeptr(base.Add(6 * time.Hour)),
		},
	}

	results, err := f.uc.GetSessionResults(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSessionResults: %v", err)
	}
	if results.Winner == nil {
		t.Fatal("want a winner once two steps collected their quota")
	}
	if results.Winner.StepIndex != 1 || results.Winner.CreativeRef != "img-b" {
		t.Errorf("winner = %+v, want step 1 (2h to quota vs 4h)", results.Winner)
	}
	if !results.Steps[1].IsWinner {
		t.Error("winning step must be flagged")
	}
}

func TestGetSessionResults_FallsBackToViewRate(t *testing.T) {
	f := newFixture()
	id := f.startSession(t)

	// neither step reached the 1500 quota
	base := time.Now().Add(-4 * time.Hour)
	f.steps.records = []*domain.StepRecord{
		{
			ID: "step-1", SessionID: id, StepIndex: 0, CreativeRef: "img-a",
			ViewsAtStart: 0, ViewsAtEnd: int64ptr(200),
			StartedAt: base, CompletedAt: timeptr(base.Add(2 * time.Hour)),
		},
		{
			ID: "step-2", SessionID: id, StepIndex: 1, CreativeRef: "img-b",
			ViewsAtStart: 200, ViewsAtEnd: int64ptr(1000),
			StartedAt: base.Add(2 * time.Hour), CompletedAt: timeptr(base.Add(4 * time.Hour)),
		},
	}

	results, err := f.uc.GetSessionResults(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSessionResults: %v", err)
	}
	if results.Winner == nil || results.Winner.StepIndex != 1 {
		t.Errorf("winner = %+v, want step 1 by views per hour", results.Winner)
	}
	if results.Steps[1].ViewsCollected != 800 {
		t.Errorf("views collected = %d, want 800", results.Steps[1].ViewsCollected)
	}
}

func TestGetSessionResults_NoWinnerWithSingleStep(t *testing.T) {
	f := newFixture()
	id := f.startSession(t)

	results, err := f.uc.GetSessionResults(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSessionResults: %v", err)
	}
	if results.Winner != nil {
		t.Errorf("winner = %+v, want none with only the opening step", results.Winner)
	}
	if len(results.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(results.Steps))
	}
}
