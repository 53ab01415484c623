package usecase

import (
	"context"
	"time"

	rotationdto "github.com/LavaJover/shvark-rotation-service/internal/usecase/dto/rotation"
)

// GetSessionResults builds the per-creative breakdown of a session and
// picks a winner once enough data is in
func (uc *DefaultRotationUsecase) GetSessionResults(ctx context.Context, sessionID string) (*rotationdto.SessionResults, error) {
	session, err := uc.SessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	records, err := uc.StepRepo.GetStepRecords(sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	steps := make([]rotationdto.StepResult, 0, len(records))
	for _, record := range records {
		end := now
		viewsAtEnd := session.CumulativeViews
		if record.CompletedAt != nil {
			end = *record.CompletedAt
		}
		if record.ViewsAtEnd != nil {
			viewsAtEnd = *record.ViewsAtEnd
		}

		collected := viewsAtEnd - record.ViewsAtStart
		if collected < 0 {
			collected = 0
		}
		duration := end.Sub(record.StartedAt)

		var rate float64
		if duration > 0 {
			rate = float64(collected) / duration.Hours()
		}

		steps = append(steps, rotationdto.StepResult{
			StepIndex:       record.StepIndex,
			CreativeRef:     record.CreativeRef,
			ViewsCollected:  collected,
			Duration:        duration,
			AvgViewsPerHour: rate,
		})
	}

	results := &rotationdto.SessionResults{
		Session: sessionToOutput(session),
		Steps:   steps,
	}

	if winner := pickWinner(steps, session.ViewsPerStep); winner != nil {
		results.Winner = winner
		for i := range results.Steps {
			if results.Steps[i].StepIndex == winner.StepIndex {
				results.Steps[i].IsWinner = true
			}
		}
	}
	return results, nil
}

// pickWinner prefers the creative that collected its step quota fastest;
// when no step finished its quota yet, the best views-per-hour rate wins
func pickWinner(steps []rotationdto.StepResult, viewsPerStep int64) *rotationdto.Winner {
	if len(steps) < 2 {
		return nil
	}

	best := -1
	for i, step := range steps {
		if step.ViewsCollected < viewsPerStep || step.Duration <= 0 {
			continue
		}
		if best == -1 || step.Duration < steps[best].Duration {
			best = i
		}
	}
	if best >= 0 {
		return &rotationdto.Winner{
			StepIndex:   steps[best].StepIndex,
			CreativeRef: steps[best].CreativeRef,
			Reason:      "fastest to collect the step quota",
		}
	}

	for i, step := range steps {
		if step.AvgViewsPerHour <= 0 {
			continue
		}
		if best == -1 || step.AvgViewsPerHour > steps[best].AvgViewsPerHour {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return &rotationdto.Winner{
		StepIndex:   steps[best].StepIndex,
		CreativeRef: steps[best].CreativeRef,
		Reason:      "highest views per hour",
	}
}
