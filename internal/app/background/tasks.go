package background

import (
	"context"
	"log"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/usecase"
)

type BackgroundTasks struct {
	RotationUsecase usecase.RotationUsecase
	StatsUsecase    usecase.CampaignStatsUsecase
	CheckInterval   time.Duration
	StatsInterval   time.Duration
}

func NewBackgroundTasks(rotationUC usecase.RotationUsecase, statsUC usecase.CampaignStatsUsecase, checkInterval, statsInterval time.Duration) *BackgroundTasks {
	if checkInterval <= 0 {
		checkInterval = 15 * time.Minute
	}
	if statsInterval <= 0 {
		statsInterval = time.Hour
	}
	return &BackgroundTasks{
		RotationUsecase: rotationUC,
		StatsUsecase:    statsUC,
		CheckInterval:   checkInterval,
		StatsInterval:   statsInterval,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startRotationSweep(ctx)
	go bt.startStatsSweep(ctx)
}

func (bt *BackgroundTasks) startRotationSweep(ctx context.Context) {
	ticker := time.NewTicker(bt.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.RotationUsecase.RunSweep(ctx); err != nil {
				log.Printf("Rotation sweep error: %v\n", err)
			}
		}
	}
}

func (bt *BackgroundTasks) startStatsSweep(ctx context.Context) {
	ticker := time.NewTicker(bt.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.StatsUsecase.RunSweep(ctx); err != nil {
				log.Printf("Stats sweep error: %v\n", err)
			}
		}
	}
}
