package repositories

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// PlatformRepositoryFake records calls instead of reaching a platform. Used
// in tests and in local setups without a platform gateway configured.
type PlatformRepositoryFake struct {
	mu sync.Mutex

	Paused  []uuid.UUID
	Resumed []uuid.UUID
	Budgets map[uuid.UUID]float64

	// Errs injects a failure for a campaign id.
	Errs map[uuid.UUID]error
}

func NewPlatformRepositoryFake() *PlatformRepositoryFake {
	return &PlatformRepositoryFake{
		Budgets: make(map[uuid.UUID]float64),
		Errs:    make(map[uuid.UUID]error),
	}
}

func (repo *PlatformRepositoryFake) PauseCampaign(ctx context.Context, campaignId uuid.UUID) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if err := repo.Errs[campaignId]; err != nil {
		return err
	}
	repo.Paused = append(repo.Paused, campaignId)
	return nil
}

func (repo *PlatformRepositoryFake) ResumeCampaign(ctx context.Context, campaignId uuid.UUID) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if err := repo.Errs[campaignId]; err != nil {
		return err
	}
	repo.Resumed = append(repo.Resumed, campaignId)
	return nil
}

func (repo *PlatformRepositoryFake) UpdateCampaignBudget(
	ctx context.Context,
	campaignId uuid.UUID,
	newBudget float64,
) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if err := repo.Errs[campaignId]; err != nil {
		return err
	}
	repo.Budgets[campaignId] = newBudget
	return nil
}
