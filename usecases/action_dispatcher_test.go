package usecases

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
)

type campaignRepositoryFake struct {
	campaigns map[uuid.UUID]models.Campaign
	statuses  map[uuid.UUID]models.CampaignStatus
	budgets   map[uuid.UUID]float64
}

func newCampaignRepositoryFake(campaigns ...models.Campaign) *campaignRepositoryFake {
	fake := &campaignRepositoryFake{
		campaigns: make(map[uuid.UUID]models.Campaign),
		statuses:  make(map[uuid.UUID]models.CampaignStatus),
		budgets:   make(map[uuid.UUID]float64),
	}
	for _, campaign := range campaigns {
		fake.campaigns[campaign.Id] = campaign
	}
	return fake
}

func (fake *campaignRepositoryFake) GetCampaignById(ctx context.Context, exec repositories.Executor,
	campaignId uuid.UUID,
) (models.Campaign, error) {
	return fake.campaigns[campaignId], nil
}

func (fake *campaignRepositoryFake) ListCampaigns(ctx context.Context, exec repositories.Executor,
	organizationId uuid.UUID,
) ([]models.Campaign, error) {
	campaigns := make([]models.Campaign, 0, len(fake.campaigns))
	for _, campaign := range fake.campaigns {
		campaigns = append(campaigns, campaign)
	}
	return campaigns, nil
}

func (fake *campaignRepositoryFake) ListAllocatableCampaigns(ctx context.Context,
	exec repositories.Executor, organizationId uuid.UUID,
) ([]models.Campaign, error) {
	return fake.ListCampaigns(ctx, exec, organizationId)
}

func (fake *campaignRepositoryFake) UpdateCampaignBudget(ctx context.Context,
	exec repositories.Executor, campaignId uuid.UUID, budget float64,
) error {
	fake.budgets[campaignId] = budget
	return nil
}

func (fake *campaignRepositoryFake) UpdateCampaignStatus(ctx context.Context,
	exec repositories.Executor, campaignId uuid.UUID, status models.CampaignStatus,
) error {
	fake.statuses[campaignId] = status
	return nil
}

func buildActionDispatcher(campaignRepo *campaignRepositoryFake,
	platformRepo *repositories.PlatformRepositoryFake,
) actionDispatcher {
	return actionDispatcher{
		executorFactory:    executor_factory.NewExecutorFactoryStub(),
		campaignRepository: campaignRepo,
		platformRepository: platformRepo,
	}
}

func TestDispatchPauseAction(t *testing.T) {
	campaign := models.Campaign{Id: uuid.New(), Status: models.CampaignStatusActive}
	campaignRepo := newCampaignRepositoryFake(campaign)
	platformRepo := repositories.NewPlatformRepositoryFake()
	dispatcher := buildActionDispatcher(campaignRepo, platformRepo)

	rule := models.AutomationRule{Id: uuid.New(), Name: "pause underperformers"}
	outcomes := dispatcher.DispatchActions(context.Background(), rule, campaign,
		[]models.Action{{Type: models.ActionPauseCampaign}})

	assert.Len(t, outcomes, 1)
	assert.Equal(t, models.ActionOutcomeSuccess, outcomes[0].Status)
	assert.Contains(t, platformRepo.Paused, campaign.Id)
	assert.Equal(t, models.CampaignStatusPaused, campaignRepo.statuses[campaign.Id])
}

func TestDispatchAdjustBudgetByPercentage(t *testing.T) {
	campaign := models.Campaign{Id: uuid.New(), Status: models.CampaignStatusActive, Budget: 200}
	campaignRepo := newCampaignRepositoryFake(campaign)
	platformRepo := repositories.NewPlatformRepositoryFake()
	dispatcher := buildActionDispatcher(campaignRepo, platformRepo)

	rule := models.AutomationRule{Id: uuid.New()}
	outcomes := dispatcher.DispatchActions(context.Background(), rule, campaign,
		[]models.Action{{
			Type:   models.ActionAdjustBudget,
			Params: map[string]any{"change_percentage": -25.0},
		}})

	assert.Len(t, outcomes, 1)
	assert.Equal(t, models.ActionOutcomeSuccess, outcomes[0].Status)
	assert.InDelta(t, 150.0, platformRepo.Budgets[campaign.Id], 0.001)
	assert.InDelta(t, 150.0, campaignRepo.budgets[campaign.Id], 0.001)
}

func TestDispatchContinuesAfterFailedAction(t *testing.T) {
	campaign := models.Campaign{Id: uuid.New(), Status: models.CampaignStatusActive, Budget: 100}
	campaignRepo := newCampaignRepositoryFake(campaign)
	platformRepo := repositories.NewPlatformRepositoryFake()
	platformRepo.Errs[campaign.Id] = models.ErrPlatformCallFailed
	dispatcher := buildActionDispatcher(campaignRepo, platformRepo)

	rule := models.AutomationRule{Id: uuid.New()}
	outcomes := dispatcher.DispatchActions(context.Background(), rule, campaign,
		[]models.Action{
			{Type: models.ActionPauseCampaign},
			{Type: models.ActionAdjustBudget, Params: map[string]any{"budget": 50.0}},
		})

	assert.Len(t, outcomes, 2)
	assert.Equal(t, models.ActionOutcomeFailure, outcomes[0].Status)
	assert.NotEmpty(t, outcomes[0].Error)
	// The second action still ran (and also failed at the platform).
	assert.Equal(t, models.ActionOutcomeFailure, outcomes[1].Status)
	// The local status was never touched: platform first, then database.
	assert.NotContains(t, campaignRepo.statuses, campaign.Id)
}

func TestDispatchUnknownActionType(t *testing.T) {
	campaign := models.Campaign{Id: uuid.New()}
	dispatcher := buildActionDispatcher(newCampaignRepositoryFake(campaign),
		repositories.NewPlatformRepositoryFake())

	outcomes := dispatcher.DispatchActions(context.Background(), models.AutomationRule{}, campaign,
		[]models.Action{{Type: models.ActionType("launch_rockets")}})

	assert.Len(t, outcomes, 1)
	assert.Equal(t, models.ActionOutcomeFailure, outcomes[0].Status)
}

func TestDispatchSkipsActionsAfterCancellation(t *testing.T) {
	campaign := models.Campaign{Id: uuid.New()}
	dispatcher := buildActionDispatcher(newCampaignRepositoryFake(campaign),
		repositories.NewPlatformRepositoryFake())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := dispatcher.DispatchActions(ctx, models.AutomationRule{}, campaign,
		[]models.Action{{Type: models.ActionPauseCampaign}, {Type: models.ActionResumeCampaign}})

	assert.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.Equal(t, models.ActionOutcomeSkipped, outcome.Status)
	}
}

func TestAdjustedBudget(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		params  map[string]any
		want    float64
		wantErr bool
	}{
		{name: "absolute budget", current: 100, params: map[string]any{"budget": 250.0}, want: 250},
		{name: "positive percentage", current: 100, params: map[string]any{"change_percentage": 10.0}, want: 110},
		{name: "decrease floors at zero", current: 100, params: map[string]any{"change_percentage": -150.0}, want: 0},
		{name: "missing params", current: 100, params: map[string]any{}, wantErr: true},
		{name: "negative absolute budget", current: 100, params: map[string]any{"budget": -5.0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := adjustedBudget(tt.current, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}
