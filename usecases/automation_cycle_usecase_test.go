package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/pure_utils"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
)

type ruleRepositoryFake struct {
	rules    []models.AutomationRule
	counters []bool
}

func (fake *ruleRepositoryFake) GetAutomationRuleById(ctx context.Context, exec repositories.Executor,
	ruleId uuid.UUID,
) (models.AutomationRule, error) {
	for _, rule := range fake.rules {
		if rule.Id == ruleId {
			return rule, nil
		}
	}
	return models.AutomationRule{}, models.NotFoundError
}

func (fake *ruleRepositoryFake) ListAutomationRules(ctx context.Context, exec repositories.Executor,
	organizationId uuid.UUID, filters models.AutomationRuleFilters,
) ([]models.AutomationRule, error) {
	return fake.rules, nil
}

func (fake *ruleRepositoryFake) ListEvaluableRules(ctx context.Context, exec repositories.Executor,
	organizationId uuid.UUID,
) ([]models.AutomationRule, error) {
	evaluable := make([]models.AutomationRule, 0, len(fake.rules))
	for _, rule := range fake.rules {
		if rule.Evaluable() {
			evaluable = append(evaluable, rule)
		}
	}
	return evaluable, nil
}

func (fake *ruleRepositoryFake) CreateAutomationRule(ctx context.Context, exec repositories.Executor,
	input models.CreateAutomationRuleInput, newRuleId uuid.UUID,
) error {
	return nil
}

func (fake *ruleRepositoryFake) UpdateAutomationRule(ctx context.Context, exec repositories.Executor,
	input models.UpdateAutomationRuleInput,
) error {
	return nil
}

func (fake *ruleRepositoryFake) UpdateAutomationRuleStatus(ctx context.Context,
	exec repositories.Executor, ruleId uuid.UUID, status models.RuleStatus,
) error {
	return nil
}

func (fake *ruleRepositoryFake) DeleteAutomationRule(ctx context.Context, exec repositories.Executor,
	ruleId uuid.UUID,
) error {
	return nil
}

func (fake *ruleRepositoryFake) RecordRuleExecutionCounters(ctx context.Context,
	exec repositories.Executor, ruleId uuid.UUID, succeeded bool, executedAt time.Time,
) error {
	fake.counters = append(fake.counters, succeeded)
	return nil
}

func (fake *ruleRepositoryFake) CountRulesByStatus(ctx context.Context, exec repositories.Executor,
	organizationId uuid.UUID,
) (map[models.RuleStatus]int, error) {
	return nil, nil
}

func (fake *ruleRepositoryFake) CountRulesByType(ctx context.Context, exec repositories.Executor,
	organizationId uuid.UUID,
) (map[models.RuleType]int, error) {
	return nil, nil
}

func (fake *ruleRepositoryFake) TopPerformingRules(ctx context.Context, exec repositories.Executor,
	organizationId uuid.UUID, limit int,
) ([]models.RulePerformance, error) {
	return nil, nil
}

type executionRepositoryFake struct {
	executions    []models.CreateRuleExecutionInput
	countSince    int
	countSinceErr error
}

func (fake *executionRepositoryFake) CreateRuleExecution(ctx context.Context,
	exec repositories.Executor, input models.CreateRuleExecutionInput, newExecutionId uuid.UUID,
) error {
	fake.executions = append(fake.executions, input)
	return nil
}

func (fake *executionRepositoryFake) ListRuleExecutions(ctx context.Context,
	exec repositories.Executor, ruleId uuid.UUID, filters models.RuleExecutionFilters,
) ([]models.RuleExecution, error) {
	return nil, nil
}

func (fake *executionRepositoryFake) CountRuleExecutionsSince(ctx context.Context,
	exec repositories.Executor, ruleId uuid.UUID, since time.Time,
) (int, error) {
	return fake.countSince, fake.countSinceErr
}

func (fake *executionRepositoryFake) CountExecutionsForOrganization(ctx context.Context,
	exec repositories.Executor, organizationId uuid.UUID, since *time.Time,
) (int, error) {
	return len(fake.executions), nil
}

type ruleLockFake struct {
	released *bool
}

func (lock ruleLockFake) Release(ctx context.Context) error {
	*lock.released = true
	return nil
}

type ruleLockRepositoryFake struct {
	acquired bool
	released bool
}

func (fake *ruleLockRepositoryFake) TryLockRule(ctx context.Context, ruleId uuid.UUID) (
	repositories.RuleLock, bool, error,
) {
	if !fake.acquired {
		return nil, false, nil
	}
	return ruleLockFake{released: &fake.released}, true, nil
}

func buildCycleUsecase(
	rules []models.AutomationRule,
	campaigns []models.Campaign,
) (*AutomationCycleUsecase, *ruleRepositoryFake, *executionRepositoryFake, *ruleLockRepositoryFake, *campaignRepositoryFake) {
	ruleRepo := &ruleRepositoryFake{rules: rules}
	executionRepo := &executionRepositoryFake{}
	lockRepo := &ruleLockRepositoryFake{acquired: true}
	campaignRepo := newCampaignRepositoryFake(campaigns...)
	stub := executor_factory.NewExecutorFactoryStub()

	usecase := &AutomationCycleUsecase{
		executorFactory:     stub,
		ruleRepository:      ruleRepo,
		executionRepository: executionRepo,
		campaignRepository:  campaignRepo,
		ruleLockRepository:  lockRepo,
		dispatcher: actionDispatcher{
			executorFactory:    stub,
			campaignRepository: campaignRepo,
			platformRepository: repositories.NewPlatformRepositoryFake(),
		},
	}
	return usecase, ruleRepo, executionRepo, lockRepo, campaignRepo
}

func activeRule(orgId uuid.UUID, conditions []models.Condition, actions []models.Action) models.AutomationRule {
	return models.AutomationRule{
		Id:             uuid.New(),
		OrganizationId: orgId,
		Name:           "high spend low roi",
		RuleType:       models.RuleTypeBudgetOptimization,
		EntityType:     models.EntityTypeCampaign,
		Conditions:     conditions,
		ConditionLogic: models.ConditionLogicAnd,
		Actions:        actions,
		Priority:       10,
		Status:         models.RuleStatusActive,
		Enabled:        true,
	}
}

func TestRunAutomationCycleFiresMatchingRule(t *testing.T) {
	orgId := uuid.New()
	campaign := models.Campaign{
		Id:             uuid.New(),
		OrganizationId: orgId,
		Status:         models.CampaignStatusActive,
		Budget:         500,
		Metrics:        models.CampaignMetrics{Spend: 120, Roi: 0.4},
	}
	rule := activeRule(orgId,
		[]models.Condition{
			{Field: "spend", Operator: models.OperatorGreater, Value: models.NewScalarValue(100.0)},
			{Field: "roi", Operator: models.OperatorLess, Value: models.NewScalarValue(0.5)},
		},
		[]models.Action{{Type: models.ActionPauseCampaign}},
	)

	usecase, ruleRepo, executionRepo, lockRepo, campaignRepo := buildCycleUsecase(
		[]models.AutomationRule{rule}, []models.Campaign{campaign})

	summaries, err := usecase.RunAutomationCycle(context.Background(), orgId)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, models.CycleOutcomeApplied, summaries[0].Outcome)
	assert.NotNil(t, summaries[0].ExecutionId)
	require.Len(t, executionRepo.executions, 1)
	assert.Equal(t, models.ExecutionStatusApplied, executionRepo.executions[0].Status)
	assert.Len(t, executionRepo.executions[0].MatchedConditions, 2)
	assert.Equal(t, []bool{true}, ruleRepo.counters)
	assert.Equal(t, models.CampaignStatusPaused, campaignRepo.statuses[campaign.Id])
	assert.True(t, lockRepo.released)
}

func TestRunAutomationCycleNoMatchWritesNothing(t *testing.T) {
	orgId := uuid.New()
	campaign := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusActive,
		Budget:  500,
		Metrics: models.CampaignMetrics{Spend: 10, Roi: 3},
	}
	rule := activeRule(orgId,
		[]models.Condition{{
			Field: "spend", Operator: models.OperatorGreater, Value: models.NewScalarValue(100.0),
		}},
		[]models.Action{{Type: models.ActionPauseCampaign}},
	)

	usecase, ruleRepo, executionRepo, _, _ := buildCycleUsecase(
		[]models.AutomationRule{rule}, []models.Campaign{campaign})

	summaries, err := usecase.RunAutomationCycle(context.Background(), orgId)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, models.CycleOutcomeNotMatched, summaries[0].Outcome)
	assert.Nil(t, summaries[0].ExecutionId)
	assert.Empty(t, executionRepo.executions)
	assert.Empty(t, ruleRepo.counters)
}

func TestRunAutomationCycleSkipsWhenLockHeld(t *testing.T) {
	orgId := uuid.New()
	campaign := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusActive,
		Budget:  500,
		Metrics: models.CampaignMetrics{Spend: 200},
	}
	rule := activeRule(orgId,
		[]models.Condition{{
			Field: "spend", Operator: models.OperatorGreater, Value: models.NewScalarValue(100.0),
		}},
		[]models.Action{{Type: models.ActionPauseCampaign}},
	)

	usecase, _, executionRepo, lockRepo, _ := buildCycleUsecase(
		[]models.AutomationRule{rule}, []models.Campaign{campaign})
	lockRepo.acquired = false

	summaries, err := usecase.RunAutomationCycle(context.Background(), orgId)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, models.CycleOutcomeSkippedLock, summaries[0].Outcome)
	assert.Empty(t, executionRepo.executions)
}

func TestRunAutomationCycleHonorsCooldown(t *testing.T) {
	orgId := uuid.New()
	campaign := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusActive,
		Budget:  500,
		Metrics: models.CampaignMetrics{Spend: 200},
	}
	rule := activeRule(orgId,
		[]models.Condition{{
			Field: "spend", Operator: models.OperatorGreater, Value: models.NewScalarValue(100.0),
		}},
		[]models.Action{{Type: models.ActionPauseCampaign}},
	)
	rule.CooldownMinutes = 60
	rule.LastExecutedAt = pure_utils.Ptr(time.Now().Add(-10 * time.Minute))

	usecase, _, executionRepo, _, _ := buildCycleUsecase(
		[]models.AutomationRule{rule}, []models.Campaign{campaign})

	summaries, err := usecase.RunAutomationCycle(context.Background(), orgId)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, models.CycleOutcomeSkippedLimit, summaries[0].Outcome)
	assert.Empty(t, executionRepo.executions)
}

func TestRunAutomationCycleHonorsDailyCap(t *testing.T) {
	orgId := uuid.New()
	campaign := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusActive,
		Budget:  500,
		Metrics: models.CampaignMetrics{Spend: 200},
	}
	rule := activeRule(orgId,
		[]models.Condition{{
			Field: "spend", Operator: models.OperatorGreater, Value: models.NewScalarValue(100.0),
		}},
		[]models.Action{{Type: models.ActionPauseCampaign}},
	)
	rule.MaxExecutionsPerDay = 3

	usecase, _, executionRepo, _, _ := buildCycleUsecase(
		[]models.AutomationRule{rule}, []models.Campaign{campaign})
	executionRepo.countSince = 3

	summaries, err := usecase.RunAutomationCycle(context.Background(), orgId)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, models.CycleOutcomeSkippedLimit, summaries[0].Outcome)
}

func TestRunAutomationCycleCancelledBeforeActionsIsNotASuccess(t *testing.T) {
	orgId := uuid.New()
	campaign := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusActive,
		Budget:  500,
		Metrics: models.CampaignMetrics{Spend: 200},
	}
	rule := activeRule(orgId,
		[]models.Condition{{
			Field: "spend", Operator: models.OperatorGreater, Value: models.NewScalarValue(100.0),
		}},
		[]models.Action{
			{Type: models.ActionPauseCampaign},
			{Type: models.ActionAdjustBudget, Params: map[string]any{"budget": 50.0}},
		},
	)

	usecase, ruleRepo, executionRepo, _, campaignRepo := buildCycleUsecase(
		[]models.AutomationRule{rule}, []models.Campaign{campaign})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := usecase.RunAutomationCycle(ctx, orgId)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, models.CycleOutcomeCancelled, summaries[0].Outcome)
	require.Len(t, executionRepo.executions, 1)
	assert.Equal(t, models.ExecutionStatusCancelled, executionRepo.executions[0].Status)
	// Neither action ran: no effect on the campaign, no success counter bump.
	assert.Equal(t, []bool{false}, ruleRepo.counters)
	assert.NotContains(t, campaignRepo.statuses, campaign.Id)
}

func TestAggregateExecutionStatus(t *testing.T) {
	success := models.ActionOutcome{Status: models.ActionOutcomeSuccess}
	failure := models.ActionOutcome{Status: models.ActionOutcomeFailure}
	skip := models.ActionOutcome{Status: models.ActionOutcomeSkipped}

	tests := []struct {
		name     string
		outcomes []models.ActionOutcome
		want     models.ExecutionStatus
	}{
		{name: "all succeeded", outcomes: []models.ActionOutcome{success, success}, want: models.ExecutionStatusApplied},
		{name: "all failed", outcomes: []models.ActionOutcome{failure, failure}, want: models.ExecutionStatusFailed},
		{name: "mixed success and failure", outcomes: []models.ActionOutcome{success, failure}, want: models.ExecutionStatusPartiallyFailed},
		{name: "all skipped", outcomes: []models.ActionOutcome{skip, skip}, want: models.ExecutionStatusCancelled},
		{name: "success then skipped", outcomes: []models.ActionOutcome{success, skip}, want: models.ExecutionStatusPartiallyFailed},
		{name: "failure then skipped", outcomes: []models.ActionOutcome{failure, skip}, want: models.ExecutionStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aggregateExecutionStatus(tt.outcomes))
		})
	}
}

func TestSweepCampaignLifecycles(t *testing.T) {
	orgId := uuid.New()
	now := time.Now()

	scheduled := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusScheduled,
		StartDate: pure_utils.Ptr(now.Add(-time.Hour)),
	}
	ended := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusActive,
		EndDate: pure_utils.Ptr(now.Add(-time.Hour)),
	}
	exhausted := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusActive,
		Budget:  100,
		Metrics: models.CampaignMetrics{Spend: 100},
	}
	untouched := models.Campaign{
		Id: uuid.New(), OrganizationId: orgId, Status: models.CampaignStatusActive,
		Budget:  100,
		Metrics: models.CampaignMetrics{Spend: 20},
	}

	usecase, _, _, _, campaignRepo := buildCycleUsecase(nil,
		[]models.Campaign{scheduled, ended, exhausted, untouched})

	campaigns := []models.Campaign{scheduled, ended, exhausted, untouched}
	campaigns = usecase.sweepCampaignLifecycles(context.Background(), campaigns)

	assert.Equal(t, models.CampaignStatusActive, campaigns[0].Status)
	assert.Equal(t, models.CampaignStatusCompleted, campaigns[1].Status)
	assert.Equal(t, models.CampaignStatusPaused, campaigns[2].Status)
	assert.Equal(t, models.CampaignStatusActive, campaigns[3].Status)

	assert.Equal(t, models.CampaignStatusActive, campaignRepo.statuses[scheduled.Id])
	assert.Equal(t, models.CampaignStatusCompleted, campaignRepo.statuses[ended.Id])
	assert.Equal(t, models.CampaignStatusPaused, campaignRepo.statuses[exhausted.Id])
	assert.NotContains(t, campaignRepo.statuses, untouched.Id)
}
