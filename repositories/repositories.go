package repositories

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
)

type options struct {
	riverClient *river.Client[pgx.Tx]
}

type Option func(*options)

// WithRiverClient wires the task queue repository. Binaries that never
// enqueue jobs (migrations) can skip it.
func WithRiverClient(client *river.Client[pgx.Tx]) Option {
	return func(o *options) {
		o.riverClient = client
	}
}

type Repositories struct {
	ExecutorGetter                ExecutorGetter
	AutomationRuleRepository      AutomationRuleRepository
	RuleExecutionRepository       RuleExecutionRepository
	CampaignRepository            CampaignRepository
	BudgetAllocationLogRepository BudgetAllocationLogRepository
	OrganizationRepository        OrganizationRepository
	RuleLockRepository            RuleLockRepository
	TaskQueueRepository           TaskQueueRepository
}

func NewRepositories(pool *pgxpool.Pool, opts ...Option) Repositories {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	repositories := Repositories{
		ExecutorGetter:                NewExecutorGetter(pool),
		AutomationRuleRepository:      &AutomationRuleRepositoryPostgresql{},
		RuleExecutionRepository:       &RuleExecutionRepositoryPostgresql{},
		CampaignRepository:            &CampaignRepositoryPostgresql{},
		BudgetAllocationLogRepository: &BudgetAllocationLogRepositoryPostgresql{},
		OrganizationRepository:        &OrganizationRepositoryPostgresql{},
		RuleLockRepository:            NewRuleLockRepositoryPostgresql(pool),
	}

	if o.riverClient != nil {
		repositories.TaskQueueRepository = NewTaskQueueRepository(o.riverClient)
	}

	return repositories
}
