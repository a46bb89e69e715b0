package usecases

import (
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases/executor_factory"
)

type Usecases struct {
	Repositories       repositories.Repositories
	platformRepository repositories.PlatformRepository
	appName            string
	apiVersion         string
}

type Option func(*Usecases)

func WithAppName(appName string) Option {
	return func(u *Usecases) {
		u.appName = appName
	}
}

func WithApiVersion(apiVersion string) Option {
	return func(u *Usecases) {
		u.apiVersion = apiVersion
	}
}

// WithPlatformRepository selects the ad-platform adapter. Defaults to the
// recording fake so local setups work without a platform gateway.
func WithPlatformRepository(platformRepository repositories.PlatformRepository) Option {
	return func(u *Usecases) {
		u.platformRepository = platformRepository
	}
}

func NewUsecases(repositories repositories.Repositories, opts ...Option) Usecases {
	usecases := Usecases{
		Repositories: repositories,
	}
	for _, opt := range opts {
		opt(&usecases)
	}
	if usecases.platformRepository == nil {
		usecases.platformRepository = newPlatformRepositoryFake()
	}
	return usecases
}

func newPlatformRepositoryFake() repositories.PlatformRepository {
	return repositories.NewPlatformRepositoryFake()
}

func (usecases Usecases) AppName() string {
	return usecases.appName
}

func (usecases Usecases) ApiVersion() string {
	return usecases.apiVersion
}

func (usecases Usecases) NewExecutorFactory() executor_factory.ExecutorFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases Usecases) NewRuleUsecase() RuleUsecase {
	return RuleUsecase{
		executorFactory:     usecases.NewExecutorFactory(),
		repository:          usecases.Repositories.AutomationRuleRepository,
		executionRepository: usecases.Repositories.RuleExecutionRepository,
	}
}

func (usecases Usecases) NewBudgetAllocationUsecase() BudgetAllocationUsecase {
	return BudgetAllocationUsecase{
		executorFactory:         usecases.NewExecutorFactory(),
		campaignRepository:      usecases.Repositories.CampaignRepository,
		allocationLogRepository: usecases.Repositories.BudgetAllocationLogRepository,
		platformRepository:      usecases.platformRepository,
	}
}

func (usecases Usecases) NewAutomationCycleUsecase() AutomationCycleUsecase {
	budgetUsecase := usecases.NewBudgetAllocationUsecase()
	return AutomationCycleUsecase{
		executorFactory:     usecases.NewExecutorFactory(),
		ruleRepository:      usecases.Repositories.AutomationRuleRepository,
		executionRepository: usecases.Repositories.RuleExecutionRepository,
		campaignRepository:  usecases.Repositories.CampaignRepository,
		ruleLockRepository:  usecases.Repositories.RuleLockRepository,
		dispatcher: actionDispatcher{
			executorFactory:     usecases.NewExecutorFactory(),
			campaignRepository:  usecases.Repositories.CampaignRepository,
			platformRepository:  usecases.platformRepository,
			taskQueueRepository: usecases.Repositories.TaskQueueRepository,
			budgetUsecase:       &budgetUsecase,
		},
	}
}

func (usecases Usecases) NewOrganizationUsecase() OrganizationUsecase {
	return OrganizationUsecase{
		executorFactory: usecases.NewExecutorFactory(),
		repository:      usecases.Repositories.OrganizationRepository,
	}
}
