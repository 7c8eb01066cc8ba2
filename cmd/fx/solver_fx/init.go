package solver_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"quizsolver/internal/api/controllers"
	"quizsolver/internal/services"
	mem "quizsolver/pkg/memcache"
	"quizsolver/pkg/utils"
)

var Module = fx.Provide(
	ProvideSubmitClient,
	ProvideResourceService,
	ProvideSolverService,
	ProvideQuizController)

func ProvideSubmitClient(cfg utils.AppConfig) services.SubmitClientInterface {
	return services.NewSubmitClient(cfg.SubmitTimeout)
}

func ProvideResourceService(cfg utils.AppConfig, logger *zap.SugaredLogger) services.ResourceServiceInterface {
	return services.NewResourceService(cfg.BrowserTimeout, logger)
}

// ProvideSolverService creates the solving loop with all dependencies
func ProvideSolverService(
	cfg utils.AppConfig,
	renderer services.PageRendererInterface,
	completer utils.CompletionClientInterface,
	submitter services.SubmitClientInterface,
	resources services.ResourceServiceInterface,
	store mem.TaskResultStore,
	logger *zap.SugaredLogger,
) services.SolverServiceInterface {
	return services.NewSolverService(cfg, renderer, completer, submitter, resources, store, logger)
}

// ProvideQuizController creates the quiz controller
func ProvideQuizController(
	cfg utils.AppConfig,
	solver services.SolverServiceInterface,
	store mem.TaskResultStore,
) *controllers.QuizController {
	return controllers.NewQuizController(cfg, solver, store)
}
