package api

import (
	"net/http"

	"github.com/breardon2011/mitigationDB/internal/api/middleware"
	"github.com/breardon2011/mitigationDB/internal/audit"
	"github.com/breardon2011/mitigationDB/internal/config"
	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/engine"
	"github.com/breardon2011/mitigationDB/internal/service"
	"github.com/breardon2011/mitigationDB/internal/tasks"
)

type Server struct {
	cfg         *config.Config
	store       core.RuleStore
	manager     *engine.Manager
	taskManager *tasks.Manager
	auditor     core.Auditor
	evalService *service.EvalService
}

func NewServer(
	cfg *config.Config,
	store core.RuleStore,
	manager *engine.Manager,
	taskManager *tasks.Manager,
	auditor core.Auditor,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}

	svc := service.NewEvalService(store, manager, auditor)

	return &Server{
		cfg:         cfg,
		store:       store,
		manager:     manager,
		taskManager: taskManager,
		auditor:     auditor,
		evalService: svc,
	}
}

func (s *Server) Routes(adminSigningKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// evaluation routes
	mux.HandleFunc("POST "+EvaluateRoute, s.handleEvaluate)
	mux.HandleFunc("POST "+ReflectRoute, s.handleReflect)

	// rule read routes
	mux.HandleFunc("GET "+ListRulesRoute, s.handleListRules)
	mux.HandleFunc("GET "+GetRuleRoute, s.handleGetRule)

	// rule source webhook
	mux.HandleFunc("POST "+WebhookRoute, s.handleGitHubWebhook)

	// admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST "+ExplainRoute, s.handleExplain)
	adminMux.HandleFunc("POST "+CreateRuleRoute, s.handleCreateRule)
	adminMux.HandleFunc("PUT "+UpdateRuleRoute, s.handleUpdateRule)
	adminMux.HandleFunc("DELETE "+DeleteRuleRoute, s.handleDeleteRule)
	adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
	adminMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	adminMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
	adminMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
	mux.Handle(AdminParent, middleware.AdminAuth(adminSigningKey)(adminMux))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
