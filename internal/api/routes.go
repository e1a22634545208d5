package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/api/v1/info"

	EvaluateRoute = "/api/v1/evaluate"
	ReflectRoute  = "/api/v1/reflect"

	ListRulesRoute = "/api/v1/rules"
	GetRuleRoute   = "/api/v1/rules/{id}"

	WebhookRoute = "/api/v1/webhooks/github"

	AdminParent      = "/api/v1/admin/"
	ExplainRoute     = AdminParent + "explain"
	CreateRuleRoute  = AdminParent + "rules"
	UpdateRuleRoute  = AdminParent + "rules/{id}"
	DeleteRuleRoute  = AdminParent + "rules/{id}"
	ListAuditsRoute  = AdminParent + "audit/records"
	TaskParent       = AdminParent + "tasks/"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "{name}/trigger"
	LogsForTaskRoute = TaskParent + "{name}/logs"
)

const (
	// RuleSyncTaskName is the task triggered by the rule source webhook.
	RuleSyncTaskName = "rules-sync"

	// RuleRefreshTaskName reloads the active snapshot from the store, so
	// out-of-band store edits become visible without waiting for a mutation.
	RuleRefreshTaskName = "rules-refresh"

	// RetiredSweepTaskName reports the retired share of the rule catalog.
	RetiredSweepTaskName = "retired-sweep"
)
