package logx

const (
	FieldAppName     = "app-name"
	FieldAppVersion  = "app-version"
	FieldDurationMs  = "duration-ms"
	FieldError       = "error"
	FieldRunID       = "run-id"
	FieldJob         = "job"
	FieldDataset     = "dataset"
	FieldRound       = "round"
	FieldPlayerID    = "player-id"
	FieldTaskType    = "task-type"
	FieldTaskID      = "task-id"
	FieldMode        = "mode"
	FieldExpected    = "expected"
	FieldTradedOut   = "traded-out"
	FieldTradedIn    = "traded-in"
	FieldRowsUpdated = "rows-updated"
)
