package logging

// Standardized attribute keys shared across components.
const (
	FieldComponent = "component"
	FieldTaskID    = "task_id"
	FieldAccountID = "account_id"
	FieldStep      = "step"
	FieldRequestID = "request_id"
)
