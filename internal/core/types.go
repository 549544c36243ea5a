package core

// Action represents the result of a node execution that determines flow control.
type Action string

// Common actions used throughout the framework.
const (
	ActionContinue Action = "continue"
	ActionEnd      Action = "end"
	ActionSuccess  Action = "success"
	ActionFailure  Action = "failure"
	ActionDefault  Action = "default"

	// Reason-act loop routing actions.
	ActionTool     Action = "tool"
	ActionAnswer   Action = "answer"
	ActionFinalize Action = "finalize" // route to forced-finalization on budget exhaustion
)
