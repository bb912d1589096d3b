package core

// EventLogger records diagnostic events such as which enhancement tier
// rewrote a task. The app layer adapts the JSONL event log to it.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}
