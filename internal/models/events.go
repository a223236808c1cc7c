package models

import "time"

type EventKind string

const (
	EventStatus    EventKind = "status"
	EventProgress  EventKind = "progress"
	EventCompleted EventKind = "completed"
	EventError     EventKind = "error"
)

// ProgressEvent is one entry in a job's ordered event stream. For a single
// job id, events reach each observer in publish order and a terminal
// completed/error event is always last.
type ProgressEvent struct {
	JobID     string       `json:"job_id"`
	Kind      EventKind    `json:"kind"`
	Message   string       `json:"message,omitempty"`
	Percent   int          `json:"percent,omitempty"`
	Result    *BatchResult `json:"result,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewStatusEvent(jobID, message string) ProgressEvent {
	return ProgressEvent{JobID: jobID, Kind: EventStatus, Message: message, Timestamp: time.Now()}
}

func NewProgressEvent(jobID string, percent int, message string) ProgressEvent {
	return ProgressEvent{JobID: jobID, Kind: EventProgress, Percent: percent, Message: message, Timestamp: time.Now()}
}

func NewCompletedEvent(jobID string, result *BatchResult) ProgressEvent {
	return ProgressEvent{JobID: jobID, Kind: EventCompleted, Percent: 100, Result: result, Timestamp: time.Now()}
}

func NewErrorEvent(jobID, message string) ProgressEvent {
	return ProgressEvent{JobID: jobID, Kind: EventError, Message: message, Timestamp: time.Now()}
}
