package model

import "strings"

// RecordingStatus is the DVR lifecycle state as reported by the upstream
// API. The transition rules live in the backend; schedarr only classifies
// the states it is shown.
type RecordingStatus string

const (
	StatusScheduled RecordingStatus = "scheduled"
	StatusRecording RecordingStatus = "recording"
	StatusCompleted RecordingStatus = "completed"
	StatusFailed    RecordingStatus = "failed"
	StatusCancelled RecordingStatus = "cancelled"
	StatusImporting RecordingStatus = "importing"
	StatusImported  RecordingStatus = "imported"
)

// ParseRecordingStatus normalizes an upstream status string. Unknown values
// are preserved as-is (lowercased) rather than rejected, so a backend that
// grows a new state does not break the schedule view.
func ParseRecordingStatus(s string) RecordingStatus {
	return RecordingStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Active reports whether the recording still occupies the DVR pipeline.
func (s RecordingStatus) Active() bool {
	switch s {
	case StatusScheduled, StatusRecording, StatusImporting:
		return true
	}
	return false
}

// Terminal reports whether no further state changes are expected.
func (s RecordingStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusImported:
		return true
	}
	return false
}
