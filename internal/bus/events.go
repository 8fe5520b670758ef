package bus

import (
	"time"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

// Subjects published by the annotator.
const (
	SubjectSessionOpened    = "annotator.session.opened"
	SubjectSessionClosed    = "annotator.session.closed"
	SubjectSessionCompleted = "annotator.session.completed"
	SubjectRecordSaved      = "annotator.record.saved"
	SubjectNavigated        = "annotator.session.navigated"
)

// SessionEvent announces a session lifecycle change.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	InputPath string    `json:"input_path"`
	Output    string    `json:"output_path"`
	Total     int       `json:"total"`
	Progress  int       `json:"progress"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordSavedEvent is emitted after a row's labels reach disk.
type RecordSavedEvent struct {
	SessionID string          `json:"session_id"`
	Row       int             `json:"row"`
	Labels    []dataset.Label `json:"labels"`
	Progress  int             `json:"progress"`
	Total     int             `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

// NavigatedEvent is emitted when the operator jumps to another row.
type NavigatedEvent struct {
	SessionID string    `json:"session_id"`
	Row       int       `json:"row"`
	Progress  int       `json:"progress"`
	Advanced  bool      `json:"advanced"`
	Timestamp time.Time `json:"timestamp"`
}
