package store

import "time"

// TranscriptEntry is one rendered message of the conversation, kept only
// for best-effort local resume.
type TranscriptEntry struct {
	Role string    `json:"role"` // user | assistant
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Snapshot is the shape handed to the persistence collaborator. The core
// only produces and consumes it; serialization lives in the repository.
type Snapshot struct {
	SavedAt  time.Time         `json:"saved_at"`
	BriefID  string            `json:"brief_id"`
	TraceID  string            `json:"trace_id"`
	Language string            `json:"language,omitempty"`
	Session  *Session          `json:"session"`
	Messages []TranscriptEntry `json:"messages,omitempty"`
}
