package session

import (
	"time"

	"github.com/google/uuid"

	"ai-skincare-client/pkg/flow"
	"ai-skincare-client/pkg/store"
)

// SnapshotRepository is the persistence collaborator. The core never
// touches storage directly; it hands snapshots to this contract.
type SnapshotRepository interface {
	Save(snapshot *store.Snapshot) error
	Get(briefID string) (*store.Snapshot, bool)
	Delete(briefID string)
}

// Manager handles session creation, resume, restart and snapshotting.
type Manager struct {
	repo SnapshotRepository
}

// NewManager creates a new session manager.
func NewManager(repo SnapshotRepository) *Manager {
	return &Manager{repo: repo}
}

// New creates a fresh session in the given mode with new identity.
func (m *Manager) New(mode, language string) *store.Session {
	return &store.Session{
		BriefID:  uuid.NewString(),
		TraceID:  uuid.NewString(),
		Mode:     mode,
		State:    flow.StateLanding,
		Language: language,
	}
}

// Restart discards the session and produces a brand-new one of the same
// mode. Identity is regenerated; nothing else carries over.
func (m *Manager) Restart(old *store.Session) *store.Session {
	if m.repo != nil && old != nil {
		m.repo.Delete(old.BriefID)
	}
	mode := store.ModeDemo
	language := ""
	if old != nil {
		mode = old.Mode
		language = old.Language
	}
	return m.New(mode, language)
}

// Snapshot persists a best-effort local snapshot of the session and its
// transcript. Failures are returned, not fatal; callers log and move on.
func (m *Manager) Snapshot(s *store.Session, messages []store.TranscriptEntry) error {
	if m.repo == nil || s == nil {
		return nil
	}
	return m.repo.Save(&store.Snapshot{
		SavedAt:  time.Now(),
		BriefID:  s.BriefID,
		TraceID:  s.TraceID,
		Language: s.Language,
		Session:  s.Clone(),
		Messages: messages,
	})
}

// Resume loads a previously saved snapshot as a restart seed. The second
// return is false when no usable snapshot exists.
func (m *Manager) Resume(briefID string) (*store.Session, []store.TranscriptEntry, bool) {
	if m.repo == nil {
		return nil, nil, false
	}
	snap, ok := m.repo.Get(briefID)
	if !ok || snap.Session == nil {
		return nil, nil, false
	}
	return snap.Session.Clone(), snap.Messages, true
}
