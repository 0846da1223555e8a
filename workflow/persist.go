package workflow

import (
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"paper2diagram/storage"
)

// storageKey is the fixed name the whole persisted subset lives under.
const storageKey = "paper2diagram-workflow"

// persistLocked writes the persisted subset under the fixed key. It never
// propagates an error past the mutation boundary: the quota signal flips
// StorageWarning, any other failure is logged and absorbed, and a clean
// write clears the warning.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.persistedLocked())
	if err != nil {
		logrus.WithError(err).Warn("workflow: marshal persisted state failed")
		return
	}
	switch err := s.kv.Set(storageKey, data); {
	case err == nil:
		s.state.StorageWarning = false
	case errors.Is(err, storage.ErrQuotaExceeded):
		s.state.StorageWarning = true
		logrus.Warn("workflow: storage quota exceeded, history kept in memory only")
	default:
		logrus.WithError(err).Warn("workflow: persist failed")
	}
}

// persistedLocked builds the durable subset of State. The live generated
// image and reference images are deliberately absent: they are large,
// transient, and lost on reload. History items are written with ImageURL
// forced empty as a second safety net behind AddToHistory.
func (s *Store) persistedLocked() map[string]any {
	history := make([]HistoryItem, len(s.state.History))
	for i, item := range s.state.History {
		item.ImageURL = ""
		history[i] = item
	}
	return map[string]any{
		"logic_config":     s.state.LogicConfig,
		"vision_config":    s.state.VisionConfig,
		"language":         s.state.Language,
		"paper_content":    s.state.PaperContent,
		"generated_schema": s.state.GeneratedSchema,
		"history":          history,
	}
}

// Hydrate loads the persisted subset into the store. It is a separate step
// from construction; until it runs, defaults are in effect and Hydrated
// reports false. A missing value leaves the defaults; a corrupt value is
// logged and discarded rather than bricking the session.
func (s *Store) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(storageKey)
	if err != nil {
		s.hydrated = true
		return err
	}
	if data == nil {
		s.hydrated = true
		return nil
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		logrus.WithError(err).Warn("workflow: discarding corrupt persisted state")
		s.hydrated = true
		return nil
	}
	s.state.LogicConfig = loaded.LogicConfig
	s.state.VisionConfig = loaded.VisionConfig
	if loaded.Language != "" {
		s.state.Language = loaded.Language
	}
	s.state.PaperContent = loaded.PaperContent
	s.state.GeneratedSchema = loaded.GeneratedSchema
	for i := range loaded.History {
		loaded.History[i].ImageURL = ""
	}
	if len(loaded.History) > maxHistoryItems {
		loaded.History = loaded.History[:maxHistoryItems]
	}
	s.state.History = loaded.History
	s.hydrated = true
	return nil
}
